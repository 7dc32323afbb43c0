package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernel-sim/kernel-sim/sim/trace"
)

func newTestScheduler(t *testing.T, quantum int64) *RoundRobinScheduler {
	t.Helper()
	return NewRoundRobinScheduler(NewSchedulerConfig(quantum), nil)
}

func TestCreateProcess_AssignsSequentialPIDs(t *testing.T) {
	// GIVEN a fresh scheduler
	s := newTestScheduler(t, 3)

	// WHEN several processes are created
	pids := []int{s.CreateProcess(4), s.CreateProcess(1), s.CreateProcess(7)}

	// THEN PIDs are 1, 2, 3 and every process is READY in arrival order
	assert.Equal(t, []int{1, 2, 3}, pids)
	assert.Equal(t, []int{1, 2, 3}, s.ReadyQueue())
	for _, p := range s.Processes() {
		assert.Equal(t, StateReady, p.State)
		assert.Equal(t, p.BurstTime, p.RemainingTime)
		assert.Equal(t, int64(0), p.ArrivalTime)
	}
}

func TestCreateProcess_ArrivalTimeIsCurrentClock(t *testing.T) {
	s := newTestScheduler(t, 3)
	s.Run(4)

	pid := s.CreateProcess(2)

	p, ok := s.Process(pid)
	require.True(t, ok)
	assert.Equal(t, int64(4), p.ArrivalTime)
}

func TestCreateProcess_NonPositiveBurst_Panics(t *testing.T) {
	s := newTestScheduler(t, 3)
	assert.Panics(t, func() { s.CreateProcess(0) })
	assert.Panics(t, func() { s.CreateProcess(-2) })
}

func TestNewRoundRobinScheduler_InvalidQuantum_Panics(t *testing.T) {
	assert.Panics(t, func() { NewRoundRobinScheduler(NewSchedulerConfig(0), nil) })
}

func TestTick_EmptyScheduler_AdvancesClockOnly(t *testing.T) {
	s := newTestScheduler(t, 3)

	report := s.Tick()

	assert.Equal(t, int64(1), s.Clock())
	assert.True(t, report.Idle())
	assert.Equal(t, 0, report.Dispatched)
	_, running := s.Running()
	assert.False(t, running)
}

func TestTick_BurstWithinQuantum_TerminatesWithoutPreemption(t *testing.T) {
	// GIVEN quantum 5 and a single process with burst 3
	s := newTestScheduler(t, 5)
	pid := s.CreateProcess(3)

	// WHEN 3 ticks run
	reports := s.Run(3)

	// THEN it terminates on exactly the third tick and is never preempted
	require.Len(t, reports, 3)
	for i, r := range reports {
		assert.False(t, r.Preempted, "tick %d preempted", i+1)
		assert.Equal(t, pid, r.Executed)
	}
	assert.False(t, reports[1].Terminated)
	assert.True(t, reports[2].Terminated)

	p, _ := s.Process(pid)
	assert.Equal(t, StateTerminated, p.State)
	assert.Equal(t, int64(0), p.RemainingTime)
	assert.True(t, p.Finished)
	assert.Equal(t, int64(3), p.TurnaroundTime)
	assert.Equal(t, int64(0), p.WaitTime)
}

func TestTick_QuantumExpiry_PreemptsAndRequeues(t *testing.T) {
	// GIVEN quantum 3 and a process with burst 5
	s := newTestScheduler(t, 3)
	pid := s.CreateProcess(5)

	// WHEN 3 ticks run
	reports := s.Run(3)

	// THEN the third tick preempts it back to READY with 2 units left
	assert.True(t, reports[2].Preempted)
	assert.False(t, reports[2].Terminated)
	p, _ := s.Process(pid)
	assert.Equal(t, StateReady, p.State)
	assert.Equal(t, int64(2), p.RemainingTime)
	// the tick that preempts it also counts it as READY
	assert.Equal(t, int64(1), p.WaitTime)
	assert.Equal(t, []int{pid}, s.ReadyQueue())

	// WHEN 3 more ticks run
	reports = s.Run(3)

	// THEN it is re-dispatched on tick 4 and terminates on tick 5
	assert.Equal(t, pid, reports[0].Dispatched)
	assert.True(t, reports[1].Terminated)
	assert.True(t, reports[2].Idle())
	p, _ = s.Process(pid)
	assert.Equal(t, StateTerminated, p.State)
	assert.Equal(t, int64(0), p.RemainingTime)
	assert.Equal(t, int64(5), p.TurnaroundTime)
	assert.Equal(t, int64(1), p.WaitTime)
}

func TestTick_LastUnitAtQuantumExpiry_TerminatesNotPreempts(t *testing.T) {
	// GIVEN quantum 2 and a burst of exactly 2
	s := newTestScheduler(t, 2)
	pid := s.CreateProcess(2)

	// WHEN two ticks run
	reports := s.Run(2)

	// THEN termination wins over quantum expiry
	assert.True(t, reports[1].Terminated)
	assert.False(t, reports[1].Preempted)
	assert.Empty(t, s.ReadyQueue())
	p, _ := s.Process(pid)
	assert.Equal(t, StateTerminated, p.State)
}

func TestTick_TwoProcesses_RoundRobinOrderAndWaitTimes(t *testing.T) {
	// GIVEN quantum 2, P1 burst 3, P2 burst 2
	s := newTestScheduler(t, 2)
	p1 := s.CreateProcess(3)
	p2 := s.CreateProcess(2)

	// WHEN the scheduler runs until both finish
	reports := s.Run(5)

	// THEN dispatch order is P1, P2, P1
	var dispatched []int
	for _, r := range reports {
		if r.Dispatched != 0 {
			dispatched = append(dispatched, r.Dispatched)
		}
	}
	assert.Equal(t, []int{p1, p2, p1}, dispatched)

	// AND wait / turnaround follow the tick accounting
	proc1, _ := s.Process(p1)
	proc2, _ := s.Process(p2)
	assert.Equal(t, int64(3), proc1.WaitTime)
	assert.Equal(t, int64(5), proc1.TurnaroundTime)
	assert.Equal(t, int64(2), proc2.WaitTime)
	assert.Equal(t, int64(4), proc2.TurnaroundTime)
}

func TestTick_RemainingTimeNeverIncreases(t *testing.T) {
	s := newTestScheduler(t, 2)
	s.CreateProcess(5)
	s.CreateProcess(3)
	s.CreateProcess(4)

	prev := map[int]int64{}
	for _, p := range s.Processes() {
		prev[p.PID] = p.RemainingTime
	}
	for i := 0; i < 15; i++ {
		s.Tick()
		for _, p := range s.Processes() {
			assert.LessOrEqual(t, p.RemainingTime, prev[p.PID])
			assert.GreaterOrEqual(t, p.RemainingTime, int64(0))
			assert.Equal(t, p.RemainingTime == 0, p.State == StateTerminated, "P%d", p.PID)
			prev[p.PID] = p.RemainingTime
		}
	}
}

func TestTick_FreshlyDispatchedProcessDoesNotWait(t *testing.T) {
	s := newTestScheduler(t, 3)
	pid := s.CreateProcess(5)

	s.Tick()

	p, _ := s.Process(pid)
	assert.Equal(t, StateRunning, p.State)
	assert.Equal(t, int64(0), p.WaitTime)
}

func TestRun_ProducesOneReportPerTick(t *testing.T) {
	s := newTestScheduler(t, 3)
	s.CreateProcess(2)

	reports := s.Run(4)

	require.Len(t, reports, 4)
	for i, r := range reports {
		assert.Equal(t, int64(i+1), r.Clock)
	}
	assert.Empty(t, s.Run(0))
}

func TestRunFunc_StreamsReportsInOrder(t *testing.T) {
	s := newTestScheduler(t, 2)
	s.CreateProcess(3)

	var clocks []int64
	s.RunFunc(5, func(r TickReport) {
		// the scheduler has already advanced to the reported tick
		assert.Equal(t, r.Clock, s.Clock())
		clocks = append(clocks, r.Clock)
	})

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, clocks)
}

func TestNextReady_FollowsReadyQueueFront(t *testing.T) {
	s := newTestScheduler(t, 1)
	_, ok := s.NextReady()
	assert.False(t, ok)

	s.CreateProcess(2)
	s.CreateProcess(2)
	pid, ok := s.NextReady()
	require.True(t, ok)
	assert.Equal(t, 1, pid)

	// P1 is dispatched, so P2 is next
	s.Tick()
	pid, ok = s.NextReady()
	require.True(t, ok)
	assert.Equal(t, 2, pid)
}

func TestKillProcess_Running_VacatesCPU(t *testing.T) {
	// GIVEN P1 running and P2 waiting
	s := newTestScheduler(t, 3)
	p1 := s.CreateProcess(5)
	p2 := s.CreateProcess(4)
	s.Tick()

	// WHEN P1 is killed
	err := s.KillProcess(p1)

	// THEN P1 is TERMINATED with its turnaround at the current clock
	require.NoError(t, err)
	proc, _ := s.Process(p1)
	assert.Equal(t, StateTerminated, proc.State)
	assert.Equal(t, int64(4), proc.RemainingTime)
	assert.Equal(t, int64(1), proc.TurnaroundTime)
	_, running := s.Running()
	assert.False(t, running)

	// AND the next tick dispatches P2
	r := s.Tick()
	assert.Equal(t, p2, r.Dispatched)
}

func TestKillProcess_Ready_LeavesReadyQueue(t *testing.T) {
	s := newTestScheduler(t, 3)
	s.CreateProcess(5)
	p2 := s.CreateProcess(4)
	p3 := s.CreateProcess(2)

	require.NoError(t, s.KillProcess(p2))

	assert.Equal(t, []int{1, p3}, s.ReadyQueue())
	reports := s.Run(6)
	for _, r := range reports {
		assert.NotEqual(t, p2, r.Executed, "killed process must never run")
	}
	proc, _ := s.Process(p2)
	assert.Equal(t, int64(0), proc.WaitTime)
}

func TestKillProcess_Unknown_ReturnsNotFound(t *testing.T) {
	s := newTestScheduler(t, 3)
	s.CreateProcess(2)

	err := s.KillProcess(42)

	assert.True(t, errors.Is(err, ErrProcessNotFound))
	assert.Len(t, s.Processes(), 1)
	assert.Equal(t, []int{1}, s.ReadyQueue())
}

func TestKillProcess_AlreadyTerminated_KeepsTurnaround(t *testing.T) {
	s := newTestScheduler(t, 3)
	pid := s.CreateProcess(1)
	s.Run(3)

	err := s.KillProcess(pid)

	assert.ErrorIs(t, err, ErrProcessTerminated)
	p, _ := s.Process(pid)
	assert.Equal(t, int64(1), p.TurnaroundTime)
}

func TestProcesses_ReturnsCopies(t *testing.T) {
	s := newTestScheduler(t, 3)
	s.CreateProcess(2)

	snap := s.Processes()
	snap[0].RemainingTime = 99

	p, _ := s.Process(1)
	assert.Equal(t, int64(2), p.RemainingTime)
}

func TestScheduler_RecordsEvents(t *testing.T) {
	// GIVEN a scheduler with an event log
	events := trace.NewEventLog(0)
	s := NewRoundRobinScheduler(NewSchedulerConfig(1), events)

	// WHEN a 2-unit process runs to completion
	s.CreateProcess(2)
	s.Run(2)

	// THEN the log holds create, dispatch/execute/preempt, dispatch/execute/terminate
	var kinds []trace.Kind
	for _, r := range events.Records() {
		assert.Equal(t, trace.SourceCPU, r.Source)
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []trace.Kind{
		trace.KindCreate,
		trace.KindDispatch, trace.KindExecute, trace.KindPreempt,
		trace.KindDispatch, trace.KindExecute, trace.KindTerminate,
	}, kinds)
}
