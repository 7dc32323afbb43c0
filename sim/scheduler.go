package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kernel-sim/kernel-sim/sim/trace"
)

var (
	// ErrProcessNotFound is returned when a PID does not name any process.
	ErrProcessNotFound = errors.New("process not found")
	// ErrProcessTerminated is returned when killing a process that already terminated.
	ErrProcessTerminated = errors.New("process already terminated")
)

// TickReport describes what a single Tick did.
// PID fields are 0 when nothing happened in that role.
type TickReport struct {
	Clock      int64 // clock value after the tick
	Dispatched int   // PID dispatched at the start of the tick
	Executed   int   // PID that consumed this tick's CPU unit
	Terminated bool  // Executed finished its burst
	Preempted  bool  // Executed exhausted its quantum and went back to READY
	Remaining  int64 // remaining burst of Executed after the tick
	Turnaround int64 // set when Terminated
}

// Idle reports whether the CPU did no work during the tick.
func (r TickReport) Idle() bool {
	return r.Executed == 0
}

// RoundRobinScheduler simulates preemptive round-robin CPU allocation with a fixed quantum.
//
// The scheduler owns every Process record. The ready queue and the running
// slot refer to processes by PID; terminated processes stay in the table for reporting.
type RoundRobinScheduler struct {
	clock          int64
	quantum        int64
	currentQuantum int64       // ticks used by the current occupant since dispatch
	processes      []*Process  // indexed by PID-1
	readyQ         *ReadyQueue // FIFO of PIDs in READY
	running        int         // PID on the CPU, 0 when idle
	events         *trace.EventLog
}

// NewRoundRobinScheduler creates a scheduler at clock 0 with no processes.
// events may be nil. Panics if cfg is invalid.
func NewRoundRobinScheduler(cfg SchedulerConfig, events *trace.EventLog) *RoundRobinScheduler {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("NewRoundRobinScheduler: %v", err))
	}
	logrus.Infof("[CPU] round-robin scheduler initialized (quantum=%d)", cfg.Quantum)
	return &RoundRobinScheduler{
		quantum:   cfg.Quantum,
		processes: make([]*Process, 0),
		readyQ:    &ReadyQueue{},
		events:    events,
	}
}

// CreateProcess adds a new process with the given burst and places it at the
// tail of the ready queue. Returns the assigned PID.
// Panics if burst <= 0; callers validate input first.
func (s *RoundRobinScheduler) CreateProcess(burst int64) int {
	if burst <= 0 {
		panic(fmt.Sprintf("CreateProcess: burst must be > 0, got %d", burst))
	}
	pid := len(s.processes) + 1
	p := newProcess(pid, burst, s.clock)
	p.State = StateReady
	s.processes = append(s.processes, p)
	s.readyQ.Enqueue(pid)

	logrus.Infof("[t=%d] process P%d created (burst=%d)", s.clock, pid, burst)
	s.record(trace.KindCreate, pid, fmt.Sprintf("burst=%d", burst))
	return pid
}

// Tick advances the clock by one unit and performs, in order: dispatch if the
// CPU is idle, one unit of execution, termination or quantum-expiry
// preemption, and wait-time accounting for READY processes.
func (s *RoundRobinScheduler) Tick() TickReport {
	s.clock++
	report := TickReport{Clock: s.clock}

	if s.running == 0 && s.readyQ.Len() > 0 {
		s.dispatchNext()
		report.Dispatched = s.running
	}

	if s.running != 0 {
		p := s.process(s.running)
		finished := p.Execute()
		s.currentQuantum++
		report.Executed = p.PID
		report.Remaining = p.RemainingTime
		logrus.Debugf("[t=%d] P%d executed (remaining=%d, quantum used=%d/%d)",
			s.clock, p.PID, p.RemainingTime, s.currentQuantum, s.quantum)
		s.record(trace.KindExecute, p.PID, fmt.Sprintf("remaining=%d", p.RemainingTime))

		// termination takes priority over quantum expiry
		if finished {
			p.terminate(s.clock)
			logrus.Infof("[t=%d] P%d terminated (turnaround=%d)", s.clock, p.PID, p.TurnaroundTime)
			s.record(trace.KindTerminate, p.PID, fmt.Sprintf("turnaround=%d", p.TurnaroundTime))
			s.vacate()
			report.Terminated = true
			report.Turnaround = p.TurnaroundTime
		} else if s.currentQuantum >= s.quantum {
			logrus.Infof("[t=%d] P%d quantum expired (remaining=%d)", s.clock, p.PID, p.RemainingTime)
			s.preemptCurrent()
			report.Preempted = true
		}
	}

	s.updateWaitTimes()
	return report
}

// Run invokes Tick exactly n times and returns the report of each tick in order.
func (s *RoundRobinScheduler) Run(n int) []TickReport {
	var reports []TickReport
	s.RunFunc(n, func(r TickReport) {
		reports = append(reports, r)
	})
	return reports
}

// RunFunc invokes Tick exactly n times, handing each report to fn before the
// next tick. Reports are not retained.
func (s *RoundRobinScheduler) RunFunc(n int, fn func(TickReport)) {
	logrus.Infof("[t=%d] running %d ticks", s.clock, n)
	for i := 0; i < n; i++ {
		fn(s.Tick())
	}
	logrus.Infof("[t=%d] run complete (ready=%s)", s.clock, s.readyQ.String())
}

// KillProcess forces a process to TERMINATED at the current clock, whatever
// its remaining burst. A READY process is removed from the ready queue; the
// running process vacates the CPU.
func (s *RoundRobinScheduler) KillProcess(pid int) error {
	p := s.process(pid)
	if p == nil {
		logrus.Warnf("[t=%d] kill: P%d not found", s.clock, pid)
		return fmt.Errorf("kill P%d: %w", pid, ErrProcessNotFound)
	}
	if p.State == StateTerminated {
		return fmt.Errorf("kill P%d: %w", pid, ErrProcessTerminated)
	}

	if p.State == StateReady {
		s.readyQ.Remove(pid)
	}
	p.terminate(s.clock)
	if s.running == pid {
		s.vacate()
	}

	logrus.Infof("[t=%d] P%d killed (remaining=%d, turnaround=%d)", s.clock, pid, p.RemainingTime, p.TurnaroundTime)
	s.record(trace.KindKill, pid, fmt.Sprintf("remaining=%d", p.RemainingTime))
	return nil
}

// Clock returns the current simulation time.
func (s *RoundRobinScheduler) Clock() int64 {
	return s.clock
}

// Quantum returns the configured quantum.
func (s *RoundRobinScheduler) Quantum() int64 {
	return s.quantum
}

// Running returns the PID currently on the CPU.
func (s *RoundRobinScheduler) Running() (int, bool) {
	return s.running, s.running != 0
}

// NextReady returns the PID that the next dispatch would pick.
func (s *RoundRobinScheduler) NextReady() (int, bool) {
	return s.readyQ.Peek()
}

// ReadyQueue returns the queued PIDs, front first.
func (s *RoundRobinScheduler) ReadyQueue() []int {
	return s.readyQ.Items()
}

// Processes returns a snapshot of every process in PID order.
func (s *RoundRobinScheduler) Processes() []Process {
	out := make([]Process, len(s.processes))
	for i, p := range s.processes {
		out[i] = *p
	}
	return out
}

// Process returns a snapshot of a single process.
func (s *RoundRobinScheduler) Process(pid int) (Process, bool) {
	p := s.process(pid)
	if p == nil {
		return Process{}, false
	}
	return *p, true
}

func (s *RoundRobinScheduler) process(pid int) *Process {
	if pid < 1 || pid > len(s.processes) {
		return nil
	}
	return s.processes[pid-1]
}

// dispatchNext moves the head of the ready queue onto the CPU.
func (s *RoundRobinScheduler) dispatchNext() {
	pid, ok := s.readyQ.Dequeue()
	if !ok {
		return
	}
	p := s.process(pid)
	p.State = StateRunning
	s.running = pid
	s.currentQuantum = 0
	logrus.Infof("[t=%d] dispatch -> P%d", s.clock, pid)
	s.record(trace.KindDispatch, pid, "")
}

// preemptCurrent returns the running process to the tail of the ready queue.
func (s *RoundRobinScheduler) preemptCurrent() {
	if s.running == 0 {
		return
	}
	p := s.process(s.running)
	p.State = StateReady
	s.readyQ.Enqueue(p.PID)
	s.record(trace.KindPreempt, p.PID, fmt.Sprintf("remaining=%d", p.RemainingTime))
	s.vacate()
}

func (s *RoundRobinScheduler) vacate() {
	s.running = 0
	s.currentQuantum = 0
}

func (s *RoundRobinScheduler) updateWaitTimes() {
	for _, p := range s.processes {
		if p.State == StateReady {
			p.WaitTime++
		}
	}
}

func (s *RoundRobinScheduler) record(kind trace.Kind, pid int, detail string) {
	s.events.Append(trace.Record{
		Source: trace.SourceCPU,
		Clock:  s.clock,
		Kind:   kind,
		PID:    pid,
		Page:   -1,
		Frame:  -1,
		Detail: detail,
	})
}
