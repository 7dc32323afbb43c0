// Aggregates scheduler-wide statistics such as counts by state and
// fairness figures (mean wait and turnaround) over terminated processes.

package sim

import (
	"github.com/montanaflynn/stats"
)

// SchedulerStats is a read-only snapshot of scheduler statistics.
type SchedulerStats struct {
	Clock          int64
	Quantum        int64
	TotalProcesses int
	CountByState   map[ProcessState]int // every state present, zero if unused

	// The fields below are defined only when HasCompleted is true.
	HasCompleted          bool
	Completed             int
	AvgWaitTime           float64 // mean over TERMINATED processes
	AvgTurnaroundTime     float64 // mean over TERMINATED processes
	MaxTurnaroundTime     float64
	ThroughputPerKiloTick float64 // completed processes per 1000 ticks of clock
}

// Stats computes aggregate statistics over the current process table.
func (s *RoundRobinScheduler) Stats() SchedulerStats {
	st := SchedulerStats{
		Clock:          s.clock,
		Quantum:        s.quantum,
		TotalProcesses: len(s.processes),
		CountByState:   make(map[ProcessState]int, len(AllStates)),
	}
	for _, state := range AllStates {
		st.CountByState[state] = 0
	}

	var waits, turnarounds stats.Float64Data
	for _, p := range s.processes {
		st.CountByState[p.State]++
		if p.State == StateTerminated {
			waits = append(waits, float64(p.WaitTime))
			turnarounds = append(turnarounds, float64(p.TurnaroundTime))
		}
	}

	if len(turnarounds) == 0 {
		return st
	}
	st.HasCompleted = true
	st.Completed = len(turnarounds)
	// errors are only returned for empty input, which is excluded above
	st.AvgWaitTime, _ = stats.Mean(waits)
	st.AvgTurnaroundTime, _ = stats.Mean(turnarounds)
	st.MaxTurnaroundTime, _ = stats.Max(turnarounds)
	if s.clock > 0 {
		st.ThroughputPerKiloTick = float64(st.Completed) * 1000 / float64(s.clock)
	}
	return st
}
