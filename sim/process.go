// Defines the Process struct that models one simulated task in the scheduler.
// Tracks burst progress, time spent READY, and turnaround at termination.

package sim

import (
	"fmt"
)

// ProcessState represents the lifecycle state of a process.
type ProcessState string

const (
	StateNew        ProcessState = "NEW"
	StateReady      ProcessState = "READY"
	StateRunning    ProcessState = "RUNNING"
	StateBlocked    ProcessState = "BLOCKED" // never entered by the round-robin scheduler
	StateTerminated ProcessState = "TERMINATED"
)

// AllStates lists every process state in lifecycle order.
var AllStates = []ProcessState{StateNew, StateReady, StateRunning, StateBlocked, StateTerminated}

// Process models a single task's lifecycle in the simulation.
// Records are owned by the scheduler; callers only ever see copies.
type Process struct {
	PID   int          // Unique identifier, assigned sequentially from 1
	State ProcessState // NEW, READY, RUNNING, BLOCKED, TERMINATED

	BurstTime     int64 // Total CPU units required, fixed at creation
	RemainingTime int64 // CPU units still required; in [0, BurstTime]
	WaitTime      int64 // Ticks spent in READY
	ArrivalTime   int64 // Clock value at creation

	Finished       bool  // Whether the process has terminated (normally or killed)
	TurnaroundTime int64 // Termination clock - ArrivalTime; meaningful only when Finished
}

// newProcess builds a process in state NEW.
func newProcess(pid int, burst int64, arrival int64) *Process {
	return &Process{
		PID:           pid,
		State:         StateNew,
		BurstTime:     burst,
		RemainingTime: burst,
		ArrivalTime:   arrival,
	}
}

// Execute runs the process for one unit of CPU time.
// Returns true if this unit consumed the last of its burst.
func (p *Process) Execute() bool {
	if p.RemainingTime == 0 {
		return false
	}
	p.RemainingTime--
	return p.RemainingTime == 0
}

// terminate moves the process to TERMINATED and fixes its turnaround time.
func (p *Process) terminate(clock int64) {
	p.State = StateTerminated
	p.Finished = true
	p.TurnaroundTime = clock - p.ArrivalTime
}

// This method returns a human-readable string representation of a Process.
func (p Process) String() string {
	return fmt.Sprintf("Process: (PID: %d, State: %s, Burst: %d, Remaining: %d, Wait: %d, Arrival: %d)",
		p.PID, p.State, p.BurstTime, p.RemainingTime, p.WaitTime, p.ArrivalTime)
}
