// Package sim provides the CPU scheduling engine of the kernel simulator.
//
// # Reading Guide
//
// Start with these files to understand the scheduler:
//   - process.go: Process lifecycle (NEW → READY → RUNNING → READY/TERMINATED)
//   - ready_queue.go: FIFO of PIDs waiting for the CPU
//   - scheduler.go: the round-robin tick (dispatch, execute, terminate/preempt, wait accounting)
//   - metrics.go: aggregate statistics over the process table
//
// # Architecture
//
// The two other engines live in sub-packages and never call the scheduler:
//   - sim/memory/: demand-paged memory manager with FIFO replacement
//   - sim/buffer/: bounded producer/consumer buffer
//   - sim/trace/: event log shared by all three engines
//
// Every engine advances its own discrete clock and runs each operation to
// completion; none of them suspends or blocks its caller.
package sim
