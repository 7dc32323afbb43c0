// Implements the ReadyQueue, which holds the PIDs of processes waiting for the CPU.
// Processes are enqueued on creation and again on quantum expiry.

package sim

import (
	"fmt"
	"strings"
)

// ReadyQueue represents a FIFO queue of processes waiting to be dispatched.
// It stores PIDs into the scheduler's process table, never copies of the records,
// so the queue and the process list cannot diverge.
type ReadyQueue struct {
	queue []int // FIFO queue of PIDs
}

// Enqueue adds a PID to the back of the ready queue.
func (rq *ReadyQueue) Enqueue(pid int) {
	rq.queue = append(rq.queue, pid)
}

func (rq *ReadyQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, pid := range rq.queue {
		sb.WriteString(fmt.Sprintf("P%d", pid))
		if i < len(rq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of PIDs in the queue.
func (rq *ReadyQueue) Len() int {
	return len(rq.queue)
}

// Peek returns the PID at the front of the queue without removing it.
// The second result is false if the queue is empty.
func (rq *ReadyQueue) Peek() (int, bool) {
	if len(rq.queue) == 0 {
		return 0, false
	}
	return rq.queue[0], true
}

// Dequeue removes the PID at the front of the queue.
// The second result is false if the queue is empty.
func (rq *ReadyQueue) Dequeue() (int, bool) {
	if len(rq.queue) == 0 {
		return 0, false
	}
	pid := rq.queue[0]
	rq.queue = rq.queue[1:]
	return pid, true
}

// Remove deletes the first occurrence of pid, preserving the order of the rest.
// Returns false if pid was not queued.
func (rq *ReadyQueue) Remove(pid int) bool {
	for i, queued := range rq.queue {
		if queued == pid {
			rq.queue = append(rq.queue[:i:i], rq.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a copy of the queue contents, front first.
func (rq *ReadyQueue) Items() []int {
	out := make([]int, len(rq.queue))
	copy(out, rq.queue)
	return out
}
