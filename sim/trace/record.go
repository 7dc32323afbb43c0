// Package trace provides event recording for the simulation engines.
// This package has no dependencies on sim/ or its other sub-packages; it stores pure data types.
package trace

// Source identifies the engine that emitted a record.
type Source string

const (
	SourceCPU    Source = "cpu"
	SourceMemory Source = "memory"
	SourceBuffer Source = "buffer"
)

// Kind classifies a single engine event.
type Kind string

const (
	KindCreate    Kind = "create"
	KindDispatch  Kind = "dispatch"
	KindExecute   Kind = "execute"
	KindPreempt   Kind = "preempt"
	KindTerminate Kind = "terminate"
	KindKill      Kind = "kill"
	KindHit       Kind = "hit"
	KindFault     Kind = "fault"
	KindEvict     Kind = "evict"
	KindLoad      Kind = "load"
	KindProduce   Kind = "produce"
	KindConsume   Kind = "consume"
	KindBlock     Kind = "block"
)

// Record captures one engine event.
// PID, Page and Frame are -1 when they do not apply to the event.
type Record struct {
	Seq    int    // position in the log, assigned on append
	Source Source
	Clock  int64 // engine clock when the event happened
	Kind   Kind
	PID    int
	Page   int
	Frame  int
	Detail string
}
