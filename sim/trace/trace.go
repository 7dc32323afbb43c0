package trace

import "sync"

// EventLog collects records emitted by the scheduler, the memory manager and
// the bounded buffer. A nil *EventLog is valid and records nothing, so engines
// can hold one unconditionally. Methods are safe for concurrent use.
type EventLog struct {
	mu      sync.Mutex
	limit   int
	next    int
	records []Record
}

// NewEventLog creates an EventLog that retains at most limit records.
// When the limit is reached the oldest record is dropped. A limit of 0 keeps everything.
func NewEventLog(limit int) *EventLog {
	if limit < 0 {
		panic("NewEventLog: limit must be >= 0")
	}
	return &EventLog{
		limit:   limit,
		records: make([]Record, 0),
	}
}

// Append stores a record, stamping its sequence number.
func (el *EventLog) Append(rec Record) {
	if el == nil {
		return
	}
	el.mu.Lock()
	defer el.mu.Unlock()

	rec.Seq = el.next
	el.next++
	if el.limit > 0 && len(el.records) == el.limit {
		copy(el.records, el.records[1:])
		el.records = el.records[:len(el.records)-1]
	}
	el.records = append(el.records, rec)
}

// Records returns a copy of the retained records, oldest first.
func (el *EventLog) Records() []Record {
	if el == nil {
		return nil
	}
	el.mu.Lock()
	defer el.mu.Unlock()

	out := make([]Record, len(el.records))
	copy(out, el.records)
	return out
}

// Tail returns a copy of the last n retained records, oldest first.
func (el *EventLog) Tail(n int) []Record {
	if el == nil || n <= 0 {
		return nil
	}
	el.mu.Lock()
	defer el.mu.Unlock()

	if n > len(el.records) {
		n = len(el.records)
	}
	out := make([]Record, n)
	copy(out, el.records[len(el.records)-n:])
	return out
}

// Len returns the number of retained records.
func (el *EventLog) Len() int {
	if el == nil {
		return 0
	}
	el.mu.Lock()
	defer el.mu.Unlock()

	return len(el.records)
}

// Total returns the number of records ever appended, including dropped ones.
func (el *EventLog) Total() int {
	if el == nil {
		return 0
	}
	el.mu.Lock()
	defer el.mu.Unlock()

	return el.next
}
