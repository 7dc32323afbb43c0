// Package buffer implements a bounded producer/consumer buffer.
//
// Blocking is reported, not enacted: Produce on a full buffer and Consume on an
// empty one return an error immediately and count a blocked attempt.
package buffer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kernel-sim/kernel-sim/sim/trace"
)

var (
	// ErrBufferFull is returned by Produce when every slot is taken.
	ErrBufferFull = errors.New("buffer full")
	// ErrBufferEmpty is returned by Consume when no item is stored.
	ErrBufferEmpty = errors.New("buffer empty")
)

// Config groups bounded buffer parameters.
type Config struct {
	Size int // slot count (must be > 0)
}

// Validate checks that the configuration can build a BoundedBuffer.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("buffer size must be > 0, got %d", c.Size)
	}
	return nil
}

// BoundedBuffer is a fixed-capacity circular buffer of ints.
// All methods are safe for concurrent use.
type BoundedBuffer struct {
	mu     sync.Mutex
	slots  []int
	filled []bool
	count  int
	in     int // next insertion index
	out    int // next extraction index
	events *trace.EventLog

	produced       int64
	consumed       int64
	producerBlocks int64
	consumerBlocks int64
}

// New creates an empty BoundedBuffer. events may be nil. Panics if cfg is invalid.
func New(cfg Config, events *trace.EventLog) *BoundedBuffer {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("buffer.New: %v", err))
	}
	logrus.Infof("[SYNC] buffer initialized (size=%d)", cfg.Size)
	return &BoundedBuffer{
		slots:  make([]int, cfg.Size),
		filled: make([]bool, cfg.Size),
		events: events,
	}
}

// Produce stores item at the insertion index.
// Returns ErrBufferFull, and counts a producer block, when no slot is free.
func (b *BoundedBuffer) Produce(item int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == len(b.slots) {
		b.producerBlocks++
		logrus.Infof("[PRODUCER] buffer full, blocked (%d/%d)", b.count, len(b.slots))
		b.record(trace.KindBlock, fmt.Sprintf("producer item=%d", item))
		return fmt.Errorf("produce %d: %w", item, ErrBufferFull)
	}

	b.slots[b.in] = item
	b.filled[b.in] = true
	b.in = (b.in + 1) % len(b.slots)
	b.count++
	b.produced++

	logrus.Infof("[PRODUCER] item %d produced (buffer: %d/%d)", item, b.count, len(b.slots))
	b.record(trace.KindProduce, fmt.Sprintf("item=%d", item))
	return nil
}

// Consume removes and returns the item at the extraction index.
// Returns ErrBufferEmpty, and counts a consumer block, when nothing is stored.
func (b *BoundedBuffer) Consume() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		b.consumerBlocks++
		logrus.Infof("[CONSUMER] buffer empty, blocked")
		b.record(trace.KindBlock, "consumer")
		return 0, fmt.Errorf("consume: %w", ErrBufferEmpty)
	}

	item := b.slots[b.out]
	b.slots[b.out] = 0
	b.filled[b.out] = false
	b.out = (b.out + 1) % len(b.slots)
	b.count--
	b.consumed++

	logrus.Infof("[CONSUMER] item %d consumed (buffer: %d/%d)", item, b.count, len(b.slots))
	b.record(trace.KindConsume, fmt.Sprintf("item=%d", item))
	return item, nil
}

// Reset empties every slot and zeroes indices and counters.
func (b *BoundedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.slots {
		b.slots[i] = 0
		b.filled[i] = false
	}
	b.count, b.in, b.out = 0, 0, 0
	b.produced, b.consumed = 0, 0
	b.producerBlocks, b.consumerBlocks = 0, 0
	logrus.Infof("[SYNC] buffer reset")
}

// Snapshot is a read-only view of the buffer layout.
type Snapshot struct {
	Capacity int
	Count    int
	In       int
	Out      int
	Slots    []int
	Filled   []bool // Filled[i] reports whether Slots[i] holds an item
}

// Snapshot returns a copy of the buffer layout.
func (b *BoundedBuffer) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		Capacity: len(b.slots),
		Count:    b.count,
		In:       b.in,
		Out:      b.out,
		Slots:    make([]int, len(b.slots)),
		Filled:   make([]bool, len(b.filled)),
	}
	copy(snap.Slots, b.slots)
	copy(snap.Filled, b.filled)
	return snap
}

// Stats is a read-only snapshot of buffer counters.
type Stats struct {
	Capacity       int
	Occupancy      int
	Produced       int64
	Consumed       int64
	ProducerBlocks int64
	ConsumerBlocks int64
}

// Balanced reports whether produced - consumed equals the current occupancy.
func (s Stats) Balanced() bool {
	return s.Produced-s.Consumed == int64(s.Occupancy)
}

// Stats returns the buffer counters.
func (b *BoundedBuffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		Capacity:       len(b.slots),
		Occupancy:      b.count,
		Produced:       b.produced,
		Consumed:       b.consumed,
		ProducerBlocks: b.producerBlocks,
		ConsumerBlocks: b.consumerBlocks,
	}
}

// record must be called with b.mu held.
func (b *BoundedBuffer) record(kind trace.Kind, detail string) {
	b.events.Append(trace.Record{
		Source: trace.SourceBuffer,
		Clock:  b.produced + b.consumed,
		Kind:   kind,
		PID:    -1,
		Page:   -1,
		Frame:  -1,
		Detail: detail,
	})
}
