// Package memory implements a demand-paged memory manager with one page
// table per process and FIFO page replacement over a fixed pool of frames.
package memory

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/kernel-sim/kernel-sim/sim/trace"
)

// Outcome is the result class of a page access.
type Outcome string

const (
	Hit   Outcome = "hit"
	Fault Outcome = "fault"
)

// AccessResult describes a single AccessPage call.
// Victim fields are -1 unless Evicted is true.
type AccessResult struct {
	Outcome     Outcome
	Frame       int // frame now holding the requested page
	Evicted     bool
	VictimFrame int
	VictimPID   int
	VictimPage  int
}

// Manager maintains the frame table, all page tables and the FIFO eviction queue.
// Page tables are created lazily: a PID needs no registration before its first access,
// and PIDs here are unrelated to the scheduler's.
type Manager struct {
	frames    []Frame                    // frame table, indexed by frame ID
	pageTable map[pageKey]PageTableEntry // (PID, page) -> entry, stale entries kept invalid
	fifoQueue []int                      // frame IDs in load order, oldest first
	strict    bool
	events    *trace.EventLog

	totalAccesses int64
	pageHits      int64
	pageFaults    int64
	clock         int64 // advanced once per access
}

// NewManager initializes a Manager with every frame free.
// events may be nil. Panics if cfg is invalid.
func NewManager(cfg Config, events *trace.EventLog) *Manager {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("NewManager: %v", err))
	}
	m := &Manager{
		frames:    make([]Frame, cfg.NumFrames),
		pageTable: make(map[pageKey]PageTableEntry),
		fifoQueue: make([]int, 0, cfg.NumFrames),
		strict:    cfg.Strict,
		events:    events,
	}
	for i := range m.frames {
		m.frames[i] = freeFrame(i)
	}
	logrus.Infof("[MEMORY] initialized with %d frames", cfg.NumFrames)
	return m
}

// AccessPage references page of process pid. A valid page table entry is a
// hit. Anything else is a fault: the page is loaded into the lowest free
// frame, or into the oldest-loaded frame after evicting its page.
// Panics if page < 0; callers validate input first.
func (m *Manager) AccessPage(pid, page int) AccessResult {
	if page < 0 {
		panic(fmt.Sprintf("AccessPage: page must be >= 0, got %d", page))
	}
	m.totalAccesses++
	m.clock++

	key := pageKey{pid: pid, page: page}
	if entry, ok := m.pageTable[key]; ok && entry.Valid {
		m.pageHits++
		logrus.Infof("[t=%d] [HIT] P%d page %d -> frame %d (hits=%d)", m.clock, pid, page, entry.Frame, m.pageHits)
		m.record(trace.KindHit, pid, page, entry.Frame, "")
		return AccessResult{Outcome: Hit, Frame: entry.Frame, VictimFrame: -1, VictimPID: -1, VictimPage: -1}
	}

	m.pageFaults++
	logrus.Infof("[t=%d] [PAGE FAULT #%d] P%d page %d", m.clock, m.pageFaults, pid, page)
	m.record(trace.KindFault, pid, page, -1, fmt.Sprintf("fault #%d", m.pageFaults))

	result := AccessResult{Outcome: Fault, VictimFrame: -1, VictimPID: -1, VictimPage: -1}
	frameID := m.findFreeFrame()
	if frameID == -1 {
		frameID = m.selectVictimFIFO()
		victim := m.frames[frameID]
		if victim.Occupied {
			result.Evicted = true
			result.VictimFrame = frameID
			result.VictimPID = victim.PID
			result.VictimPage = victim.Page
		}
		m.evictPage(frameID)
	}

	m.loadPage(pid, page, frameID)
	result.Frame = frameID
	return result
}

// findFreeFrame returns the lowest free frame ID, or -1 if every frame is occupied.
func (m *Manager) findFreeFrame() int {
	for i := range m.frames {
		if !m.frames[i].Occupied {
			return i
		}
	}
	return -1
}

// selectVictimFIFO pops the oldest-loaded frame from the eviction queue.
// An empty queue with every frame occupied means the bookkeeping is broken;
// strict managers panic, others fall back to frame 0.
func (m *Manager) selectVictimFIFO() int {
	if len(m.fifoQueue) == 0 {
		if m.strict {
			panic("selectVictimFIFO: eviction queue empty while all frames are occupied")
		}
		logrus.Errorf("[t=%d] FIFO eviction queue empty while all frames are occupied; falling back to frame 0", m.clock)
		return 0
	}
	victim := m.fifoQueue[0]
	// shift in place so the backing array never grows past NumFrames
	copy(m.fifoQueue, m.fifoQueue[1:])
	m.fifoQueue = m.fifoQueue[:len(m.fifoQueue)-1]
	return victim
}

// evictPage invalidates the page table entry of the page in frameID and frees the frame.
func (m *Manager) evictPage(frameID int) {
	f := &m.frames[frameID]
	if !f.Occupied {
		return
	}
	key := pageKey{pid: f.PID, page: f.Page}
	entry := m.pageTable[key]
	entry.Valid = false
	m.pageTable[key] = entry

	logrus.Infof("[t=%d]   evicting frame %d (P%d page %d, FIFO)", m.clock, frameID, f.PID, f.Page)
	m.record(trace.KindEvict, f.PID, f.Page, frameID, "fifo")

	*f = freeFrame(frameID)
}

// loadPage places page of pid into frameID and makes its page table entry valid.
func (m *Manager) loadPage(pid, page, frameID int) {
	m.frames[frameID] = Frame{
		ID:       frameID,
		Occupied: true,
		Page:     page,
		PID:      pid,
		LoadTime: m.clock,
	}
	m.fifoQueue = append(m.fifoQueue, frameID)
	m.pageTable[pageKey{pid: pid, page: page}] = PageTableEntry{Page: page, Frame: frameID, Valid: true}

	logrus.Infof("[t=%d]   page loaded into frame %d", m.clock, frameID)
	m.record(trace.KindLoad, pid, page, frameID, "")
}

// Frames returns a snapshot of the frame table in frame ID order.
func (m *Manager) Frames() []Frame {
	out := make([]Frame, len(m.frames))
	copy(out, m.frames)
	return out
}

// NumFrames returns the size of the frame pool.
func (m *Manager) NumFrames() int {
	return len(m.frames)
}

// PageTable returns every known entry for pid, valid or not, in page-number order.
// A PID that never accessed memory has an empty page table.
func (m *Manager) PageTable(pid int) []PageTableEntry {
	entries := make([]PageTableEntry, 0)
	for key, entry := range m.pageTable {
		if key.pid == pid {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Page < entries[j].Page
	})
	return entries
}

// EvictionQueue returns the frame IDs in FIFO order, next victim first.
func (m *Manager) EvictionQueue() []int {
	out := make([]int, len(m.fifoQueue))
	copy(out, m.fifoQueue)
	return out
}

// Clock returns the number of accesses since construction or the last reset.
func (m *Manager) Clock() int64 {
	return m.clock
}

// ResetStats zeroes the access, hit and fault counters and the clock.
// Frame occupancy and page tables are kept, so resident frames keep load
// times from before the reset.
func (m *Manager) ResetStats() {
	m.totalAccesses = 0
	m.pageHits = 0
	m.pageFaults = 0
	m.clock = 0
	logrus.Infof("[MEMORY] statistics reset")
}

// Clear returns the manager to its freshly constructed state: every frame
// free, no page tables, an empty eviction queue and zeroed statistics.
func (m *Manager) Clear() {
	for i := range m.frames {
		m.frames[i] = freeFrame(i)
	}
	m.pageTable = make(map[pageKey]PageTableEntry)
	m.fifoQueue = m.fifoQueue[:0]
	m.ResetStats()
	logrus.Infof("[MEMORY] frames and page tables cleared")
}

func (m *Manager) record(kind trace.Kind, pid, page, frame int, detail string) {
	m.events.Append(trace.Record{
		Source: trace.SourceMemory,
		Clock:  m.clock,
		Kind:   kind,
		PID:    pid,
		Page:   page,
		Frame:  frame,
		Detail: detail,
	})
}
