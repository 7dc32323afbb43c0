package memory

// Stats is a read-only snapshot of memory manager statistics.
type Stats struct {
	NumFrames      int
	OccupiedFrames int
	FreeFrames     int

	TotalAccesses int64
	Hits          int64
	Faults        int64
	HitRatio      float64
	FaultRate     float64
}

// HitRatio returns hits / total accesses, or 0 before any access.
func (m *Manager) HitRatio() float64 {
	if m.totalAccesses == 0 {
		return 0.0
	}
	return float64(m.pageHits) / float64(m.totalAccesses)
}

// FaultRate returns faults / total accesses, or 0 before any access.
func (m *Manager) FaultRate() float64 {
	if m.totalAccesses == 0 {
		return 0.0
	}
	return float64(m.pageFaults) / float64(m.totalAccesses)
}

// Stats computes a statistics snapshot.
func (m *Manager) Stats() Stats {
	occupied := 0
	for _, f := range m.frames {
		if f.Occupied {
			occupied++
		}
	}
	return Stats{
		NumFrames:      len(m.frames),
		OccupiedFrames: occupied,
		FreeFrames:     len(m.frames) - occupied,
		TotalAccesses:  m.totalAccesses,
		Hits:           m.pageHits,
		Faults:         m.pageFaults,
		HitRatio:       m.HitRatio(),
		FaultRate:      m.FaultRate(),
	}
}
