package sim

import "fmt"

// DefaultQuantum is the round-robin quantum used when none is configured.
const DefaultQuantum int64 = 3

// SchedulerConfig groups round-robin scheduler parameters.
type SchedulerConfig struct {
	Quantum int64 // max consecutive ticks a process may hold the CPU (must be > 0)
}

// NewSchedulerConfig creates a SchedulerConfig with all fields explicitly set.
func NewSchedulerConfig(quantum int64) SchedulerConfig {
	return SchedulerConfig{Quantum: quantum}
}

// Validate checks that the configuration can build a scheduler.
func (c SchedulerConfig) Validate() error {
	if c.Quantum <= 0 {
		return fmt.Errorf("quantum must be > 0, got %d", c.Quantum)
	}
	return nil
}
