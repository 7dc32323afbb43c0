package memory

import "fmt"

// Config groups memory manager parameters.
type Config struct {
	NumFrames int  // physical frames (must be > 0)
	Strict    bool // panic instead of falling back to frame 0 when FIFO bookkeeping is broken
}

// NewConfig creates a Config with all fields explicitly set.
func NewConfig(numFrames int, strict bool) Config {
	return Config{NumFrames: numFrames, Strict: strict}
}

// Validate checks that the configuration can build a Manager.
func (c Config) Validate() error {
	if c.NumFrames <= 0 {
		return fmt.Errorf("frame count must be > 0, got %d", c.NumFrames)
	}
	return nil
}
