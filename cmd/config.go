package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/kernel-sim/kernel-sim/sim"
)

const (
	defaultLogLevel   = "warn"
	defaultEventLimit = 1000

	// Upper bounds keep a typo from allocating gigabytes.
	maxFrames     = 1 << 16
	maxBufferSize = 1 << 16
	maxRunTicks   = 1_000_000
)

// Config represents the kernel-sim YAML configuration file.
// Every section must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Memory    MemoryConfig    `yaml:"memory"`
	Buffer    BufferConfig    `yaml:"buffer"`
	Events    EventsConfig    `yaml:"events"`
}

// SchedulerConfig configures the round-robin scheduler.
type SchedulerConfig struct {
	Quantum int64 `yaml:"quantum"`
}

// MemoryConfig configures the memory manager created at startup.
// Frames == 0 leaves memory uninitialized until mem-init.
type MemoryConfig struct {
	Frames int  `yaml:"frames"`
	Strict bool `yaml:"strict"` // panic instead of falling back to frame 0
}

// BufferConfig configures the bounded buffer created at startup.
// Size == 0 leaves the buffer uninitialized until pc-init.
type BufferConfig struct {
	Size int `yaml:"size"`
}

// EventsConfig bounds the shared engine event log.
type EventsConfig struct {
	Limit int `yaml:"limit"` // 0 keeps every record
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		LogLevel:  defaultLogLevel,
		Scheduler: SchedulerConfig{Quantum: sim.DefaultQuantum},
		Events:    EventsConfig{Limit: defaultEventLimit},
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
// Keys absent from the file keep their defaults; unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section. Engine-level checks stay in the engines;
// this only rejects values that could never build one.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if err := sim.NewSchedulerConfig(c.Scheduler.Quantum).Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if c.Memory.Frames < 0 || c.Memory.Frames > maxFrames {
		return fmt.Errorf("memory: frames must be in [0, %d], got %d", maxFrames, c.Memory.Frames)
	}
	if c.Buffer.Size < 0 || c.Buffer.Size > maxBufferSize {
		return fmt.Errorf("buffer: size must be in [0, %d], got %d", maxBufferSize, c.Buffer.Size)
	}
	if c.Events.Limit < 0 {
		return fmt.Errorf("events: limit must be >= 0, got %d", c.Events.Limit)
	}
	return nil
}
