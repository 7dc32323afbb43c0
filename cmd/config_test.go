package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(3), cfg.Scheduler.Quantum)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Zero(t, cfg.Memory.Frames)
	assert.Zero(t, cfg.Buffer.Size)
	assert.Equal(t, 1000, cfg.Events.Limit)
}

func TestLoadConfig_PartialFile_KeepsDefaults(t *testing.T) {
	// GIVEN a file that only sets the quantum and the frame count
	path := writeConfig(t, "scheduler:\n  quantum: 5\nmemory:\n  frames: 4\n")

	// WHEN it is loaded
	cfg, err := LoadConfig(path)

	// THEN those values are taken and everything else stays at its default
	require.NoError(t, err)
	assert.Equal(t, int64(5), cfg.Scheduler.Quantum)
	assert.Equal(t, 4, cfg.Memory.Frames)
	assert.False(t, cfg.Memory.Strict)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.Events.Limit)
}

func TestLoadConfig_FullFile(t *testing.T) {
	path := writeConfig(t, `log_level: debug
scheduler:
  quantum: 2
memory:
  frames: 3
  strict: true
buffer:
  size: 5
events:
  limit: 0
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, Config{
		LogLevel:  "debug",
		Scheduler: SchedulerConfig{Quantum: 2},
		Memory:    MemoryConfig{Frames: 3, Strict: true},
		Buffer:    BufferConfig{Size: 5},
		Events:    EventsConfig{Limit: 0},
	}, cfg)
}

func TestLoadConfig_EmptyFile_ReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_UnknownKey_Rejected(t *testing.T) {
	// GIVEN a typo in a key name
	path := writeConfig(t, "scheduler:\n  quantom: 5\n")

	// WHEN it is loaded
	_, err := LoadConfig(path)

	// THEN strict parsing reports it instead of silently ignoring it
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantom")
}

func TestLoadConfig_InvalidValues_Rejected(t *testing.T) {
	cases := map[string]string{
		"zero quantum":    "scheduler:\n  quantum: 0\n",
		"negative frames": "memory:\n  frames: -1\n",
		"negative buffer": "buffer:\n  size: -2\n",
		"huge frames":     "memory:\n  frames: 70000\n",
		"huge buffer":     "buffer:\n  size: 9223372036854775807\n",
		"negative limit":  "events:\n  limit: -1\n",
		"bad log level":   "log_level: loud\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}
