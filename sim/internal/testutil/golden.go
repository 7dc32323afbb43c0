// Package testutil provides shared test infrastructure for the kernel simulator.
// It holds the golden dataset types and assertion helpers used by the
// sim/ and sim/memory/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Scheduler []SchedulerCase `json:"scheduler"`
	Memory    []MemoryCase    `json:"memory"`
}

// SchedulerCase creates Bursts at clock 0 in order, runs Ticks ticks, and
// lists the expected state of every process afterwards.
type SchedulerCase struct {
	Name      string             `json:"name"`
	Quantum   int64              `json:"quantum"`
	Bursts    []int64            `json:"bursts"`
	Ticks     int                `json:"ticks"`
	Processes []GoldenProcess    `json:"processes"`
	Metrics   GoldenSchedMetrics `json:"metrics"`
}

type GoldenProcess struct {
	PID        int    `json:"pid"`
	State      string `json:"state"`
	Remaining  int64  `json:"remaining"`
	Wait       int64  `json:"wait"`
	Turnaround int64  `json:"turnaround"` // only meaningful for TERMINATED
}

// GoldenSchedMetrics are zero when nothing has completed.
type GoldenSchedMetrics struct {
	Completed             int     `json:"completed"`
	AvgWait               float64 `json:"avg_wait"`
	AvgTurnaround         float64 `json:"avg_turnaround"`
	ThroughputPerKiloTick float64 `json:"throughput_per_kilo_tick"`
}

// MemoryCase replays References, each a [pid, page] pair, against Frames frames.
type MemoryCase struct {
	Name       string   `json:"name"`
	Frames     int      `json:"frames"`
	References [][2]int `json:"references"`
	Hits       int64    `json:"hits"`
	Faults     int64    `json:"faults"`
	// Resident lists the [pid, page] held by each frame at the end, by frame ID.
	Resident [][2]int `json:"resident"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
