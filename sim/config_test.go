package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSchedulerConfig_FieldEquivalence(t *testing.T) {
	got := NewSchedulerConfig(4)
	want := SchedulerConfig{Quantum: 4}
	assert.Equal(t, want, got)
}

func TestSchedulerConfig_Validate(t *testing.T) {
	assert.NoError(t, NewSchedulerConfig(1).Validate())
	assert.Error(t, NewSchedulerConfig(0).Validate())
	assert.Error(t, NewSchedulerConfig(-3).Validate())
}
