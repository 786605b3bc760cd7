package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSettingsDefaults(t *testing.T) {
	s, err := buildSettings(false, false, 0, 0, 0, 0)
	require.NoError(t, err)

	assert.False(t, s.Debug)
	assert.True(t, s.VerifySSL)
	assert.Equal(t, 60, s.APMMetricDurationMins)
	assert.Equal(t, 60, s.SnapshotDurationMins)
}

func TestBuildSettingsOverrides(t *testing.T) {
	s, err := buildSettings(true, true, 120, 30, 240, 240)
	require.NoError(t, err)

	assert.True(t, s.Debug)
	assert.False(t, s.VerifySSL)
	assert.Equal(t, 120, s.APMMetricDurationMins)
	assert.Equal(t, 30, s.MachineMetricDurationMins)
	assert.Equal(t, 240, s.SnapshotDurationMins)
	assert.Equal(t, 240, s.EventDurationMins)
}

func TestBuildSettingsRejectsNegativeWindows(t *testing.T) {
	_, err := buildSettings(false, false, -1, 0, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apm-mins")

	_, err = buildSettings(false, false, 0, 0, -5, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot-mins")
}
