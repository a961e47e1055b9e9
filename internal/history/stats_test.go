package history

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_Scalar(t *testing.T) {
	s := New()
	s.scalars[KeyCPUPercent] = []float64{10, 20, 30}

	stats := Aggregate(s)
	sum, ok := stats.Get(KeyCPUPercent)
	require.True(t, ok)
	assert.Equal(t, Summary{Avg: 20, Min: 10, Max: 30, Count: 3}, sum)
}

func TestAggregate_EmptyKeyAbsent(t *testing.T) {
	s := New()
	s.scalars[KeyDiskRead] = nil

	stats := Aggregate(s)
	_, ok := stats.Get(KeyDiskRead)
	assert.False(t, ok)
	_, ok = stats.Get(KeyCPUPercent)
	assert.False(t, ok)
	assert.Empty(t, stats)
}

func TestAggregate_FlattensDevices(t *testing.T) {
	s := New()
	s.devices[KeyGPUUsage] = [][]float64{{10, 50}, {30}, {}}

	sum, ok := Aggregate(s).Get(KeyGPUUsage)
	require.True(t, ok)
	assert.Equal(t, 3, sum.Count)
	assert.InDelta(t, 30, sum.Avg, 1e-9)
	assert.Equal(t, 10.0, sum.Min)
	assert.Equal(t, 50.0, sum.Max)
}

func TestAggregate_SkipsNonFinite(t *testing.T) {
	s := New()
	s.scalars[KeyCPUTemp] = []float64{math.NaN(), 40, math.Inf(1), 60}
	s.scalars[KeyNetworkSent] = []float64{math.NaN()}

	stats := Aggregate(s)
	sum, ok := stats.Get(KeyCPUTemp)
	require.True(t, ok)
	assert.Equal(t, Summary{Avg: 50, Min: 40, Max: 60, Count: 2}, sum)
	_, ok = stats.Get(KeyNetworkSent)
	assert.False(t, ok)
}

func TestAggregate_ExcludesStructuralKeys(t *testing.T) {
	s := New()
	s.Append(sampleAt(0, 10))

	stats := s.Statistics()
	for _, key := range []string{KeyTimestamps, KeyCPUPerCore, KeyTopProcesses} {
		_, ok := stats.Get(key)
		assert.False(t, ok, key)
	}
	_, ok := stats.Get(KeyCPUPercent)
	assert.True(t, ok)
}

func TestAggregate_Deterministic(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		s.Append(sampleAt(i, float64(i*7%11)))
	}
	assert.Equal(t, Aggregate(s), Aggregate(s))
}
