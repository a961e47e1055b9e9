package history

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the aggregate of one metric over the session.
type Summary struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Statistics maps a metric key to its summary. Keys with no recorded values
// are absent.
type Statistics map[string]Summary

// Get returns the summary for key and whether it exists.
func (st Statistics) Get(key string) (Summary, bool) {
	s, ok := st[key]
	return s, ok
}

// Aggregate computes avg/min/max for every scalar and device series in s.
// Device series are flattened across devices and ticks. Non-finite values are
// ignored. Structural sequences are not aggregated.
func Aggregate(s *Store) Statistics {
	stats := make(Statistics)

	for key, values := range s.scalars {
		if sum, ok := summarize(values); ok {
			stats[key] = sum
		}
	}

	for key, ticks := range s.devices {
		var pool []float64
		for _, tick := range ticks {
			pool = append(pool, tick...)
		}
		if sum, ok := summarize(pool); ok {
			stats[key] = sum
		}
	}

	return stats
}

func summarize(values []float64) (Summary, bool) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		finite = append(finite, v)
	}
	if len(finite) == 0 {
		return Summary{}, false
	}
	return Summary{
		Avg:   stat.Mean(finite, nil),
		Min:   floats.Min(finite),
		Max:   floats.Max(finite),
		Count: len(finite),
	}, true
}
