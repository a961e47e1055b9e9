package engine

import "math"

// Status is the health classification derived from a percent value.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"

	WarningThreshold  = 60.0
	CriticalThreshold = 80.0
)

// CheckResult pairs a named percent reading with its classification.
type CheckResult struct {
	Name   string
	Value  float64
	Status Status
}

// Classify maps a percent value onto the fixed thresholds:
// below 60 is normal, [60, 80) is warning, 80 and above is critical.
func Classify(percent float64) Status {
	switch {
	case math.IsNaN(percent):
		return StatusNormal
	case percent >= CriticalThreshold:
		return StatusCritical
	case percent >= WarningThreshold:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Check classifies a single named reading.
func Check(name string, value float64) CheckResult {
	return CheckResult{Name: name, Value: value, Status: Classify(value)}
}

// Worst returns the most severe status among results, or normal when empty.
func Worst(results ...CheckResult) Status {
	worst := StatusNormal
	for _, r := range results {
		if severity(r.Status) > severity(worst) {
			worst = r.Status
		}
	}
	return worst
}

func severity(s Status) int {
	switch s {
	case StatusCritical:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}
