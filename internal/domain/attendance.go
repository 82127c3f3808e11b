package domain

import "math"

// Status is the three-way attendance classification.
type Status string

const (
	StatusLow    Status = "Low"
	StatusNormal Status = "Normal"
	StatusHigh   Status = "High"
)

// Classify partitions attendance against the stadium's percentile thresholds.
// Attendance equal to either threshold is Normal.
func Classify(attendance int, p StadiumProfile) Status {
	a := float64(attendance)
	switch {
	case a < p.P30:
		return StatusLow
	case a > p.P70:
		return StatusHigh
	default:
		return StatusNormal
	}
}

// ScaleAttendance converts a fraction of capacity into a head count, capped
// at capacity. Halves round to even. Negative fractions are passed through
// unfloored; a NaN fraction scales to zero.
func ScaleAttendance(fraction float64, capacity int) int {
	scaled := math.RoundToEven(fraction * float64(capacity))
	switch {
	case math.IsNaN(scaled):
		return 0
	case scaled >= float64(capacity):
		return capacity
	case scaled <= math.MinInt64:
		return math.MinInt
	default:
		return int(scaled)
	}
}

// ClampFraction bounds a raw model output to [0, 1].
func ClampFraction(fraction float64) float64 {
	switch {
	case math.IsNaN(fraction) || fraction < 0:
		return 0
	case fraction > 1:
		return 1
	default:
		return fraction
	}
}
