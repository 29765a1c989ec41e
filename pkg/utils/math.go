package utils

import "math"

// ClampFloat64 clamps a float64 value between min and max
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// RelativeError returns |got-want| scaled by |want|, or the absolute error when want is zero.
func RelativeError(got, want float64) float64 {
	diff := math.Abs(got - want)
	if want == 0 {
		return diff
	}
	return diff / math.Abs(want)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Sum adds up a slice of float64 values
func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}
