package errors

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CheckVector rejects vectors carrying NaN or Inf entries. Observations are
// validated with it before they can reach a component's statistics.
func CheckVector(op string, v mat.Vector) error {
	for i := 0; i < v.Len(); i++ {
		if x := v.AtVec(i); !IsFinite(x) {
			return NewValueError(op, "input contains NaN or Inf")
		}
	}
	return nil
}

// FiniteOrZero maps NaN and ±Inf to 0.
// Densities go through it so that a degenerate covariance contributes nothing
// instead of poisoning the mixture.
func FiniteOrZero(v float64) float64 {
	if !IsFinite(v) {
		return 0
	}
	return v
}
