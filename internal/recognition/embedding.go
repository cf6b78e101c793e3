// Package recognition implements the real-time face recognition decision
// pipeline: a per-school gallery cache with an accelerated nearest-neighbor
// index, a match engine, a threshold-and-consensus decision engine, active
// learning feedback, and the scan orchestrator tying them together.
package recognition

import "math"

// Normalize returns the L2-normalized copy of v. A zero vector is returned
// as a zero copy rather than dividing by zero.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}

	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
