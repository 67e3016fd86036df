package core

import "math"

// Clamp01 clamps a value into [0,1]. NaN is treated as 0.0.
func Clamp01(value float64) float64 {
	if math.IsNaN(value) {
		return 0.0
	}
	return math.Max(0.0, math.Min(1.0, value))
}

// SanitizeSimilarity normalizes a raw similarity reported by the store.
// NaN and negative values collapse to 0.0; values above 1 are clamped,
// so a misbehaving store can never push a similarity outside [0,1].
func SanitizeSimilarity(raw float64) float64 {
	if math.IsNaN(raw) || raw < 0.0 {
		return 0.0
	}
	return Clamp01(raw)
}
