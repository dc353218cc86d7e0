package reembed

import "math"

// NormalizeVector scales v to unit length without modifying it. Cosine
// similarity over unit vectors reduces to a dot product, so embeddings are
// normalized once here instead of renormalizing on every query. A zero or
// empty input yields a same-length zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return out
	}

	inv := float32(1 / norm)
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}
