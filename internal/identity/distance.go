package identity

import "math"

// CosineDistance returns 1 minus the cosine similarity of two embeddings:
// 0 for identical directions, 2 for opposite ones. Mismatched lengths and
// zero vectors report the maximum distance so callers reject the match.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2.0
	}

	// Clamp against floating point drift before converting to a distance.
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	sim = math.Max(-1, math.Min(1, sim))
	return 1 - sim
}
