package pipeline

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch signals vectors of differing dimension in one run.
// It is a fatal invariant violation: the run aborts rather than silently
// truncating or padding.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// CheckDimensions verifies every vector shares one dimension and that the
// vector count matches the expected item count.
func CheckDimensions(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("have %d vectors for %d items: %w", len(vectors), want, ErrDimensionMismatch)
	}
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, expected %d: %w",
				i, len(v), dim, ErrDimensionMismatch)
		}
	}
	return nil
}

// CosineSimilarity computes the true cosine of the angle between a and b.
// It does not assume unit-length inputs; remote providers may return
// unnormalized vectors. Zero vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// EuclideanDistance computes the L2 distance between a and b.
func EuclideanDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Centroid returns the arithmetic mean of the given vectors.
func Centroid(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	mean := make([]float32, dim)
	for _, v := range vectors {
		for i := range v {
			mean[i] += v[i]
		}
	}
	for i := range mean {
		mean[i] /= float32(len(vectors))
	}
	return mean
}

// Normalize scales v to unit length in place and returns it. Zero vectors
// are returned unchanged.
func Normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

// similarityMatrix computes the full pairwise cosine matrix. O(n²) time and
// space; acceptable for runs in the low thousands of items.
func similarityMatrix(vectors [][]float32) [][]float64 {
	n := len(vectors)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := CosineSimilarity(vectors[i], vectors[j])
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}
	return matrix
}
