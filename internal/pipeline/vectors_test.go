package pipeline

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical vectors: expected 1, got %v", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Fatalf("orthogonal vectors: expected 0, got %v", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{-1, 0}); math.Abs(got+1) > 1e-9 {
		t.Fatalf("opposite vectors: expected -1, got %v", got)
	}

	// Magnitude must not matter.
	a := []float32{3, 4}
	b := []float32{30, 40}
	if got := CosineSimilarity(a, b); math.Abs(got-1) > 1e-9 {
		t.Fatalf("scaled vectors: expected 1, got %v", got)
	}

	if got := CosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Fatalf("zero vector: expected 0, got %v", got)
	}
}

func TestEuclideanDistance(t *testing.T) {
	t.Parallel()

	if got := EuclideanDistance([]float32{0, 0}, []float32{3, 4}); math.Abs(got-5) > 1e-9 {
		t.Fatalf("expected distance 5, got %v", got)
	}
	if got := EuclideanDistance([]float32{1, 2}, []float32{1, 2}); got != 0 {
		t.Fatalf("expected zero distance, got %v", got)
	}
}

func TestCheckDimensions(t *testing.T) {
	t.Parallel()

	ok := [][]float32{{1, 2, 3}, {4, 5, 6}}
	if err := CheckDimensions(ok, 2); err != nil {
		t.Fatalf("uniform vectors rejected: %v", err)
	}

	ragged := [][]float32{{1, 2, 3}, {4, 5}}
	err := CheckDimensions(ragged, 2)
	if err == nil {
		t.Fatalf("ragged vectors accepted")
	}
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	if err := CheckDimensions(ok, 3); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("count mismatch not reported: %v", err)
	}
}

func TestCentroid(t *testing.T) {
	t.Parallel()

	centroid := Centroid([][]float32{{0, 0}, {2, 4}})
	if centroid[0] != 1 || centroid[1] != 2 {
		t.Fatalf("unexpected centroid: %v", centroid)
	}

	if got := Centroid(nil); got != nil {
		t.Fatalf("expected nil centroid for empty input, got %v", got)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	normalized := Normalize([]float32{3, 4})
	norm := math.Sqrt(float64(normalized[0]*normalized[0] + normalized[1]*normalized[1]))
	if math.Abs(norm-1) > 1e-6 {
		t.Fatalf("expected unit norm, got %v", norm)
	}

	zero := Normalize([]float32{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Fatalf("zero vector must stay zero: %v", zero)
	}
}
