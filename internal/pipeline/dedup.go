package pipeline

import (
	"fmt"
	"log/slog"

	"ContentEngine/internal/domain"
)

// Deduplicator removes near-duplicate items by pairwise cosine similarity
// over their embedding vectors, keeping the higher-engagement item of each
// near-duplicate pair.
type Deduplicator struct {
	threshold float64
	logger    *slog.Logger
}

// NewDeduplicator builds a deduplicator with the given similarity threshold.
func NewDeduplicator(threshold float64, logger *slog.Logger) *Deduplicator {
	return &Deduplicator{threshold: threshold, logger: logger}
}

// Deduplicate walks unordered index pairs (i, j), i < j. Whenever their
// similarity reaches the threshold the lower-engagement item is eliminated
// (ties keep the lower index) and its URL is appended to the survivor's
// MergedURLs. An eliminated index takes no further part in comparisons, so
// near-duplicate chains resolve by traversal order rather than transitive
// closure; that approximation is part of the contract.
func (d *Deduplicator) Deduplicate(items []domain.ContentItem, vectors [][]float32) ([]domain.ContentItem, [][]float32, error) {
	if len(items) <= 1 {
		return items, vectors, nil
	}
	if err := CheckDimensions(vectors, len(items)); err != nil {
		return nil, nil, fmt.Errorf("dedup input: %w", err)
	}

	n := len(items)
	if d.logger != nil {
		d.logger.Info("computing similarity matrix", "items", n, "threshold", d.threshold)
	}

	matrix := similarityMatrix(vectors)
	removed := make([]bool, n)

	for i := 0; i < n; i++ {
		if removed[i] {
			continue
		}
		for j := i + 1; j < n; j++ {
			if removed[j] {
				continue
			}
			if matrix[i][j] < d.threshold {
				continue
			}
			if items[i].EngagementScore() >= items[j].EngagementScore() {
				removed[j] = true
				items[j].IsDuplicate = true
				items[i].MergedURLs = append(items[i].MergedURLs, items[j].URL)
			} else {
				removed[i] = true
				items[i].IsDuplicate = true
				items[j].MergedURLs = append(items[j].MergedURLs, items[i].URL)
				break // i is gone, stop comparing it
			}
		}
	}

	kept := make([]domain.ContentItem, 0, n)
	keptVectors := make([][]float32, 0, n)
	for i := 0; i < n; i++ {
		if removed[i] {
			continue
		}
		kept = append(kept, items[i])
		keptVectors = append(keptVectors, vectors[i])
	}

	if d.logger != nil {
		d.logger.Info("dedup done", "in", n, "out", len(kept), "removed", n-len(kept))
	}
	return kept, keptVectors, nil
}
