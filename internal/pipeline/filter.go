package pipeline

import (
	"log/slog"
	"strings"

	"ContentEngine/internal/domain"
)

// KeywordFilter drops items whose full text matches too few keywords. It is
// the cheap first stage that keeps embedding cost and noise down.
type KeywordFilter struct {
	keywords      []string
	minHits       int
	caseSensitive bool
	logger        *slog.Logger
}

// NewKeywordFilter builds a filter over the given keyword set. Matching is
// literal substring search per keyword, not tokenized.
func NewKeywordFilter(keywords []string, minHits int, caseSensitive bool, logger *slog.Logger) *KeywordFilter {
	f := &KeywordFilter{
		minHits:       minHits,
		caseSensitive: caseSensitive,
		logger:        logger,
	}
	f.keywords = make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if !caseSensitive {
			kw = strings.ToLower(kw)
		}
		f.keywords = append(f.keywords, kw)
	}
	return f
}

// Score counts how many keywords occur at least once in the item's full text.
func (f *KeywordFilter) Score(item domain.ContentItem) int {
	text := item.FullText()
	if !f.caseSensitive {
		text = strings.ToLower(text)
	}
	hits := 0
	for _, kw := range f.keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return hits
}

// Filter returns the items scoring at least minHits, each annotated with its
// hit count. Order is preserved.
func (f *KeywordFilter) Filter(items []domain.ContentItem) []domain.ContentItem {
	filtered := make([]domain.ContentItem, 0, len(items))
	for _, item := range items {
		hits := f.Score(item)
		if hits < f.minHits {
			continue
		}
		item.KeywordHits = hits
		filtered = append(filtered, item)
	}

	if f.logger != nil {
		f.logger.Info("keyword filter done",
			"in", len(items),
			"out", len(filtered),
			"dropped", len(items)-len(filtered))
	}
	return filtered
}
