package domain

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// ContentKind distinguishes what a source produced.
type ContentKind string

const (
	KindPost    ContentKind = "post"
	KindVideo   ContentKind = "video"
	KindArticle ContentKind = "article"
	KindTrend   ContentKind = "trend"
)

// ContentItem is the unit flowing through the pipeline, one per scraped
// post/video/article/trend.
type ContentItem struct {
	Source      string
	Kind        ContentKind
	Title       string
	Body        string
	URL         string
	Author      string
	PublishedAt time.Time
	ScrapedAt   time.Time

	// Raw engagement counters; meaning varies per source.
	Views    int
	Likes    int
	Comments int
	Shares   int

	Tags []string

	// Annotations written by pipeline stages.
	KeywordHits int
	MergedURLs  []string
	SearchQuery string
	IsDuplicate bool
}

// Fingerprint derives a stable identifier from source and URL. It is the
// dedup/merge key across runs, independent of similarity-based dedup.
func (c ContentItem) Fingerprint() string {
	sum := md5.Sum([]byte(c.Source + ":" + c.URL))
	return hex.EncodeToString(sum[:])
}

// FullText concatenates title, body and tags; it is the embedding input.
func (c ContentItem) FullText() string {
	parts := []string{c.Title}
	if c.Body != "" {
		parts = append(parts, c.Body)
	}
	if len(c.Tags) > 0 {
		parts = append(parts, strings.Join(c.Tags, " "))
	}
	return strings.Join(parts, " ")
}

// EngagementScore is the weighted sum used for all ranking and tie-breaking.
// Identical counters always yield an identical score.
func (c ContentItem) EngagementScore() float64 {
	return float64(c.Views)*0.1 +
		float64(c.Likes)*1.0 +
		float64(c.Comments)*2.0 +
		float64(c.Shares)*3.0
}

// Excerpt truncates s to at most max runes, never splitting a multi-byte
// character. Bodies go through here before prompts and summaries.
func Excerpt(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
