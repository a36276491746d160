package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEngagementScore(t *testing.T) {
	t.Parallel()

	item := ContentItem{Views: 100, Likes: 10, Comments: 5, Shares: 2}
	// 100*0.1 + 10*1 + 5*2 + 2*3
	want := 36.0
	if got := item.EngagementScore(); got != want {
		t.Fatalf("expected engagement %v, got %v", want, got)
	}

	if got := (ContentItem{}).EngagementScore(); got != 0 {
		t.Fatalf("expected zero engagement, got %v", got)
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	item := ContentItem{Source: "reddit", URL: "https://example.com/a"}
	if got := item.Fingerprint(); got != "f0e565d41ecff1baca64d4657bba6598" {
		t.Fatalf("unexpected fingerprint: %s", got)
	}

	other := ContentItem{Source: "youtube", URL: "https://example.com/a"}
	if other.Fingerprint() == item.Fingerprint() {
		t.Fatalf("fingerprint must depend on source")
	}

	// Title changes must not affect identity.
	retitled := item
	retitled.Title = "different"
	if retitled.Fingerprint() != item.Fingerprint() {
		t.Fatalf("fingerprint must ignore title")
	}
}

func TestFullText(t *testing.T) {
	t.Parallel()

	item := ContentItem{
		Title: "FBA prep guide",
		Body:  "How to prepare shipments.",
		Tags:  []string{"amazon", "logistics"},
	}

	text := item.FullText()
	for _, part := range []string{"FBA prep guide", "How to prepare shipments.", "amazon", "logistics"} {
		if !strings.Contains(text, part) {
			t.Fatalf("full text missing %q: %s", part, text)
		}
	}
}

func TestAudienceKeywords(t *testing.T) {
	t.Parallel()

	audience := Audience{
		CoreKeywords:     []string{"amazon fba", "private label"},
		ExtendedKeywords: []string{"ppc"},
	}

	all := audience.AllKeywords()
	if len(all) != 3 {
		t.Fatalf("expected 3 keywords, got %d", len(all))
	}
	if all[0] != "amazon fba" || all[2] != "ppc" {
		t.Fatalf("unexpected keyword order: %v", all)
	}

	queries := audience.SearchQueries(10)
	if len(queries) == 0 {
		t.Fatalf("expected derived queries")
	}
	if queries[0] != "amazon fba" {
		t.Fatalf("unexpected first query: %s", queries[0])
	}

	if got := audience.SearchQueries(0); got != nil {
		t.Fatalf("expected nil for zero max, got %v", got)
	}
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	if got := Excerpt("short", 300); got != "short" {
		t.Fatalf("short input changed: %q", got)
	}
	if got := Excerpt("abcdef", 3); got != "abc" {
		t.Fatalf("ascii truncation wrong: %q", got)
	}

	// Truncation must never split a multi-byte rune.
	body := strings.Repeat("ä", 10)
	got := Excerpt(body, 7)
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt split a rune: %q", got)
	}
	if utf8.RuneCountInString(got) != 7 {
		t.Fatalf("expected 7 runes, got %d", utf8.RuneCountInString(got))
	}
}

func TestSummaryTruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	rep := ContentItem{Title: "rep", Body: strings.Repeat("Ü", 400)}
	cluster := TopicCluster{ID: 1, Items: []ContentItem{rep}, Representative: &rep}

	summary := cluster.Summary()
	if !utf8.ValidString(summary) {
		t.Fatalf("summary contains invalid UTF-8")
	}
	if !strings.Contains(summary, "Representative content:") {
		t.Fatalf("summary missing representative section: %s", summary)
	}
}

func TestClusterAccessors(t *testing.T) {
	t.Parallel()

	cluster := TopicCluster{
		ID: 1,
		Items: []ContentItem{
			{Title: "low", Source: "reddit", Likes: 1},
			{Title: "high", Source: "youtube", Likes: 100},
			{Title: "mid", Source: "reddit", Likes: 10},
		},
	}

	if cluster.Size() != 3 {
		t.Fatalf("unexpected size: %d", cluster.Size())
	}
	if got := cluster.TotalEngagement(); got != 111 {
		t.Fatalf("unexpected total engagement: %v", got)
	}

	titles := cluster.TopTitles()
	if titles[0] != "high" {
		t.Fatalf("expected highest-engagement title first, got %v", titles)
	}

	sources := cluster.Sources()
	if len(sources) != 2 {
		t.Fatalf("expected 2 distinct sources, got %v", sources)
	}
}
