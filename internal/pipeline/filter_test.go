package pipeline

import (
	"testing"

	"ContentEngine/internal/domain"
)

func TestKeywordFilterScore(t *testing.T) {
	t.Parallel()

	filter := NewKeywordFilter([]string{"FBA", "inventory"}, 1, false, nil)

	item := domain.ContentItem{
		Title: "My fba journey",
		Body:  "Managing Inventory across warehouses.",
	}
	if got := filter.Score(item); got != 2 {
		t.Fatalf("expected 2 hits, got %d", got)
	}

	miss := domain.ContentItem{Title: "unrelated", Body: "nothing here"}
	if got := filter.Score(miss); got != 0 {
		t.Fatalf("expected 0 hits, got %d", got)
	}
}

func TestKeywordFilterCaseSensitive(t *testing.T) {
	t.Parallel()

	filter := NewKeywordFilter([]string{"FBA"}, 1, true, nil)

	if got := filter.Score(domain.ContentItem{Title: "fba tips"}); got != 0 {
		t.Fatalf("case-sensitive filter matched lowercase: %d hits", got)
	}
	if got := filter.Score(domain.ContentItem{Title: "FBA tips"}); got != 1 {
		t.Fatalf("expected exact-case match, got %d hits", got)
	}
}

func TestKeywordFilterAnnotatesAndPreservesOrder(t *testing.T) {
	t.Parallel()

	filter := NewKeywordFilter([]string{"fba", "ppc"}, 1, false, nil)

	items := []domain.ContentItem{
		{URL: "a", Title: "FBA and PPC combined"},
		{URL: "b", Title: "completely off topic"},
		{URL: "c", Title: "ppc bids"},
	}

	filtered := filter.Filter(items)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(filtered))
	}
	if filtered[0].URL != "a" || filtered[1].URL != "c" {
		t.Fatalf("order not preserved: %v", filtered)
	}
	if filtered[0].KeywordHits != 2 || filtered[1].KeywordHits != 1 {
		t.Fatalf("unexpected hit annotations: %d, %d",
			filtered[0].KeywordHits, filtered[1].KeywordHits)
	}

	// The input slice must stay untouched.
	if items[0].KeywordHits != 0 {
		t.Fatalf("input slice was mutated")
	}
}

func TestKeywordFilterMinHits(t *testing.T) {
	t.Parallel()

	items := []domain.ContentItem{{Title: "fba only"}}

	loose := NewKeywordFilter([]string{"fba", "ppc"}, 1, false, nil)
	if got := len(loose.Filter(items)); got != 1 {
		t.Fatalf("minHits=1 expected pass, got %d survivors", got)
	}

	strict := NewKeywordFilter([]string{"fba", "ppc"}, 2, false, nil)
	if got := len(strict.Filter(items)); got != 0 {
		t.Fatalf("minHits=2 expected drop, got %d survivors", got)
	}
}

func TestKeywordFilterEmptyKeywords(t *testing.T) {
	t.Parallel()

	filter := NewKeywordFilter(nil, 1, false, nil)
	filtered := filter.Filter([]domain.ContentItem{{Title: "anything"}})
	if len(filtered) != 0 {
		t.Fatalf("no keywords can never reach minHits=1, got %d", len(filtered))
	}
}
