package domain

import "fmt"

// Audience describes a target reader group with its own keyword set and
// source hints. Audiences are loaded once from configuration and passed into
// the pipeline entry point.
type Audience struct {
	ID               string
	Name             string
	Description      string
	CoreKeywords     []string
	ExtendedKeywords []string
	Subreddits       []string
	Feeds            []string
}

// AllKeywords returns core plus extended keywords in declared order.
func (a Audience) AllKeywords() []string {
	keywords := make([]string, 0, len(a.CoreKeywords)+len(a.ExtendedKeywords))
	keywords = append(keywords, a.CoreKeywords...)
	keywords = append(keywords, a.ExtendedKeywords...)
	return keywords
}

// SearchQueries derives query strings for search-backed sources from the core
// keywords, capped at max.
func (a Audience) SearchQueries(max int) []string {
	if max <= 0 {
		return nil
	}

	var queries []string
	for _, kw := range a.CoreKeywords {
		if len(queries) >= max {
			return queries
		}
		queries = append(queries, kw)
	}

	seeds := a.CoreKeywords
	if len(seeds) > 3 {
		seeds = seeds[:3]
	}
	for _, kw := range seeds {
		for _, suffix := range []string{"2026", "tips", "strategy"} {
			queries = append(queries, fmt.Sprintf("%s %s", kw, suffix))
		}
	}

	if len(queries) > max {
		queries = queries[:max]
	}
	return queries
}
