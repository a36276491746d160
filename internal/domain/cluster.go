package domain

import (
	"fmt"
	"sort"
	"strings"
)

// NoiseLabel marks items a density clusterer declined to assign; such items
// never appear in output clusters.
const NoiseLabel = -1

// TopicCluster groups content items sharing a semantic theme. Membership is
// fixed at creation; only Label may be set afterwards.
type TopicCluster struct {
	ID             int
	Label          string
	Items          []ContentItem
	Centroid       []float32
	Representative *ContentItem
}

// Size returns the member count.
func (t TopicCluster) Size() int {
	return len(t.Items)
}

// TotalEngagement sums member engagement scores; it defines output ordering.
func (t TopicCluster) TotalEngagement() float64 {
	var total float64
	for _, item := range t.Items {
		total += item.EngagementScore()
	}
	return total
}

// AvgEngagement returns the mean member engagement score.
func (t TopicCluster) AvgEngagement() float64 {
	if len(t.Items) == 0 {
		return 0
	}
	return t.TotalEngagement() / float64(len(t.Items))
}

// Sources lists the distinct source tags represented in the cluster.
func (t TopicCluster) Sources() []string {
	seen := map[string]struct{}{}
	var sources []string
	for _, item := range t.Items {
		if _, ok := seen[item.Source]; ok {
			continue
		}
		seen[item.Source] = struct{}{}
		sources = append(sources, item.Source)
	}
	return sources
}

// TopTitles returns up to five member titles ordered by engagement.
func (t TopicCluster) TopTitles() []string {
	sorted := make([]ContentItem, len(t.Items))
	copy(sorted, t.Items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EngagementScore() > sorted[j].EngagementScore()
	})
	limit := 5
	if len(sorted) < limit {
		limit = len(sorted)
	}
	titles := make([]string, 0, limit)
	for _, item := range sorted[:limit] {
		titles = append(titles, item.Title)
	}
	return titles
}

// Summary renders the plain-text digest consumed by the idea generator.
func (t TopicCluster) Summary() string {
	lines := []string{
		fmt.Sprintf("Topic Cluster #%d", t.ID),
		fmt.Sprintf("Size: %d items | Sources: %s", t.Size(), strings.Join(t.Sources(), ", ")),
		fmt.Sprintf("Total Engagement: %.0f", t.TotalEngagement()),
		"Top content titles:",
	}
	for i, title := range t.TopTitles() {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, title))
	}
	if t.Representative != nil {
		body := Excerpt(t.Representative.Body, 300)
		lines = append(lines,
			"",
			"Representative content:",
			fmt.Sprintf("  Title: %s", t.Representative.Title),
			fmt.Sprintf("  Body: %s...", body),
		)
	}
	return strings.Join(lines, "\n")
}
