package source

import (
	"context"
	"fmt"
	"log/slog"

	"ContentEngine/internal/domain"
	"ContentEngine/internal/ports"
	"ContentEngine/internal/scraper"
)

// MultiSource fans one fetch out to every registered source. A failing
// source is logged and skipped so one broken provider never starves a run.
type MultiSource struct {
	registry *scraper.Registry
	names    []string
	logger   *slog.Logger
}

var _ ports.ContentSource = (*MultiSource)(nil)

// NewMultiSource wires the registry with the source names to execute, in
// order.
func NewMultiSource(registry *scraper.Registry, names []string, logger *slog.Logger) *MultiSource {
	return &MultiSource{registry: registry, names: names, logger: logger}
}

// Name identifies the aggregate source.
func (m *MultiSource) Name() string {
	return "multi"
}

// Fetch aggregates results across sources, preserving source order.
func (m *MultiSource) Fetch(ctx context.Context, keywords []string) ([]domain.ContentItem, error) {
	if m.registry == nil {
		return nil, fmt.Errorf("source registry is not configured")
	}

	var aggregated []domain.ContentItem
	for _, name := range m.names {
		src, err := m.registry.Resolve(name)
		if err != nil {
			return nil, err
		}

		items, err := src.Fetch(ctx, keywords)
		if err != nil {
			m.logger.Error("source failed, skipping", "source", name, "error", err)
			continue
		}
		m.logger.Debug("source produced items", "source", name, "count", len(items))
		aggregated = append(aggregated, items...)
	}

	m.logger.Info("scrape done", "total_items", len(aggregated))
	return aggregated, nil
}
