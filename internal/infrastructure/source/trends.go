package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ContentEngine/internal/config"
	"ContentEngine/internal/domain"
	"ContentEngine/internal/ports"
)

// TrendsSource reads the Google Trends daily-trends RSS for a region. The
// feed carries rough search-volume figures which become the view counter so
// trends rank alongside other sources.
type TrendsSource struct {
	cfg    config.TrendsConfig
	client *http.Client
	logger *slog.Logger
}

var _ ports.ContentSource = (*TrendsSource)(nil)

// NewTrendsSource wires the source from scraping config.
func NewTrendsSource(scraping config.ScrapingConfig, client *http.Client, logger *slog.Logger) *TrendsSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &TrendsSource{cfg: scraping.Trends, client: client, logger: logger}
}

// Name identifies the source inside the registry.
func (t *TrendsSource) Name() string {
	return "google_trends"
}

type trendsFeed struct {
	Channel struct {
		Items []struct {
			Title   string `xml:"title"`
			Traffic string `xml:"https://trends.google.com/trending/rss approx_traffic"`
			News    []struct {
				Headline string `xml:"news_item_title"`
				URL      string `xml:"news_item_url"`
				Source   string `xml:"news_item_source"`
			} `xml:"https://trends.google.com/trending/rss news_item"`
		} `xml:"item"`
	} `xml:"channel"`
}

// Fetch downloads the daily feed and keeps trends mentioning any keyword.
func (t *TrendsSource) Fetch(ctx context.Context, keywords []string) ([]domain.ContentItem, error) {
	if !t.cfg.Enabled {
		t.logger.Info("trends source disabled in config")
		return nil, nil
	}

	feedURL := fmt.Sprintf("%s/trending/rss?geo=%s", t.cfg.BaseURL, t.cfg.Geo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ContentEngine/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request trends feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends returned %s", resp.Status)
	}

	var feed trendsFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode trends feed: %w", err)
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		lowered = append(lowered, strings.ToLower(kw))
	}

	var results []domain.ContentItem
	now := time.Now().UTC()
	for _, item := range feed.Channel.Items {
		titleLower := strings.ToLower(item.Title)
		matched := ""
		for _, kw := range lowered {
			if strings.Contains(titleLower, kw) || strings.Contains(kw, titleLower) {
				matched = kw
				break
			}
		}
		if matched == "" {
			continue
		}

		var body strings.Builder
		fmt.Fprintf(&body, "Search trend related to %q. Approx traffic: %s.", matched, item.Traffic)
		for _, news := range item.News {
			fmt.Fprintf(&body, " %s (%s).", news.Headline, news.Source)
		}

		results = append(results, domain.ContentItem{
			Source:      "google_trends",
			Kind:        domain.KindTrend,
			Title:       "[Trending] " + item.Title,
			Body:        body.String(),
			URL:         t.exploreURL(item.Title),
			PublishedAt: now,
			ScrapedAt:   now,
			Views:       parseTraffic(item.Traffic),
			Tags:        []string{matched},
			SearchQuery: matched,
		})
	}

	t.logger.Info("trends fetch done", "items", len(results))
	return results, nil
}

func (t *TrendsSource) exploreURL(query string) string {
	return fmt.Sprintf("%s/trends/explore?q=%s&geo=%s",
		t.cfg.BaseURL, url.QueryEscape(query), t.cfg.Geo)
}

// parseTraffic turns figures like "20,000+" or "1M+" into an integer.
func parseTraffic(value string) int {
	value = strings.TrimSuffix(strings.ReplaceAll(strings.TrimSpace(value), ",", ""), "+")
	multiplier := 1
	switch {
	case strings.HasSuffix(value, "M"):
		multiplier = 1_000_000
		value = strings.TrimSuffix(value, "M")
	case strings.HasSuffix(value, "K"):
		multiplier = 1_000
		value = strings.TrimSuffix(value, "K")
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n * multiplier
}
