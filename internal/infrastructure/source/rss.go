package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentEngine/internal/config"
	"ContentEngine/internal/domain"
	"ContentEngine/internal/ports"
)

// RSSSource polls configured blog feeds. No credential required.
type RSSSource struct {
	cfg      config.RSSConfig
	lookback time.Duration
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.ContentSource = (*RSSSource)(nil)

// NewRSSSource wires the source from scraping config.
func NewRSSSource(scraping config.ScrapingConfig, client *http.Client, logger *slog.Logger) *RSSSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RSSSource{
		cfg:      scraping.RSS,
		lookback: time.Duration(scraping.LookbackDays) * 24 * time.Hour,
		client:   client,
		logger:   logger,
	}
}

// Name identifies the source inside the registry.
func (r *RSSSource) Name() string {
	return "rss"
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	Content     string        `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	Author      string        `xml:"http://purl.org/dc/elements/1.1/ creator"`
	PubDate     string        `xml:"pubDate"`
	Categories  []string      `xml:"category"`
}

// Fetch polls every configured feed; items older than the lookback window
// are ignored. The keyword set is unused here, relevance filtering happens
// downstream.
func (r *RSSSource) Fetch(ctx context.Context, _ []string) ([]domain.ContentItem, error) {
	if !r.cfg.Enabled {
		r.logger.Info("rss source disabled in config")
		return nil, nil
	}

	cutoff := time.Now().UTC().Add(-r.lookback)
	var results []domain.ContentItem

	for _, feed := range r.cfg.Feeds {
		if feed.URL == "" {
			continue
		}

		items, err := r.fetchFeed(ctx, feed, cutoff)
		if err != nil {
			r.logger.Error("feed failed, skipping", "feed", feed.Name, "error", err)
			continue
		}
		results = append(results, items...)
		r.logger.Debug("feed scraped", "feed", feed.Name, "articles", len(items))
	}

	r.logger.Info("rss fetch done", "items", len(results))
	return results, nil
}

func (r *RSSSource) fetchFeed(ctx context.Context, feed config.FeedConfig, cutoff time.Time) ([]domain.ContentItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ContentEngine/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	var parsed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	var items []domain.ContentItem
	for _, entry := range parsed.Channel.Items {
		published := parsePubDate(entry.PubDate)
		if !published.IsZero() && published.Before(cutoff) {
			continue
		}

		body := entry.Content
		if body == "" {
			body = entry.Description
		}

		author := entry.Author
		if author == "" {
			author = feed.Name
		}

		items = append(items, domain.ContentItem{
			Source:      "rss",
			Kind:        domain.KindArticle,
			Title:       entry.Title,
			Body:        stripHTML(body),
			URL:         entry.Link,
			Author:      author,
			PublishedAt: published,
			ScrapedAt:   time.Now().UTC(),
			Tags:        entry.Categories,
		})
	}
	return items, nil
}

func parsePubDate(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// stripHTML reduces feed markup to plain text.
func stripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
