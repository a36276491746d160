package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ContentEngine/internal/config"
	"ContentEngine/internal/domain"
	"ContentEngine/internal/ports"
)

// RedditSource pulls recent posts from configured subreddits via the public
// listing JSON API. No credential required; a descriptive User-Agent is.
type RedditSource struct {
	cfg        config.RedditConfig
	subreddits []string
	lookback   time.Duration
	maxResults int
	client     *http.Client
	logger     *slog.Logger
}

var _ ports.ContentSource = (*RedditSource)(nil)

// NewRedditSource wires the source from scraping config.
func NewRedditSource(scraping config.ScrapingConfig, subreddits []string, client *http.Client, logger *slog.Logger) *RedditSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RedditSource{
		cfg:        scraping.Reddit,
		subreddits: subreddits,
		lookback:   time.Duration(scraping.LookbackDays) * 24 * time.Hour,
		maxResults: scraping.MaxResultsPerSource,
		client:     client,
		logger:     logger,
	}
}

// Name identifies the source inside the registry.
func (r *RedditSource) Name() string {
	return "reddit"
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Author      string  `json:"author"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
}

// Fetch walks configured subreddits and keeps recent posts mentioning at
// least one keyword, matching what the listing pre-filter of the upstream
// search would do.
func (r *RedditSource) Fetch(ctx context.Context, keywords []string) ([]domain.ContentItem, error) {
	if !r.cfg.Enabled {
		r.logger.Info("reddit source disabled in config")
		return nil, nil
	}

	cutoff := time.Now().UTC().Add(-r.lookback)
	keywordSet := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		keywordSet = append(keywordSet, strings.ToLower(kw))
	}

	var results []domain.ContentItem
	seen := map[string]struct{}{}

	for _, sub := range r.subreddits {
		listing, err := r.fetchListing(ctx, sub)
		if err != nil {
			return nil, fmt.Errorf("subreddit %s: %w", sub, err)
		}

		count := 0
		for _, child := range listing.Data.Children {
			post := child.Data
			if _, ok := seen[post.ID]; ok {
				continue
			}
			published := time.Unix(int64(post.CreatedUTC), 0).UTC()
			if published.Before(cutoff) {
				continue
			}

			combined := strings.ToLower(post.Title + " " + post.Selftext)
			hit := false
			for _, kw := range keywordSet {
				if strings.Contains(combined, kw) {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}

			seen[post.ID] = struct{}{}
			results = append(results, domain.ContentItem{
				Source:      "reddit",
				Kind:        domain.KindPost,
				Title:       post.Title,
				Body:        post.Selftext,
				URL:         "https://www.reddit.com" + post.Permalink,
				Author:      post.Author,
				PublishedAt: published,
				ScrapedAt:   time.Now().UTC(),
				Likes:       post.Score,
				Comments:    post.NumComments,
				Tags:        []string{post.Subreddit},
			})
			count++
		}
		r.logger.Debug("subreddit scraped", "subreddit", sub, "posts", count)
	}

	r.logger.Info("reddit fetch done", "items", len(results))
	return results, nil
}

func (r *RedditSource) fetchListing(ctx context.Context, subreddit string) (*redditListing, error) {
	sort := r.cfg.Sort
	if sort == "" {
		sort = "hot"
	}
	listURL := fmt.Sprintf("%s/r/%s/%s.json?limit=%d&t=week", r.cfg.BaseURL, subreddit, sort, r.maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned %s", resp.Status)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &listing, nil
}
