package source

import (
	"context"
	"encoding/json"
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

// YouTubeSource searches recent videos per keyword through the Data API v3
// and enriches them with statistics. Requires an API key; absence means the
// source is skipped with a warning.
type YouTubeSource struct {
	cfg        config.YouTubeConfig
	lookback   time.Duration
	maxResults int
	client     *http.Client
	logger     *slog.Logger
}

var _ ports.ContentSource = (*YouTubeSource)(nil)

// NewYouTubeSource wires the source from scraping config.
func NewYouTubeSource(scraping config.ScrapingConfig, client *http.Client, logger *slog.Logger) *YouTubeSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	max := scraping.MaxResultsPerSource
	if max > 50 {
		max = 50 // search.list page cap
	}
	return &YouTubeSource{
		cfg:        scraping.YouTube,
		lookback:   time.Duration(scraping.LookbackDays) * 24 * time.Hour,
		maxResults: max,
		client:     client,
		logger:     logger,
	}
}

// Name identifies the source inside the registry.
func (y *YouTubeSource) Name() string {
	return "youtube"
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet ytSnippet `json:"snippet"`
	} `json:"items"`
}

type ytSnippet struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ChannelTitle string   `json:"channelTitle"`
	PublishedAt  string   `json:"publishedAt"`
	Tags         []string `json:"tags"`
}

type ytVideosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Fetch searches each keyword and folds statistics into content items.
func (y *YouTubeSource) Fetch(ctx context.Context, keywords []string) ([]domain.ContentItem, error) {
	if !y.cfg.Enabled {
		y.logger.Info("youtube source disabled in config")
		return nil, nil
	}
	if y.cfg.APIKey == "" {
		y.logger.Warn("youtube api key not configured, skipping")
		return nil, nil
	}

	publishedAfter := time.Now().UTC().Add(-y.lookback).Format(time.RFC3339)
	var results []domain.ContentItem
	seen := map[string]struct{}{}

	for _, keyword := range keywords {
		search, err := y.search(ctx, keyword, publishedAfter)
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", keyword, err)
		}

		var ids []string
		snippets := map[string]ytSnippet{}
		for _, item := range search.Items {
			vid := item.ID.VideoID
			if vid == "" {
				continue
			}
			if _, ok := seen[vid]; ok {
				continue
			}
			seen[vid] = struct{}{}
			ids = append(ids, vid)
			snippets[vid] = item.Snippet
		}
		if len(ids) == 0 {
			continue
		}

		stats, err := y.statistics(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("keyword %q statistics: %w", keyword, err)
		}

		for _, vid := range ids {
			snippet := snippets[vid]
			stat := stats[vid]
			var published time.Time
			if snippet.PublishedAt != "" {
				published, _ = time.Parse(time.RFC3339, snippet.PublishedAt)
			}

			results = append(results, domain.ContentItem{
				Source:      "youtube",
				Kind:        domain.KindVideo,
				Title:       snippet.Title,
				Body:        snippet.Description,
				URL:         "https://www.youtube.com/watch?v=" + vid,
				Author:      snippet.ChannelTitle,
				PublishedAt: published,
				ScrapedAt:   time.Now().UTC(),
				Views:       stat.views,
				Likes:       stat.likes,
				Comments:    stat.comments,
				Tags:        snippet.Tags,
				SearchQuery: keyword,
			})
		}
		y.logger.Debug("youtube keyword scraped", "keyword", keyword, "videos", len(ids))
	}

	y.logger.Info("youtube fetch done", "items", len(results))
	return results, nil
}

type ytStats struct {
	views, likes, comments int
}

func (y *YouTubeSource) search(ctx context.Context, keyword, publishedAfter string) (*ytSearchResponse, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(y.maxResults))
	params.Set("order", y.cfg.Order)
	params.Set("regionCode", y.cfg.RegionCode)
	params.Set("relevanceLanguage", "en")
	params.Set("publishedAfter", publishedAfter)
	params.Set("key", y.cfg.APIKey)

	var out ytSearchResponse
	if err := y.get(ctx, y.cfg.BaseURL+"/search?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (y *YouTubeSource) statistics(ctx context.Context, ids []string) (map[string]ytStats, error) {
	params := url.Values{}
	params.Set("part", "statistics")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", y.cfg.APIKey)

	var out ytVideosResponse
	if err := y.get(ctx, y.cfg.BaseURL+"/videos?"+params.Encode(), &out); err != nil {
		return nil, err
	}

	stats := make(map[string]ytStats, len(out.Items))
	for _, item := range out.Items {
		stats[item.ID] = ytStats{
			views:    atoiSafe(item.Statistics.ViewCount),
			likes:    atoiSafe(item.Statistics.LikeCount),
			comments: atoiSafe(item.Statistics.CommentCount),
		}
	}
	return stats, nil
}

func (y *YouTubeSource) get(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func atoiSafe(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
