package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	configPathEnv      = "CONTENT_ENGINE_CONFIG"
	databasePathEnv    = "DATABASE_PATH"
	geminiAPIKeyEnv    = "GOOGLE_API_KEY"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	youtubeAPIKeyEnv   = "YOUTUBE_API_KEY"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	embedProviderEnv   = "EMBEDDING_PROVIDER"
	ollamaEndpointEnv  = "OLLAMA_ENDPOINT"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Database   DatabaseConfig   `yaml:"database"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Scraping   ScrapingConfig   `yaml:"scraping"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Generation GenerationConfig `yaml:"generation"`
	Output     OutputConfig     `yaml:"output"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Audiences  []AudienceConfig `yaml:"audiences"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the SQLite file location. Empty path disables
// persistence.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when scheduled runs execute.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// ScrapingConfig groups settings for all content sources.
type ScrapingConfig struct {
	LookbackDays        int           `yaml:"lookbackDays"`
	MaxResultsPerSource int           `yaml:"maxResultsPerSource"`
	Reddit              RedditConfig  `yaml:"reddit"`
	YouTube             YouTubeConfig `yaml:"youtube"`
	RSS                 RSSConfig     `yaml:"rss"`
	Trends              TrendsConfig  `yaml:"trends"`
}

// RedditConfig wires the public listing API.
type RedditConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Sort      string `yaml:"sort"`
	UserAgent string `yaml:"userAgent"`
	BaseURL   string `yaml:"baseUrl"`
}

// YouTubeConfig wires the Data API v3.
type YouTubeConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIKey     string `yaml:"apiKey"`
	RegionCode string `yaml:"regionCode"`
	Order      string `yaml:"order"`
	BaseURL    string `yaml:"baseUrl"`
}

// RSSConfig lists blog feeds to poll.
type RSSConfig struct {
	Enabled bool         `yaml:"enabled"`
	Feeds   []FeedConfig `yaml:"feeds"`
}

// FeedConfig names a single RSS/Atom feed.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// TrendsConfig wires the Google Trends daily RSS.
type TrendsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Geo     string `yaml:"geo"`
	BaseURL string `yaml:"baseUrl"`
}

// PipelineConfig carries the core processing knobs.
type PipelineConfig struct {
	KeywordFilter KeywordFilterConfig `yaml:"keywordFilter"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Dedup         DedupConfig         `yaml:"dedup"`
	Clustering    ClusteringConfig    `yaml:"clustering"`
}

// KeywordFilterConfig tunes the relevance filter.
type KeywordFilterConfig struct {
	MinKeywordHits int  `yaml:"minKeywordHits"`
	CaseSensitive  bool `yaml:"caseSensitive"`
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	Provider  string              `yaml:"provider"` // remote | local
	BatchSize int                 `yaml:"batchSize"`
	Remote    RemoteEmbedConfig   `yaml:"remote"`
	Local     LocalEmbedConfig    `yaml:"local"`
}

// RemoteEmbedConfig describes the Gemini embedding API.
type RemoteEmbedConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// LocalEmbedConfig describes the Ollama embedding endpoint.
type LocalEmbedConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// DedupConfig tunes semantic deduplication.
type DedupConfig struct {
	SimilarityThreshold float64 `yaml:"similarityThreshold"`
}

// ClusteringConfig tunes topic clustering.
type ClusteringConfig struct {
	Algorithm      string  `yaml:"algorithm"` // density | partition
	MinClusterSize int     `yaml:"minClusterSize"`
	MinSamples     int     `yaml:"minSamples"`
	Epsilon        float64 `yaml:"epsilon"`
	PartitionCount int     `yaml:"partitionCount"`
}

// GenerationConfig defines how to contact the chat-completion API.
type GenerationConfig struct {
	Endpoint      string   `yaml:"endpoint"`
	Model         string   `yaml:"model"`
	APIKey        string   `yaml:"apiKey"`
	Temperature   float64  `yaml:"temperature"`
	MaxTokens     int      `yaml:"maxTokens"`
	OutputFormats []string `yaml:"outputFormats"`
}

// OutputConfig caps and locates generated material.
type OutputConfig struct {
	MaxTopics int    `yaml:"maxTopics"`
	Dir       string `yaml:"dir"`
}

// TelegramConfig wires the digest notification channel.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// AudienceConfig declares one target audience with its keyword set.
type AudienceConfig struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description"`
	CoreKeywords     []string `yaml:"coreKeywords"`
	ExtendedKeywords []string `yaml:"extendedKeywords"`
	Subreddits       []string `yaml:"subreddits"`
	Feeds            []string `yaml:"feeds"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Audiences) == 0 {
		cfg.Audiences = defaultConfig().Audiences
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Pipeline.Embedding.Remote.APIKey = v
	}
	if v := os.Getenv(embedProviderEnv); v != "" {
		c.Pipeline.Embedding.Provider = v
	}
	if v := os.Getenv(ollamaEndpointEnv); v != "" {
		c.Pipeline.Embedding.Local.Endpoint = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.Generation.APIKey = v
	}
	if v := os.Getenv(youtubeAPIKeyEnv); v != "" {
		c.Scraping.YouTube.APIKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Scraping.LookbackDays > 0 {
		base.Scraping.LookbackDays = override.Scraping.LookbackDays
	}
	if override.Scraping.MaxResultsPerSource > 0 {
		base.Scraping.MaxResultsPerSource = override.Scraping.MaxResultsPerSource
	}
	if override.Scraping.Reddit.Sort != "" || override.Scraping.Reddit.UserAgent != "" {
		enabled := base.Scraping.Reddit.Enabled
		base.Scraping.Reddit = override.Scraping.Reddit
		if override.Scraping.Reddit.Sort != "" && !override.Scraping.Reddit.Enabled {
			base.Scraping.Reddit.Enabled = enabled
		}
	}
	if override.Scraping.YouTube.APIKey != "" {
		base.Scraping.YouTube = override.Scraping.YouTube
	}
	if len(override.Scraping.RSS.Feeds) > 0 {
		base.Scraping.RSS = override.Scraping.RSS
	}
	if override.Scraping.Trends.Geo != "" {
		base.Scraping.Trends = override.Scraping.Trends
	}

	if override.Pipeline.KeywordFilter.MinKeywordHits > 0 {
		base.Pipeline.KeywordFilter = override.Pipeline.KeywordFilter
	}
	if override.Pipeline.Embedding.Provider != "" {
		base.Pipeline.Embedding.Provider = override.Pipeline.Embedding.Provider
	}
	if override.Pipeline.Embedding.BatchSize > 0 {
		base.Pipeline.Embedding.BatchSize = override.Pipeline.Embedding.BatchSize
	}
	if override.Pipeline.Embedding.Remote.APIKey != "" {
		base.Pipeline.Embedding.Remote.APIKey = override.Pipeline.Embedding.Remote.APIKey
	}
	if override.Pipeline.Embedding.Remote.Endpoint != "" {
		base.Pipeline.Embedding.Remote.Endpoint = override.Pipeline.Embedding.Remote.Endpoint
	}
	if override.Pipeline.Embedding.Remote.Model != "" {
		base.Pipeline.Embedding.Remote.Model = override.Pipeline.Embedding.Remote.Model
	}
	if override.Pipeline.Embedding.Local.Endpoint != "" {
		base.Pipeline.Embedding.Local.Endpoint = override.Pipeline.Embedding.Local.Endpoint
	}
	if override.Pipeline.Embedding.Local.Model != "" {
		base.Pipeline.Embedding.Local.Model = override.Pipeline.Embedding.Local.Model
	}
	if override.Pipeline.Dedup.SimilarityThreshold > 0 {
		base.Pipeline.Dedup = override.Pipeline.Dedup
	}
	if override.Pipeline.Clustering.Algorithm != "" {
		base.Pipeline.Clustering = override.Pipeline.Clustering
	}

	if override.Generation.Endpoint != "" {
		base.Generation.Endpoint = override.Generation.Endpoint
	}
	if override.Generation.Model != "" {
		base.Generation.Model = override.Generation.Model
	}
	if override.Generation.APIKey != "" {
		base.Generation.APIKey = override.Generation.APIKey
	}
	if override.Generation.Temperature > 0 {
		base.Generation.Temperature = override.Generation.Temperature
	}
	if override.Generation.MaxTokens > 0 {
		base.Generation.MaxTokens = override.Generation.MaxTokens
	}
	if len(override.Generation.OutputFormats) > 0 {
		base.Generation.OutputFormats = override.Generation.OutputFormats
	}

	if override.Output.MaxTopics > 0 {
		base.Output.MaxTopics = override.Output.MaxTopics
	}
	if override.Output.Dir != "" {
		base.Output.Dir = override.Output.Dir
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}

	if len(override.Audiences) > 0 {
		base.Audiences = override.Audiences
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{Path: "contentengine.db"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Scraping: ScrapingConfig{
			LookbackDays:        7,
			MaxResultsPerSource: 100,
			Reddit: RedditConfig{
				Enabled:   true,
				Sort:      "top",
				UserAgent: "ContentEngine/1.0",
				BaseURL:   "https://www.reddit.com",
			},
			YouTube: YouTubeConfig{
				Enabled:    true,
				RegionCode: "US",
				Order:      "relevance",
				BaseURL:    "https://www.googleapis.com/youtube/v3",
			},
			RSS: RSSConfig{
				Enabled: true,
				Feeds: []FeedConfig{
					{Name: "Jungle Scout", URL: "https://www.junglescout.com/feed/"},
					{Name: "Helium 10", URL: "https://www.helium10.com/blog/feed/"},
				},
			},
			Trends: TrendsConfig{
				Enabled: true,
				Geo:     "US",
				BaseURL: "https://trends.google.com",
			},
		},
		Pipeline: PipelineConfig{
			KeywordFilter: KeywordFilterConfig{MinKeywordHits: 1, CaseSensitive: false},
			Embedding: EmbeddingConfig{
				Provider:  "remote",
				BatchSize: 64,
				Remote: RemoteEmbedConfig{
					Endpoint: "https://generativelanguage.googleapis.com/v1beta",
					Model:    "text-embedding-004",
				},
				Local: LocalEmbedConfig{
					Endpoint: "http://localhost:11434",
					Model:    "all-minilm",
				},
			},
			Dedup: DedupConfig{SimilarityThreshold: 0.88},
			Clustering: ClusteringConfig{
				Algorithm:      "density",
				MinClusterSize: 3,
				MinSamples:     2,
				Epsilon:        0.7,
				PartitionCount: 10,
			},
		},
		Generation: GenerationConfig{
			Endpoint:      "https://api.openai.com/v1/chat/completions",
			Model:         "gpt-4o",
			Temperature:   0.8,
			MaxTokens:     4000,
			OutputFormats: []string{"article"},
		},
		Output:   OutputConfig{MaxTopics: 20, Dir: "output"},
		Telegram: TelegramConfig{},
		Audiences: []AudienceConfig{
			{
				ID:          "fba_beginner",
				Name:        "Amazon FBA Beginners",
				Description: "New sellers researching or just starting Amazon FBA",
				CoreKeywords: []string{
					"how to sell on amazon",
					"amazon fba for beginners",
					"start amazon fba",
					"amazon fba tutorial",
					"amazon seller account",
					"amazon fba step by step",
				},
				ExtendedKeywords: []string{
					"amazon seller central",
					"first product on amazon",
					"amazon fba cost",
					"amazon fba worth it",
					"side hustle amazon",
					"amazon fba mistakes",
					"product research for beginners",
				},
				Subreddits: []string{"AmazonSeller", "FulfillmentByAmazon", "AmazonFBA", "sidehustle"},
			},
			{
				ID:          "fba_operator",
				Name:        "Amazon FBA Operators",
				Description: "Mid-level sellers focused on optimization and growth",
				CoreKeywords: []string{
					"amazon fba tips",
					"amazon product research",
					"amazon listing optimization",
					"amazon keyword ranking",
					"amazon fba inventory management",
					"amazon buy box",
				},
				ExtendedKeywords: []string{
					"amazon backend keywords",
					"fba restock",
					"amazon product launch",
					"amazon review strategy",
					"amazon profit margin",
					"amazon return rate",
				},
				Subreddits: []string{"FulfillmentByAmazon", "AmazonSeller", "ecommerce"},
			},
		},
	}
}
