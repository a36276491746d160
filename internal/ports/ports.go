package ports

import (
	"context"
	"time"

	"ContentEngine/internal/domain"
)

// ContentSource pulls raw items from one upstream provider given the active
// keyword set. Each implementation owns its own credentials and rate limits.
type ContentSource interface {
	Name() string
	Fetch(ctx context.Context, keywords []string) ([]domain.ContentItem, error)
}

// EmbeddingProvider converts ordered texts into ordered fixed-dimension
// vectors. An empty input returns an empty output without a backend call.
type EmbeddingProvider interface {
	Name() string
	Dimension() int
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatClient sends one prompt pair to an LLM and returns the completion text.
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// RunRepository persists run reports and their pipeline artifacts.
type RunRepository interface {
	SaveRun(ctx context.Context, report domain.RunReport) error
	SaveItems(ctx context.Context, runID string, items []domain.ContentItem) error
	SaveClusters(ctx context.Context, runID string, clusters []domain.TopicCluster) error
	SaveIdeas(ctx context.Context, runID string, ideas []domain.ContentIdea) error
	RecentRuns(ctx context.Context, limit int) ([]domain.RunReport, error)
}

// Notifier publishes a run digest to an outbound channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
