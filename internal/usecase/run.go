package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ContentEngine/internal/config"
	"ContentEngine/internal/domain"
	"ContentEngine/internal/generator"
	"ContentEngine/internal/pipeline"
	"ContentEngine/internal/ports"
)

// RunnerDeps wires all driven adapters into the processing pipeline.
// SourceFor, when set, builds an audience-scoped source (subreddits and
// feeds differ per audience) and takes precedence over Source.
type RunnerDeps struct {
	Source     ports.ContentSource
	SourceFor  func(domain.Audience) ports.ContentSource
	Embedder   ports.EmbeddingProvider
	Repository ports.RunRepository
	Generator  *generator.ContentGenerator
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Runner executes the content pipeline for one audience: scrape, filter,
// embed, dedup, cluster, generate, persist. The call is synchronous; callers
// wanting background execution submit it to a JobQueue.
type Runner struct {
	source     ports.ContentSource
	sourceFor  func(domain.Audience) ports.ContentSource
	embedder   ports.EmbeddingProvider
	repository ports.RunRepository
	generator  *generator.ContentGenerator
	notifier   ports.Notifier
	logger     *slog.Logger

	filterCfg  config.KeywordFilterConfig
	dedupCfg   config.DedupConfig
	clusterCfg config.ClusteringConfig
	output     config.OutputConfig
}

// NewRunner constructs the orchestration component.
func NewRunner(deps RunnerDeps, pipelineCfg config.PipelineConfig, output config.OutputConfig) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		source:     deps.Source,
		sourceFor:  deps.SourceFor,
		embedder:   deps.Embedder,
		repository: deps.Repository,
		generator:  deps.Generator,
		notifier:   deps.Notifier,
		logger:     logger,
		filterCfg:  pipelineCfg.KeywordFilter,
		dedupCfg:   pipelineCfg.Dedup,
		clusterCfg: pipelineCfg.Clustering,
		output:     output,
	}
}

// ProcessAudience runs the full pipeline for one audience. The returned
// report always carries the counters of every stage that completed; a failed
// run keeps its partial progress and the error message verbatim.
func (r *Runner) ProcessAudience(ctx context.Context, audience domain.Audience) (domain.RunReport, error) {
	report := domain.RunReport{
		RunID:      uuid.NewString(),
		AudienceID: audience.ID,
		Status:     domain.RunRunning,
		StartedAt:  time.Now().UTC(),
	}
	r.saveReport(ctx, &report)

	logger := r.logger.With("run_id", report.RunID, "audience", audience.ID)
	logger.Info("run started", "keywords", len(audience.AllKeywords()))

	fail := func(stage string, err error) (domain.RunReport, error) {
		wrapped := fmt.Errorf("%s: %w", stage, err)
		report.Status = domain.RunFailed
		report.Error = wrapped.Error()
		report.CompletedAt = time.Now().UTC()
		r.saveReport(ctx, &report)
		logger.Error("run failed", "stage", stage, "error", err)
		return report, wrapped
	}
	complete := func(note string) (domain.RunReport, error) {
		report.Status = domain.RunCompleted
		report.Error = note
		report.CompletedAt = time.Now().UTC()
		r.saveReport(ctx, &report)
		logger.Info("run completed",
			"raw", report.RawCount,
			"filtered", report.FilteredCount,
			"deduped", report.DedupedCount,
			"clusters", report.ClusterCount,
			"ideas", report.IdeaCount)
		return report, nil
	}

	// Scrape.
	src := r.source
	if r.sourceFor != nil {
		src = r.sourceFor(audience)
	}
	if src == nil {
		return fail("scrape", errors.New("no content source configured"))
	}
	items, err := src.Fetch(ctx, audience.AllKeywords())
	if err != nil {
		return fail("scrape", err)
	}
	report.RawCount = len(items)
	r.saveReport(ctx, &report)
	if len(items) == 0 {
		return complete("no content found from any source")
	}

	// Relevance filter.
	filter := pipeline.NewKeywordFilter(audience.AllKeywords(),
		r.filterCfg.MinKeywordHits, r.filterCfg.CaseSensitive,
		logger.With("component", "filter"))
	filtered := filter.Filter(items)
	report.FilteredCount = len(filtered)
	r.saveReport(ctx, &report)
	if len(filtered) == 0 {
		return complete("no content passed keyword filter")
	}

	// Embed.
	texts := make([]string, len(filtered))
	for i, item := range filtered {
		texts[i] = item.FullText()
	}
	vectors, err := r.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fail("embed", err)
	}
	if err := pipeline.CheckDimensions(vectors, len(filtered)); err != nil {
		return fail("embed", err)
	}

	// Semantic dedup. Eliminated items keep their IsDuplicate flag inside
	// the filtered slice so persistence sees the full partition.
	deduper := pipeline.NewDeduplicator(r.dedupCfg.SimilarityThreshold,
		logger.With("component", "dedup"))
	deduped, dedupedVectors, err := deduper.Deduplicate(filtered, vectors)
	if err != nil {
		return fail("dedup", err)
	}
	report.DedupedCount = len(deduped)
	r.saveReport(ctx, &report)
	r.saveItems(ctx, report.RunID, filtered)

	// Topic clustering.
	clusterer := pipeline.NewTopicClusterer(pipeline.ClustererConfig{
		Algorithm:      r.clusterCfg.Algorithm,
		MinClusterSize: r.clusterCfg.MinClusterSize,
		MinSamples:     r.clusterCfg.MinSamples,
		Epsilon:        r.clusterCfg.Epsilon,
		PartitionCount: r.clusterCfg.PartitionCount,
	}, logger.With("component", "clusterer"))
	clusters, err := clusterer.Cluster(deduped, dedupedVectors)
	if err != nil {
		return fail("cluster", err)
	}
	report.ClusterCount = len(clusters)
	r.saveReport(ctx, &report)

	// Idea generation, only when a chat client is wired.
	var ideas []domain.ContentIdea
	if r.generator != nil {
		clusters, ideas, err = r.generator.BatchGenerate(ctx, clusters, audience, r.output.MaxTopics)
		report.IdeaCount = len(ideas)
		if err != nil {
			r.saveClusters(ctx, report.RunID, clusters)
			r.saveIdeas(ctx, report.RunID, ideas)
			return fail("generate", err)
		}
		if r.output.Dir != "" {
			if err := r.generator.Export(ideas, r.output.Dir); err != nil {
				return fail("export", err)
			}
		}
	}

	r.saveClusters(ctx, report.RunID, clusters)
	r.saveIdeas(ctx, report.RunID, ideas)
	r.notify(ctx, report, clusters)

	return complete("")
}

func (r *Runner) saveReport(ctx context.Context, report *domain.RunReport) {
	if r.repository == nil {
		return
	}
	if err := r.repository.SaveRun(ctx, *report); err != nil {
		r.logger.Error("persist run report", "run_id", report.RunID, "error", err)
	}
}

func (r *Runner) saveItems(ctx context.Context, runID string, items []domain.ContentItem) {
	if r.repository == nil {
		return
	}
	if err := r.repository.SaveItems(ctx, runID, items); err != nil {
		r.logger.Error("persist items", "run_id", runID, "error", err)
	}
}

func (r *Runner) saveClusters(ctx context.Context, runID string, clusters []domain.TopicCluster) {
	if r.repository == nil || len(clusters) == 0 {
		return
	}
	if err := r.repository.SaveClusters(ctx, runID, clusters); err != nil {
		r.logger.Error("persist clusters", "run_id", runID, "error", err)
	}
}

func (r *Runner) saveIdeas(ctx context.Context, runID string, ideas []domain.ContentIdea) {
	if r.repository == nil || len(ideas) == 0 {
		return
	}
	if err := r.repository.SaveIdeas(ctx, runID, ideas); err != nil {
		r.logger.Error("persist ideas", "run_id", runID, "error", err)
	}
}

// notify publishes a short digest; failures are logged, never fatal.
func (r *Runner) notify(ctx context.Context, report domain.RunReport, clusters []domain.TopicCluster) {
	if r.notifier == nil || len(clusters) == 0 {
		return
	}
	digest := buildDigest(report, clusters)
	if err := r.notifier.PublishDigest(ctx, digest); err != nil {
		r.logger.Error("publish digest", "run_id", report.RunID, "error", err)
	}
}

func buildDigest(report domain.RunReport, clusters []domain.TopicCluster) string {
	digest := fmt.Sprintf("*Content run %s*\n%d raw → %d filtered → %d deduped → %d clusters\n",
		report.AudienceID, report.RawCount, report.FilteredCount,
		report.DedupedCount, report.ClusterCount)
	limit := 5
	if len(clusters) < limit {
		limit = len(clusters)
	}
	for _, cluster := range clusters[:limit] {
		label := cluster.Label
		if label == "" && len(cluster.TopTitles()) > 0 {
			label = cluster.TopTitles()[0]
		}
		digest += fmt.Sprintf("- %s (%d items, %.0f engagement)\n",
			label, cluster.Size(), cluster.TotalEngagement())
	}
	return digest
}
