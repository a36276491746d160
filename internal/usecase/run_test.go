package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"ContentEngine/internal/config"
	"ContentEngine/internal/domain"
	"ContentEngine/internal/ports"
)

type fakeSource struct {
	items []domain.ContentItem
	err   error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(_ context.Context, _ []string) ([]domain.ContentItem, error) {
	return f.items, f.err
}

type fakeEmbedder struct {
	vectors [][]float32
	err     error
}

func (f *fakeEmbedder) Name() string   { return "fake" }
func (f *fakeEmbedder) Dimension() int { return 2 }

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.vectors != nil {
		return f.vectors, nil
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, float32(i)}
	}
	return vectors, nil
}

type fakeRepository struct {
	runs     []domain.RunReport
	items    []domain.ContentItem
	clusters []domain.TopicCluster
	ideas    []domain.ContentIdea
}

func (f *fakeRepository) SaveRun(_ context.Context, report domain.RunReport) error {
	f.runs = append(f.runs, report)
	return nil
}

func (f *fakeRepository) SaveItems(_ context.Context, _ string, items []domain.ContentItem) error {
	f.items = append(f.items, items...)
	return nil
}

func (f *fakeRepository) SaveClusters(_ context.Context, _ string, clusters []domain.TopicCluster) error {
	f.clusters = append(f.clusters, clusters...)
	return nil
}

func (f *fakeRepository) SaveIdeas(_ context.Context, _ string, ideas []domain.ContentIdea) error {
	f.ideas = append(f.ideas, ideas...)
	return nil
}

func (f *fakeRepository) RecentRuns(_ context.Context, _ int) ([]domain.RunReport, error) {
	return f.runs, nil
}

var _ ports.ContentSource = (*fakeSource)(nil)
var _ ports.EmbeddingProvider = (*fakeEmbedder)(nil)
var _ ports.RunRepository = (*fakeRepository)(nil)

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		KeywordFilter: config.KeywordFilterConfig{MinKeywordHits: 1},
		Dedup:         config.DedupConfig{SimilarityThreshold: 0.88},
		Clustering: config.ClusteringConfig{
			Algorithm:      "partition",
			PartitionCount: 2,
		},
	}
}

func testAudience() domain.Audience {
	return domain.Audience{ID: "sellers", CoreKeywords: []string{"fba"}}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessAudienceHappyPath(t *testing.T) {
	t.Parallel()

	source := &fakeSource{items: []domain.ContentItem{
		{URL: "a", Title: "FBA shipping tips", Likes: 5},
		{URL: "b", Title: "FBA prep checklist", Likes: 3},
		{URL: "c", Title: "gardening weekly", Likes: 100},
	}}
	embedder := &fakeEmbedder{vectors: [][]float32{{1, 0}, {-1, 0}}}
	repo := &fakeRepository{}

	runner := NewRunner(RunnerDeps{
		Source:     source,
		Embedder:   embedder,
		Repository: repo,
		Logger:     quietLogger(),
	}, testPipelineConfig(), config.OutputConfig{MaxTopics: 10})

	report, err := runner.ProcessAudience(context.Background(), testAudience())
	if err != nil {
		t.Fatalf("ProcessAudience error: %v", err)
	}

	if report.Status != domain.RunCompleted {
		t.Fatalf("expected completed run, got %s (%s)", report.Status, report.Error)
	}
	if report.RunID == "" {
		t.Fatalf("missing run id")
	}
	if report.RawCount != 3 || report.FilteredCount != 2 || report.DedupedCount != 2 {
		t.Fatalf("unexpected counters: raw=%d filtered=%d deduped=%d",
			report.RawCount, report.FilteredCount, report.DedupedCount)
	}
	if report.ClusterCount != 2 {
		t.Fatalf("expected 2 clusters, got %d", report.ClusterCount)
	}
	if report.CompletedAt.IsZero() || report.CompletedAt.Before(report.StartedAt) {
		t.Fatalf("bad timestamps: %v / %v", report.StartedAt, report.CompletedAt)
	}

	if len(repo.items) != 2 {
		t.Fatalf("expected filtered items persisted, got %d", len(repo.items))
	}
	if len(repo.clusters) != 2 {
		t.Fatalf("expected clusters persisted, got %d", len(repo.clusters))
	}

	final := repo.runs[len(repo.runs)-1]
	if final.Status != domain.RunCompleted {
		t.Fatalf("final persisted report not completed: %s", final.Status)
	}
}

func TestProcessAudienceMarksDuplicates(t *testing.T) {
	t.Parallel()

	source := &fakeSource{items: []domain.ContentItem{
		{URL: "a", Title: "FBA fees explained", Likes: 1},
		{URL: "b", Title: "FBA fees deep dive", Likes: 10},
	}}
	// Identical vectors: the lower-engagement item is eliminated.
	embedder := &fakeEmbedder{vectors: [][]float32{{1, 0}, {1, 0}}}
	repo := &fakeRepository{}

	runner := NewRunner(RunnerDeps{
		Source:     source,
		Embedder:   embedder,
		Repository: repo,
		Logger:     quietLogger(),
	}, testPipelineConfig(), config.OutputConfig{})

	report, err := runner.ProcessAudience(context.Background(), testAudience())
	if err != nil {
		t.Fatalf("ProcessAudience error: %v", err)
	}

	if report.DedupedCount != 1 {
		t.Fatalf("expected 1 deduped item, got %d", report.DedupedCount)
	}
	if report.ClusterCount != 1 {
		t.Fatalf("expected 1 cluster, got %d", report.ClusterCount)
	}

	// Both items are persisted, the weaker one flagged.
	if len(repo.items) != 2 {
		t.Fatalf("expected both items persisted, got %d", len(repo.items))
	}
	var flagged int
	for _, item := range repo.items {
		if item.IsDuplicate {
			flagged++
			if item.URL != "a" {
				t.Fatalf("wrong item flagged: %s", item.URL)
			}
		}
	}
	if flagged != 1 {
		t.Fatalf("expected exactly 1 duplicate flag, got %d", flagged)
	}
}

func TestProcessAudienceEmbedFailureKeepsProgress(t *testing.T) {
	t.Parallel()

	source := &fakeSource{items: []domain.ContentItem{
		{URL: "a", Title: "FBA storage fees"},
	}}
	embedder := &fakeEmbedder{err: errors.New("backend unavailable")}
	repo := &fakeRepository{}

	runner := NewRunner(RunnerDeps{
		Source:     source,
		Embedder:   embedder,
		Repository: repo,
		Logger:     quietLogger(),
	}, testPipelineConfig(), config.OutputConfig{})

	report, err := runner.ProcessAudience(context.Background(), testAudience())
	if err == nil {
		t.Fatalf("expected error")
	}

	if report.Status != domain.RunFailed {
		t.Fatalf("expected failed run, got %s", report.Status)
	}
	if !strings.Contains(report.Error, "embed") || !strings.Contains(report.Error, "backend unavailable") {
		t.Fatalf("error message lost detail: %s", report.Error)
	}
	if report.RawCount != 1 || report.FilteredCount != 1 {
		t.Fatalf("pre-failure counters lost: raw=%d filtered=%d", report.RawCount, report.FilteredCount)
	}
	if report.DedupedCount != 0 || report.ClusterCount != 0 {
		t.Fatalf("post-failure counters set: deduped=%d clusters=%d",
			report.DedupedCount, report.ClusterCount)
	}
}

func TestProcessAudienceNoItemsCompletes(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerDeps{
		Source:   &fakeSource{},
		Embedder: &fakeEmbedder{},
		Logger:   quietLogger(),
	}, testPipelineConfig(), config.OutputConfig{})

	report, err := runner.ProcessAudience(context.Background(), testAudience())
	if err != nil {
		t.Fatalf("ProcessAudience error: %v", err)
	}
	if report.Status != domain.RunCompleted {
		t.Fatalf("empty scrape must complete, got %s", report.Status)
	}
	if report.RawCount != 0 {
		t.Fatalf("unexpected raw count: %d", report.RawCount)
	}
}

func TestProcessAudienceScrapeFailure(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerDeps{
		Source:   &fakeSource{err: errors.New("all sources down")},
		Embedder: &fakeEmbedder{},
		Logger:   quietLogger(),
	}, testPipelineConfig(), config.OutputConfig{})

	report, err := runner.ProcessAudience(context.Background(), testAudience())
	if err == nil {
		t.Fatalf("expected error")
	}
	if report.Status != domain.RunFailed {
		t.Fatalf("expected failed run, got %s", report.Status)
	}
	if !strings.Contains(report.Error, "all sources down") {
		t.Fatalf("cause not preserved: %s", report.Error)
	}
}

func TestProcessAudienceVectorCountMismatch(t *testing.T) {
	t.Parallel()

	source := &fakeSource{items: []domain.ContentItem{
		{URL: "a", Title: "FBA one"},
		{URL: "b", Title: "FBA two"},
	}}
	embedder := &fakeEmbedder{vectors: [][]float32{{1, 0}}}

	runner := NewRunner(RunnerDeps{
		Source:   source,
		Embedder: embedder,
		Logger:   quietLogger(),
	}, testPipelineConfig(), config.OutputConfig{})

	report, err := runner.ProcessAudience(context.Background(), testAudience())
	if err == nil {
		t.Fatalf("expected dimension error")
	}
	if report.Status != domain.RunFailed {
		t.Fatalf("expected failed run, got %s", report.Status)
	}
}

func TestJobQueueRunsSubmittedJobs(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerDeps{
		Source:   &fakeSource{items: []domain.ContentItem{{URL: "a", Title: "FBA news", Likes: 1}}},
		Embedder: &fakeEmbedder{},
		Logger:   quietLogger(),
	}, testPipelineConfig(), config.OutputConfig{})

	queue := NewJobQueue(runner, 1, 4, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)

	jobID, err := queue.Submit(testAudience())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		job, ok := queue.Job(jobID)
		if !ok {
			t.Fatalf("job disappeared")
		}
		if job.Status == JobCompleted {
			if job.Report.RawCount != 1 {
				t.Fatalf("report not attached: %+v", job.Report)
			}
			break
		}
		if job.Status == JobFailed {
			t.Fatalf("job failed: %s", job.Report.Error)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish, status %s", job.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	queue.Stop()

	if _, err := queue.Submit(testAudience()); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed after Stop, got %v", err)
	}
}

func TestJobQueueUnknownJob(t *testing.T) {
	t.Parallel()

	queue := NewJobQueue(nil, 1, 1, quietLogger())
	if _, ok := queue.Job("missing"); ok {
		t.Fatalf("unknown job reported as present")
	}
}

func TestJobQueueSubmitDuringStop(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerDeps{
		Source:   &fakeSource{},
		Embedder: &fakeEmbedder{},
		Logger:   quietLogger(),
	}, testPipelineConfig(), config.OutputConfig{})

	// Concurrent submitters racing Stop must never panic on a closed
	// channel; late submits get ErrQueueClosed.
	for i := 0; i < 200; i++ {
		queue := NewJobQueue(runner, 2, 8, quietLogger())
		ctx, cancel := context.WithCancel(context.Background())
		queue.Start(ctx)

		var wg sync.WaitGroup
		for s := 0; s < 4; s++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < 10; k++ {
					if _, err := queue.Submit(testAudience()); err != nil {
						if !errors.Is(err, ErrQueueClosed) && !errors.Is(err, ErrQueueFull) {
							t.Errorf("unexpected submit error: %v", err)
						}
						return
					}
				}
			}()
		}
		queue.Stop()
		wg.Wait()
		cancel()

		if _, err := queue.Submit(testAudience()); !errors.Is(err, ErrQueueClosed) {
			t.Fatalf("expected ErrQueueClosed after Stop, got %v", err)
		}
	}
}
