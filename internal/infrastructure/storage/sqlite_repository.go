package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"ContentEngine/internal/domain"
	"ContentEngine/internal/ports"
)

// SQLiteRepository persists run reports and pipeline artifacts into a local
// SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.RunRepository = (*SQLiteRepository)(nil)

// Open creates (or opens) the database at path and applies the schema.
func Open(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return repo, nil
}

// Close releases the underlying connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		audience_id TEXT NOT NULL,
		status TEXT NOT NULL,
		raw_count INTEGER,
		filtered_count INTEGER,
		deduped_count INTEGER,
		cluster_count INTEGER,
		idea_count INTEGER,
		error_message TEXT,
		started_at DATETIME,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS contents (
		fingerprint TEXT,
		run_id TEXT REFERENCES runs(run_id),
		source TEXT,
		kind TEXT,
		title TEXT,
		body TEXT,
		url TEXT,
		author TEXT,
		published_at DATETIME,
		views INTEGER,
		likes INTEGER,
		comments INTEGER,
		shares INTEGER,
		engagement_score REAL,
		keyword_hits INTEGER,
		merged_urls TEXT,
		is_duplicate BOOLEAN,
		PRIMARY KEY (run_id, fingerprint)
	);

	CREATE TABLE IF NOT EXISTS topic_clusters (
		run_id TEXT REFERENCES runs(run_id),
		cluster_index INTEGER,
		label TEXT,
		size INTEGER,
		total_engagement REAL,
		avg_engagement REAL,
		sources TEXT,
		representative_title TEXT,
		representative_body TEXT,
		PRIMARY KEY (run_id, cluster_index)
	);

	CREATE TABLE IF NOT EXISTS content_ideas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT REFERENCES runs(run_id),
		cluster_index INTEGER,
		audience_id TEXT,
		format_type TEXT,
		topic_label TEXT,
		generated_content TEXT,
		source_urls TEXT,
		generated_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_contents_run ON contents(run_id);
	CREATE INDEX IF NOT EXISTS idx_clusters_run ON topic_clusters(run_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveRun upserts the run report snapshot.
func (r *SQLiteRepository) SaveRun(ctx context.Context, report domain.RunReport) error {
	query, args, err := sq.Insert("runs").
		Columns("run_id", "audience_id", "status", "raw_count", "filtered_count",
			"deduped_count", "cluster_count", "idea_count", "error_message",
			"started_at", "completed_at").
		Values(report.RunID, report.AudienceID, string(report.Status), report.RawCount,
			report.FilteredCount, report.DedupedCount, report.ClusterCount,
			report.IdeaCount, report.Error, report.StartedAt, nullableTime(report.CompletedAt)).
		Suffix(`ON CONFLICT (run_id) DO UPDATE SET
			status = excluded.status,
			raw_count = excluded.raw_count,
			filtered_count = excluded.filtered_count,
			deduped_count = excluded.deduped_count,
			cluster_count = excluded.cluster_count,
			idea_count = excluded.idea_count,
			error_message = excluded.error_message,
			completed_at = excluded.completed_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}
	return nil
}

// SaveItems stores the pipeline's item snapshot for one run.
func (r *SQLiteRepository) SaveItems(ctx context.Context, runID string, items []domain.ContentItem) error {
	if len(items) == 0 {
		return nil
	}

	builder := sq.Insert("contents").
		Columns("fingerprint", "run_id", "source", "kind", "title", "body", "url",
			"author", "published_at", "views", "likes", "comments", "shares",
			"engagement_score", "keyword_hits", "merged_urls", "is_duplicate").
		Suffix("ON CONFLICT (run_id, fingerprint) DO NOTHING")

	for _, item := range items {
		builder = builder.Values(item.Fingerprint(), runID, item.Source, string(item.Kind),
			item.Title, item.Body, item.URL, item.Author, nullableTime(item.PublishedAt),
			item.Views, item.Likes, item.Comments, item.Shares, item.EngagementScore(),
			item.KeywordHits, strings.Join(item.MergedURLs, "\n"), item.IsDuplicate)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

// SaveClusters stores cluster summaries for one run.
func (r *SQLiteRepository) SaveClusters(ctx context.Context, runID string, clusters []domain.TopicCluster) error {
	if len(clusters) == 0 {
		return nil
	}

	builder := sq.Insert("topic_clusters").
		Columns("run_id", "cluster_index", "label", "size", "total_engagement",
			"avg_engagement", "sources", "representative_title", "representative_body").
		Suffix("ON CONFLICT (run_id, cluster_index) DO NOTHING")

	for _, cluster := range clusters {
		var repTitle, repBody string
		if cluster.Representative != nil {
			repTitle = cluster.Representative.Title
			repBody = domain.Excerpt(cluster.Representative.Body, 1000)
		}
		builder = builder.Values(runID, cluster.ID, cluster.Label, cluster.Size(),
			cluster.TotalEngagement(), cluster.AvgEngagement(),
			strings.Join(cluster.Sources(), ","), repTitle, repBody)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build clusters insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert clusters: %w", err)
	}
	return nil
}

// SaveIdeas stores generated content ideas for one run.
func (r *SQLiteRepository) SaveIdeas(ctx context.Context, runID string, ideas []domain.ContentIdea) error {
	if len(ideas) == 0 {
		return nil
	}

	builder := sq.Insert("content_ideas").
		Columns("run_id", "cluster_index", "audience_id", "format_type",
			"topic_label", "generated_content", "source_urls", "generated_at")

	for _, idea := range ideas {
		builder = builder.Values(runID, idea.ClusterID, idea.AudienceID,
			string(idea.Format), idea.TopicLabel, idea.Content,
			strings.Join(idea.SourceURLs, "\n"), idea.GeneratedAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build ideas insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert ideas: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent run reports, newest first.
func (r *SQLiteRepository) RecentRuns(ctx context.Context, limit int) ([]domain.RunReport, error) {
	query, args, err := sq.Select("run_id", "audience_id", "status", "raw_count",
		"filtered_count", "deduped_count", "cluster_count", "idea_count",
		"error_message", "started_at", "completed_at").
		From("runs").
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build runs select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var reports []domain.RunReport
	for rows.Next() {
		var report domain.RunReport
		var status string
		var completed sql.NullTime
		if err := rows.Scan(&report.RunID, &report.AudienceID, &status,
			&report.RawCount, &report.FilteredCount, &report.DedupedCount,
			&report.ClusterCount, &report.IdeaCount, &report.Error,
			&report.StartedAt, &completed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		report.Status = domain.RunStatus(status)
		if completed.Valid {
			report.CompletedAt = completed.Time
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return reports, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
