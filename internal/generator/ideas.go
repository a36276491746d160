// Package generator turns topic clusters and audience definitions into
// concrete content ideas through an LLM chat client.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ContentEngine/internal/domain"
	"ContentEngine/internal/ports"
)

// ContentGenerator produces topic labels and per-format content ideas. A nil
// chat client degrades every call to its deterministic fallback instead of
// failing.
type ContentGenerator struct {
	chat    ports.ChatClient
	formats []domain.IdeaFormat
	logger  *slog.Logger
}

// NewContentGenerator wires the chat client and output formats.
func NewContentGenerator(chat ports.ChatClient, formats []string, logger *slog.Logger) *ContentGenerator {
	g := &ContentGenerator{chat: chat, logger: logger}
	for _, f := range formats {
		g.formats = append(g.formats, domain.IdeaFormat(f))
	}
	if len(g.formats) == 0 {
		g.formats = []domain.IdeaFormat{domain.FormatArticle}
	}
	return g
}

// TopicLabel generates a short label for the cluster. Without a chat client,
// or on error, the highest-engagement title serves as the label.
func (g *ContentGenerator) TopicLabel(ctx context.Context, cluster domain.TopicCluster) string {
	fallback := func() string {
		titles := cluster.TopTitles()
		if len(titles) > 0 {
			return titles[0]
		}
		return fmt.Sprintf("Topic #%d", cluster.ID)
	}

	if g.chat == nil {
		return fallback()
	}

	var titleLines []string
	for _, title := range cluster.TopTitles() {
		titleLines = append(titleLines, "- "+title)
	}
	var body string
	if cluster.Representative != nil {
		body = domain.Excerpt(cluster.Representative.Body, 500)
	}

	prompt := fmt.Sprintf(labelPrompt, strings.Join(titleLines, "\n"), body)
	label, err := g.chat.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		g.logger.Error("topic label generation failed", "cluster", cluster.ID, "error", err)
		return fallback()
	}
	return strings.Trim(strings.TrimSpace(label), `"'`)
}

// Generate produces one idea for a cluster, audience and format.
func (g *ContentGenerator) Generate(ctx context.Context, cluster domain.TopicCluster, audience domain.Audience, format domain.IdeaFormat) (domain.ContentIdea, error) {
	label := cluster.Label
	if label == "" {
		label = fmt.Sprintf("Topic #%d", cluster.ID)
	}

	idea := domain.ContentIdea{
		ClusterID:   cluster.ID,
		TopicLabel:  label,
		AudienceID:  audience.ID,
		Format:      format,
		GeneratedAt: time.Now().UTC(),
	}
	urls := make([]string, 0, 10)
	for _, item := range cluster.Items {
		if len(urls) == 10 {
			break
		}
		urls = append(urls, item.URL)
	}
	idea.SourceURLs = urls

	if g.chat == nil {
		return idea, fmt.Errorf("chat client not configured")
	}

	g.logger.Info("generating idea", "cluster", cluster.ID, "audience", audience.ID, "format", format)

	prompt := renderTemplate(format, cluster.Summary(),
		fmt.Sprintf("%s: %s", audience.Name, audience.Description))
	content, err := g.chat.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return idea, fmt.Errorf("generate %s for cluster %d: %w", format, cluster.ID, err)
	}

	idea.Content = content
	return idea, nil
}

// BatchGenerate labels each of the top clusters and produces ideas in every
// configured format. Generation errors abort the batch; labels fall back
// silently.
func (g *ContentGenerator) BatchGenerate(ctx context.Context, clusters []domain.TopicCluster, audience domain.Audience, maxTopics int) ([]domain.TopicCluster, []domain.ContentIdea, error) {
	if maxTopics > 0 && len(clusters) > maxTopics {
		clusters = clusters[:maxTopics]
	}

	var ideas []domain.ContentIdea
	for i := range clusters {
		if clusters[i].Label == "" {
			clusters[i].Label = g.TopicLabel(ctx, clusters[i])
		}
		for _, format := range g.formats {
			idea, err := g.Generate(ctx, clusters[i], audience, format)
			if err != nil {
				return clusters, ideas, err
			}
			ideas = append(ideas, idea)
		}
	}

	g.logger.Info("idea generation done", "clusters", len(clusters), "ideas", len(ideas))
	return clusters, ideas, nil
}

// Export writes each idea as a markdown file under dir.
func (g *ContentGenerator) Export(ideas []domain.ContentIdea, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102_150405")
	for i, idea := range ideas {
		name := fmt.Sprintf("%s_%s_%s_topic%d_%d.md",
			stamp, idea.AudienceID, idea.Format, idea.ClusterID, i+1)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(idea.Markdown()), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	g.logger.Info("exported ideas", "count", len(ideas), "dir", dir)
	return nil
}
