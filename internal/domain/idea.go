package domain

import (
	"fmt"
	"strings"
	"time"
)

// IdeaFormat enumerates supported content-idea output formats.
type IdeaFormat string

const (
	FormatArticle     IdeaFormat = "article"
	FormatShortVideo  IdeaFormat = "short_video"
	FormatLongVideo   IdeaFormat = "long_video"
	FormatSocialPost  IdeaFormat = "social_post"
	FormatImagePrompt IdeaFormat = "image_prompt"
)

// ContentIdea is one generated creative for a topic cluster and audience.
type ContentIdea struct {
	ClusterID   int
	TopicLabel  string
	AudienceID  string
	Format      IdeaFormat
	Content     string
	SourceURLs  []string
	GeneratedAt time.Time
}

// Markdown renders the idea as a standalone markdown document.
func (i ContentIdea) Markdown() string {
	lines := []string{
		fmt.Sprintf("# %s", i.TopicLabel),
		"",
		fmt.Sprintf("**Format**: %s", i.Format),
		fmt.Sprintf("**Audience**: %s", i.AudienceID),
		fmt.Sprintf("**Generated**: %s", i.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC")),
		"",
		"---",
		"",
		i.Content,
		"",
		"---",
		"",
		"## Source References",
	}
	urls := i.SourceURLs
	if len(urls) > 10 {
		urls = urls[:10]
	}
	for _, url := range urls {
		lines = append(lines, fmt.Sprintf("- %s", url))
	}
	return strings.Join(lines, "\n")
}
