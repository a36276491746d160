package generator

import (
	"fmt"

	"ContentEngine/internal/domain"
)

// systemPrompt frames every generation call.
const systemPrompt = "You are a world-class content creator specializing in Amazon seller education and e-commerce content."

// labelPrompt asks for a short topic label for a cluster.
const labelPrompt = `You are a content strategist specializing in Amazon seller education.

Given the following cluster of related content items, generate a concise topic label (5-10 words) that captures the core theme.

Content titles in this cluster:
%s

Representative content body:
%s

Respond with ONLY the topic label, nothing else.`

const articleTemplate = `You are an expert content creator for Amazon sellers. Based on the trending topic below, create a compelling article outline and draft.

## Trending Topic
%s

## Target Audience
%s

## Requirements
Create a complete article with:

1. **Title**: A compelling, SEO-friendly headline
2. **Subtitle**: A supporting subheadline
3. **Hook**: Opening paragraph that grabs attention (2-3 sentences)
4. **Outline**: 5-7 main sections with key points for each
5. **Key Takeaways**: 3-5 bullet points summarizing the article
6. **CTA**: Call to action for the reader
7. **SEO Keywords**: 5-8 target keywords

Write in a professional yet conversational tone. Include actionable advice and real examples where possible.
Format the output in Markdown.`

const shortVideoTemplate = `You are a viral short-form video scriptwriter specializing in Amazon seller content.

## Trending Topic
%s

## Target Audience
%s

## Requirements
Create a 60-second short video script (for YouTube Shorts / TikTok / Instagram Reels):

1. **Title**: Catchy title with emoji hooks
2. **Hook** (0-3 seconds): Opening line that stops the scroll
3. **Problem** (3-10 seconds): State the pain point clearly
4. **Solution** (10-45 seconds): Deliver the main value in 3-5 punchy points
5. **CTA** (45-60 seconds): Strong call to action
6. **On-screen text suggestions**: Key text overlays for each section
7. **Hashtags**: 10-15 relevant hashtags

Write in a high-energy, direct tone. Every sentence should be short and impactful.
Format the output in Markdown.`

const longVideoTemplate = `You are an expert YouTube content strategist for the Amazon seller niche.

## Trending Topic
%s

## Target Audience
%s

## Requirements
Create a detailed 8-12 minute YouTube video script:

1. **Title**: SEO-optimized title
2. **Description**: YouTube description with timestamps and keywords
3. **Intro** (0-30s): Hook and what the viewer will learn
4. **Main sections**: 4-6 sections with talking points and examples
5. **Outro**: Recap and call to action
6. **Thumbnail concept**: Describe the ideal thumbnail

Format the output in Markdown.`

const socialPostTemplate = `You are a social media strategist for the Amazon seller community.

## Trending Topic
%s

## Target Audience
%s

## Requirements
Create 3 social posts (X/LinkedIn-ready) about this topic:

1. A hot-take post that invites discussion
2. A tactical tip post with a concrete example
3. A story-format post with a lesson learned

Each post under 280 words, with suggested hashtags.
Format the output in Markdown.`

const imagePromptTemplate = `You are a visual content director for e-commerce education media.

## Trending Topic
%s

## Target Audience
%s

## Requirements
Create 3 detailed image-generation prompts (for an AI image model) that would illustrate this topic:

For each prompt include: scene description, style, color palette, composition and any text overlay suggestion.
Format the output in Markdown.`

// templateFor resolves the prompt template for an idea format. Unknown
// formats get the article template.
func templateFor(format domain.IdeaFormat) string {
	switch format {
	case domain.FormatShortVideo:
		return shortVideoTemplate
	case domain.FormatLongVideo:
		return longVideoTemplate
	case domain.FormatSocialPost:
		return socialPostTemplate
	case domain.FormatImagePrompt:
		return imagePromptTemplate
	default:
		return articleTemplate
	}
}

func renderTemplate(format domain.IdeaFormat, topicSummary, audienceDescription string) string {
	return fmt.Sprintf(templateFor(format), topicSummary, audienceDescription)
}
