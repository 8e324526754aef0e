package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/contentflow/internal/models"
	"github.com/spacesedan/contentflow/internal/sentiment"
)

const DEFAULT_SCRIPT_TITLE = "Trending News Roundup"

var ErrNoContent = errors.New("No content was fetched. Please check your API credentials.")

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const scriptPromptTemplate = `You are a professional video script writer. Based on the following trending news and social media content,
%s. The script should:

1. Have an engaging introduction with a hook
2. Cover 3-5 main trending topics
3. Include transitions between topics
4. Provide relevant context and background
5. End with a call to action or thought-provoking conclusion
6. Be around 500-700 words (3-4 minutes when spoken)
7. Include [VISUAL: description] notes for suggested visuals
8. Include [MUSIC: mood] notes for background music suggestions

Mark each topic with a [SEGMENT n: topic title] line.

CONTENT TO COVER:
%s

FORMAT YOUR RESPONSE AS:
TITLE: [Catchy video title]

[Full video script with visual and music cues]
`

// BuildPrompt renders the script writing prompt for the selected items.
func BuildPrompt(items []models.SourceItem, style string) string {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		block := fmt.Sprintf("HEADLINE: %s\nSOURCE: %s\nCONTENT: %s\nURL: %s",
			item.Title, item.Source, item.Content, item.URL)
		if item.Tone != "" {
			block += "\nTONE: " + item.Tone
		}
		blocks = append(blocks, block)
	}
	return fmt.Sprintf(scriptPromptTemplate, StyleInstruction(style), strings.Join(blocks, "\n\n"))
}

// CleanCompletion trims the model output and removes a surrounding markdown
// code fence, which some models add despite the requested format.
func CleanCompletion(response string) string {
	cleaned := strings.TrimSpace(response)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```")
	if lang, rest, ok := strings.Cut(cleaned, "\n"); ok && !strings.Contains(lang, " ") {
		cleaned = rest
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// ExtractTitle returns the text after the first "TITLE:" line.
func ExtractTitle(script string) string {
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(line, "TITLE:") {
			if title := strings.TrimSpace(strings.TrimPrefix(line, "TITLE:")); title != "" {
				return title
			}
		}
	}
	return DEFAULT_SCRIPT_TITLE
}

// Pipeline turns a generation request into a finished script.
type Pipeline struct {
	Fetcher *ContentFetcher
	LLM     Completer
}

func NewPipeline(reddit RedditSource, news NewsSource, llm Completer) *Pipeline {
	return &Pipeline{
		Fetcher: &ContentFetcher{Reddit: reddit, News: news},
		LLM:     llm,
	}
}

func (p *Pipeline) Generate(ctx context.Context, req models.GenerationRequest) (*models.ScriptResult, error) {
	start := time.Now()
	slog.Info("[ScriptGenerator] Fetching trending content...",
		slog.Any("subreddits", req.Subreddits),
		slog.Any("news_topics", req.NewsTopics))

	news, reddit, err := p.Fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	selected := SelectContent(news, reddit)
	if len(selected) == 0 {
		return nil, ErrNoContent
	}
	sentiment.AnnotateTone(selected)

	slog.Info("[ScriptGenerator] Generating video script", slog.Int("items", len(selected)))
	completion, err := p.LLM.Complete(ctx, BuildPrompt(selected, req.VideoStyle))
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}
	script := CleanCompletion(completion)

	result := &models.ScriptResult{
		Title:   ExtractTitle(script),
		Script:  script,
		Sources: selected,
	}
	slog.Info("[ScriptGenerator] Video script generated",
		slog.String("title", result.Title),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}
