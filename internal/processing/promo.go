package processing

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/spacesedan/contentflow/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	CAPTION_MAX_TOKENS  = 100
	HASHTAGS_MAX_TOKENS = 50

	captionSystemPrompt  = "You are an AI that creates engaging and creative captions for social media reels."
	hashtagsSystemPrompt = "You are an AI that generates trending hashtags based on video content."
	noImageDescriptions  = "None provided."
)

var hashtagPattern = regexp.MustCompile(`#\w+`)

// ChatCompleter sends a system prompt plus several user messages.
type ChatCompleter interface {
	Chat(ctx context.Context, system string, user []string, maxTokens int) (string, error)
}

// PromoWriter drafts the caption and hashtags that go out with a video.
type PromoWriter struct {
	LLM ChatCompleter
}

func (p *PromoWriter) Caption(ctx context.Context, transcript, imageNotes string) (string, error) {
	out, err := p.LLM.Chat(ctx, captionSystemPrompt, []string{
		"Video Transcript: " + transcript,
		"Image Descriptions: " + orNone(imageNotes),
		"Based on this, generate a captivating caption for a social media reel.",
	}, CAPTION_MAX_TOKENS)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (p *PromoWriter) Hashtags(ctx context.Context, transcript, imageNotes string) ([]string, error) {
	out, err := p.LLM.Chat(ctx, hashtagsSystemPrompt, []string{
		"Here is the video transcript: " + transcript,
		"Here are image descriptions: " + orNone(imageNotes),
		"Based on this, suggest the most viral hashtags.",
	}, HASHTAGS_MAX_TOKENS)
	if err != nil {
		return nil, err
	}
	return ParseHashtags(out), nil
}

// Write asks for the caption and hashtags concurrently.
func (p *PromoWriter) Write(ctx context.Context, transcript, imageNotes string) (models.Promo, error) {
	start := time.Now()
	var promo models.Promo

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		caption, err := p.Caption(gctx, transcript, imageNotes)
		promo.Caption = caption
		return err
	})
	g.Go(func() error {
		tags, err := p.Hashtags(gctx, transcript, imageNotes)
		promo.Hashtags = tags
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Warn("[PromoWriter] Promo generation failed", slog.String("error", err.Error()))
		return models.Promo{}, err
	}

	slog.Info("[PromoWriter] Generated promo",
		slog.Int("hashtags", len(promo.Hashtags)),
		slog.Duration("duration", time.Since(start)))
	return promo, nil
}

// ParseHashtags pulls #tags out of free text, first occurrence wins.
// Comparison ignores case.
func ParseHashtags(text string) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	for _, tag := range hashtagPattern.FindAllString(text, -1) {
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return noImageDescriptions
	}
	return s
}
