package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/contentflow/internal/models"
)

const (
	TONE_POSITIVE = "positive"
	TONE_NEGATIVE = "negative"
	TONE_NEUTRAL  = "neutral"

	toneThreshold = 0.20
)

var (
	analyzer    = govader.NewSentimentIntensityAnalyzer()
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting tags.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(RemoveLinks(input)), blackfriday.WithNoExtensions())
	plain := tagPattern.ReplaceAllString(string(output), " ")
	return strings.Join(strings.Fields(plain), " ")
}

// Tone scores text with VADER and buckets the compound score.
func Tone(text string) (float64, string) {
	score := analyzer.PolarityScores(ConvertMarkdownToText(text)).Compound

	switch {
	case score >= toneThreshold:
		return score, TONE_POSITIVE
	case score <= -toneThreshold:
		return score, TONE_NEGATIVE
	default:
		return score, TONE_NEUTRAL
	}
}

// AnnotateTone sets Tone on every item from its title and content.
func AnnotateTone(items []models.SourceItem) {
	for i := range items {
		_, items[i].Tone = Tone(items[i].Title + ". " + items[i].Content)
	}
}
