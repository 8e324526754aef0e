package script

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/contentflow/internal/models"
)

const INTRO_TITLE = "Intro"

var (
	segmentMarker = regexp.MustCompile(`\[SEGMENT \d+:`)
	cueMarker     = regexp.MustCompile(`(?m)^\s*\[(VISUAL|MUSIC):\s*([^\]]*)\]\s*$`)
)

// ParseSegments splits a script into its intro and "[SEGMENT n: title]"
// sections. The intro is always returned, even when empty.
func ParseSegments(script string) []models.ScriptSegment {
	sections := segmentMarker.Split(script, -1)

	segments := make([]models.ScriptSegment, 0, len(sections))
	segments = append(segments, models.ScriptSegment{
		Title:   INTRO_TITLE,
		Content: strings.TrimSpace(sections[0]),
	})

	for _, section := range sections[1:] {
		title, content, _ := strings.Cut(section, "\n")
		segments = append(segments, models.ScriptSegment{
			Title:   strings.TrimSpace(strings.Replace(title, "]", "", 1)),
			Content: strings.TrimSpace(content),
		})
	}
	return segments
}

// RenderHTML renders a script as HTML: one heading per segment and cue lines
// set in italics. Raw HTML in the script is dropped.
func RenderHTML(title, script string) string {
	var md strings.Builder
	if title != "" {
		md.WriteString("# " + title + "\n\n")
	}
	for _, seg := range ParseSegments(script) {
		if seg.Content == "" && seg.Title == INTRO_TITLE {
			continue
		}
		md.WriteString("## " + seg.Title + "\n\n")
		md.WriteString(cueMarker.ReplaceAllString(seg.Content, "*$1: $2*"))
		md.WriteString("\n\n")
	}

	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML,
	})
	return string(blackfriday.Run([]byte(md.String()),
		blackfriday.WithRenderer(renderer),
		blackfriday.WithExtensions(blackfriday.CommonExtensions)))
}
