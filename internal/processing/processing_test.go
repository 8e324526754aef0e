package processing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spacesedan/contentflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReddit struct {
	posts map[string][]models.SourceItem
	fail  map[string]bool
	delay map[string]time.Duration
}

func (f *fakeReddit) FetchHotPosts(_ context.Context, subreddit string, limit int) ([]models.SourceItem, error) {
	time.Sleep(f.delay[subreddit])
	if f.fail[subreddit] {
		return nil, errors.New("boom")
	}
	return truncate(f.posts[subreddit], limit), nil
}

type fakeNews struct {
	articles map[string][]models.SourceItem
	fail     map[string]bool
}

func (f *fakeNews) GetTopHeadlinesByCategory(_ context.Context, category string, _ int) ([]models.SourceItem, error) {
	if f.fail[category] {
		return nil, errors.New("boom")
	}
	return f.articles[category], nil
}

type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func post(title string, score, comments int) models.SourceItem {
	return models.SourceItem{Source: "Reddit - r/test", Title: title, Score: score, Comments: comments}
}

func article(title, created string) models.SourceItem {
	return models.SourceItem{Source: "Reuters", Title: title, Created: created}
}

func TestFetchRedditPostsRanksAndTruncates(t *testing.T) {
	f := &ContentFetcher{Reddit: &fakeReddit{
		posts: map[string][]models.SourceItem{
			"technology": {post("a", 1, 1), post("b", 50, 5)},
			"science":    {post("c", 20, 30), post("d", 0, 0)},
		},
		fail: map[string]bool{"broken": true},
	}}

	got := f.FetchRedditPosts(context.Background(), []string{"technology", "science", "broken"}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Title)
	assert.Equal(t, "c", got[1].Title)
}

func TestFetchRedditPostsBreaksTiesBySubredditOrder(t *testing.T) {
	f := &ContentFetcher{Reddit: &fakeReddit{
		posts: map[string][]models.SourceItem{
			"slow": {post("slow-1", 10, 0), post("slow-2", 5, 0)},
			"fast": {post("fast-1", 10, 0), post("fast-2", 5, 0)},
		},
		delay: map[string]time.Duration{"slow": 20 * time.Millisecond},
	}}

	got := f.FetchRedditPosts(context.Background(), []string{"slow", "fast"}, 4)
	titles := make([]string, 0, len(got))
	for _, p := range got {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"slow-1", "fast-1", "slow-2", "fast-2"}, titles)
}

func TestFetchNewsHeadlinesLimitsPerTopicAndOverall(t *testing.T) {
	f := &ContentFetcher{News: &fakeNews{
		articles: map[string][]models.SourceItem{
			"technology": {article("t1", "1"), article("t2", "2"), article("t3", "3")},
			"science":    {article("s1", "4")},
		},
		fail: map[string]bool{"business": true},
	}}

	got := f.FetchNewsHeadlines(context.Background(), []string{"technology", "science", "business"}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].Title)
	assert.Equal(t, "t2", got[1].Title)

	got = f.FetchNewsHeadlines(context.Background(), []string{"technology", "science"}, 5)
	assert.Len(t, got, 4)
}

func TestSelectContentOrdersNewsByRecencyThenReddit(t *testing.T) {
	news := []models.SourceItem{
		article("old", "2025-01-01T00:00:00Z"),
		article("newest", "2025-01-04T00:00:00Z"),
		article("mid", "2025-01-02T00:00:00Z"),
		article("newer", "2025-01-03T00:00:00Z"),
	}
	reddit := []models.SourceItem{post("low", 1, 0), post("high", 100, 10), post("mid", 10, 10), post("lowest", 0, 0)}

	selected := SelectContent(news, reddit)
	titles := make([]string, 0, len(selected))
	for _, s := range selected {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"newest", "newer", "mid", "high", "mid", "low"}, titles)
	assert.Equal(t, "old", news[0].Title, "input slice must not be reordered")
}

func TestSelectContentEmpty(t *testing.T) {
	assert.Empty(t, SelectContent(nil, nil))
}

func TestBuildPrompt(t *testing.T) {
	items := []models.SourceItem{{Source: "BBC", Title: "Rocket launch", Content: "It flew", URL: "https://bbc/x", Tone: "positive"}}

	prompt := BuildPrompt(items, "dramatic")
	assert.Contains(t, prompt, "Create a dramatic script with narrative tension and engagement")
	assert.Contains(t, prompt, "HEADLINE: Rocket launch\nSOURCE: BBC\nCONTENT: It flew\nURL: https://bbc/x\nTONE: positive")
	assert.Contains(t, prompt, "TITLE: [Catchy video title]")

	fallback := BuildPrompt(items, "cinematic")
	assert.Contains(t, fallback, VideoStyles["informative"].Instruction)
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Robots Take Over", ExtractTitle("intro\nTITLE: Robots Take Over\nbody"))
	assert.Equal(t, DEFAULT_SCRIPT_TITLE, ExtractTitle("no title here"))
	assert.Equal(t, DEFAULT_SCRIPT_TITLE, ExtractTitle("TITLE:   \nbody"))
}

func TestCleanCompletion(t *testing.T) {
	assert.Equal(t, "TITLE: A\nbody", CleanCompletion("  TITLE: A\nbody \n"))
	assert.Equal(t, "TITLE: A\nbody", CleanCompletion("```markdown\nTITLE: A\nbody\n```"))
	assert.Equal(t, "TITLE: A", CleanCompletion("```\nTITLE: A\n```"))
}

func TestFetchNewsHeadlinesDropsDuplicateURLs(t *testing.T) {
	shared := models.SourceItem{Source: "Reuters", Title: "Chip act", URL: "https://reuters/chip"}
	f := &ContentFetcher{News: &fakeNews{
		articles: map[string][]models.SourceItem{
			"technology": {shared},
			"business":   {shared, {Source: "AP", Title: "Markets", URL: "https://ap/markets"}},
		},
	}}

	got := f.FetchNewsHeadlines(context.Background(), []string{"technology", "business"}, 5)
	require.Len(t, got, 2)
	assert.Equal(t, "Chip act", got[0].Title)
	assert.Equal(t, "Markets", got[1].Title)
}

func TestStyleDescriptions(t *testing.T) {
	d := StyleDescriptions()
	assert.Len(t, d, 4)
	assert.Equal(t, "Engaging, casual style with some humor", d["entertaining"])
}

func TestPipelineGenerate(t *testing.T) {
	llm := &fakeLLM{reply: "TITLE: Tech Today\n\n[SEGMENT 1: Chips]\nText"}
	p := NewPipeline(
		&fakeReddit{posts: map[string][]models.SourceItem{"technology": {post("Great new chip", 10, 2)}}},
		&fakeNews{articles: map[string][]models.SourceItem{"science": {article("Terrible storm", "2025-01-01T00:00:00Z")}}},
		llm,
	)

	result, err := p.Generate(context.Background(), models.GenerationRequest{
		Subreddits:   []string{"technology"},
		NewsTopics:   []string{"science"},
		VideoStyle:   "informative",
		ContentLimit: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tech Today", result.Title)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "Terrible storm", result.Sources[0].Title)
	assert.NotEmpty(t, result.Sources[0].Tone)
	require.Len(t, llm.prompts, 1)
	assert.True(t, strings.Contains(llm.prompts[0], "HEADLINE: Great new chip"))
}

func TestPipelineNoContent(t *testing.T) {
	p := NewPipeline(&fakeReddit{}, &fakeNews{}, &fakeLLM{})
	_, err := p.Generate(context.Background(), models.GenerationRequest{Subreddits: []string{"x"}, NewsTopics: []string{"y"}})
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestPipelineLLMFailure(t *testing.T) {
	p := NewPipeline(
		&fakeReddit{posts: map[string][]models.SourceItem{"x": {post("a", 1, 1)}}},
		&fakeNews{},
		&fakeLLM{err: fmt.Errorf("rate limited")},
	)
	_, err := p.Generate(context.Background(), models.GenerationRequest{Subreddits: []string{"x"}, ContentLimit: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestFetchHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &ContentFetcher{Reddit: &fakeReddit{}, News: &fakeNews{}}
	_, _, err := f.Fetch(ctx, models.GenerationRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}
