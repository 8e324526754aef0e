package processing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/spacesedan/contentflow/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	SELECT_NEWS_COUNT   = 3
	SELECT_REDDIT_COUNT = 3
)

type RedditSource interface {
	FetchHotPosts(ctx context.Context, subreddit string, limit int) ([]models.SourceItem, error)
}

type NewsSource interface {
	GetTopHeadlinesByCategory(ctx context.Context, category string, limit int) ([]models.SourceItem, error)
}

// ContentFetcher gathers trending items from Reddit and NewsAPI. A failing
// subreddit or topic is logged and skipped; it never fails the fetch.
type ContentFetcher struct {
	Reddit RedditSource
	News   NewsSource
}

// FetchRedditPosts merges hot posts from every subreddit, ranks them by
// score plus comments and keeps the top limit. Ties keep subreddit order.
func (f *ContentFetcher) FetchRedditPosts(ctx context.Context, subreddits []string, limit int) []models.SourceItem {
	perSub := make([][]models.SourceItem, len(subreddits))

	var g errgroup.Group
	for i, subreddit := range subreddits {
		g.Go(func() error {
			posts, err := f.Reddit.FetchHotPosts(ctx, subreddit, limit)
			if err != nil {
				slog.Warn("[ContentFetcher] Error fetching subreddit",
					slog.String("subreddit", subreddit),
					slog.String("error", err.Error()))
				return nil
			}
			slog.Info("[ContentFetcher] Fetched posts",
				slog.String("subreddit", subreddit),
				slog.Int("count", len(posts)))
			perSub[i] = posts
			return nil
		})
	}
	_ = g.Wait()

	var allPosts []models.SourceItem
	for _, posts := range perSub {
		allPosts = append(allPosts, posts...)
	}
	SortByEngagement(allPosts)
	return truncate(allPosts, limit)
}

// FetchNewsHeadlines keeps at most limit articles per topic and limit overall,
// in topic order. An article listed under several topics is kept once.
func (f *ContentFetcher) FetchNewsHeadlines(ctx context.Context, topics []string, limit int) []models.SourceItem {
	perTopic := make([][]models.SourceItem, len(topics))

	var g errgroup.Group
	for i, topic := range topics {
		g.Go(func() error {
			articles, err := f.News.GetTopHeadlinesByCategory(ctx, topic, limit)
			if err != nil {
				slog.Warn("[ContentFetcher] Error fetching news",
					slog.String("topic", topic),
					slog.String("error", err.Error()))
				return nil
			}
			perTopic[i] = truncate(articles, limit)
			return nil
		})
	}
	_ = g.Wait()

	var all []models.SourceItem
	for _, articles := range perTopic {
		all = append(all, articles...)
	}
	return truncate(removeDuplicateURLs(all), limit)
}

// removeDuplicateURLs keeps the first item per URL. Items without a URL are
// always kept.
func removeDuplicateURLs(items []models.SourceItem) []models.SourceItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, item := range items {
		if item.URL != "" {
			if _, ok := seen[item.URL]; ok {
				continue
			}
			seen[item.URL] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}

// Fetch runs the Reddit and NewsAPI fetches concurrently.
func (f *ContentFetcher) Fetch(ctx context.Context, req models.GenerationRequest) (news, reddit []models.SourceItem, err error) {
	start := time.Now()
	limit := req.ContentLimit
	if limit < 1 {
		limit = models.DEFAULT_CONTENT_LIMIT
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reddit = f.FetchRedditPosts(gctx, req.Subreddits, limit)
		return gctx.Err()
	})
	g.Go(func() error {
		news = f.FetchNewsHeadlines(gctx, req.NewsTopics, limit)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	slog.Info("[ContentFetcher] Fetched trending content",
		slog.Int("news", len(news)),
		slog.Int("reddit", len(reddit)),
		slog.Duration("duration", time.Since(start)))
	return news, reddit, nil
}

// SelectContent keeps the newest news items and the most engaging Reddit
// posts, news first.
func SelectContent(news, reddit []models.SourceItem) []models.SourceItem {
	news = append([]models.SourceItem(nil), news...)
	reddit = append([]models.SourceItem(nil), reddit...)

	sort.SliceStable(news, func(i, j int) bool {
		return news[i].Created > news[j].Created
	})
	SortByEngagement(reddit)

	selected := make([]models.SourceItem, 0, SELECT_NEWS_COUNT+SELECT_REDDIT_COUNT)
	selected = append(selected, truncate(news, SELECT_NEWS_COUNT)...)
	selected = append(selected, truncate(reddit, SELECT_REDDIT_COUNT)...)
	return selected
}

func SortByEngagement(items []models.SourceItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Engagement() > items[j].Engagement()
	})
}

func truncate(items []models.SourceItem, limit int) []models.SourceItem {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
