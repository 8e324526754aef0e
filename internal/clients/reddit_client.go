package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/spacesedan/contentflow/internal/models"
	"github.com/spacesedan/contentflow/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	REDDIT_AUTH_URL       = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL        = "https://oauth.reddit.com"
	REDDIT_CONTENT_MAX    = 500
	REDDIT_CREATED_FORMAT = "2006-01-02 15:04:05"
)

type RedditClient struct {
	Config    *clientcredentials.Config
	Client    *http.Client
	APIURL    string
	UserAgent string
	mu        sync.Mutex
}

func NewRedditClient(clientID, clientSecret, userAgent string) *RedditClient {
	oauthConf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     REDDIT_AUTH_URL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	if userAgent == "" {
		userAgent = USER_AGENT
	}

	return &RedditClient{
		Config:    oauthConf,
		Client:    oauthConf.Client(context.Background()),
		APIURL:    REDDIT_API_URL,
		UserAgent: userAgent,
	}
}

// RefreshClient drops the cached token by building a fresh oauth2 client.
func (rc *RedditClient) RefreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.Config == nil {
		return
	}
	rc.Client = rc.Config.Client(context.Background())
}

func (rc *RedditClient) httpClient() *http.Client {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.Client
}

// FetchHotPosts returns up to limit hot posts from a subreddit.
func (rc *RedditClient) FetchHotPosts(ctx context.Context, subreddit string, limit int) ([]models.SourceItem, error) {
	parsedUrl, err := url.Parse(fmt.Sprintf("%s/r/%s/hot", strings.TrimRight(rc.APIURL, "/"), url.PathEscape(subreddit)))
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to parse URL: %w", err)
	}
	queryParams := parsedUrl.Query()
	queryParams.Add("limit", strconv.Itoa(limit))
	queryParams.Add("raw_json", "1")
	parsedUrl.RawQuery = queryParams.Encode()

	backoff := utils.NewBackoff(INITIAL_BACKOFF, MAX_BACKOFF)
	refreshed := false

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedUrl.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", rc.UserAgent)

		resp, err := rc.httpClient().Do(req)
		if err != nil {
			return nil, fmt.Errorf("[RedditClient] request for r/%s failed: %w", subreddit, err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			defer resp.Body.Close()
			var listing models.RedditAPIResponse
			if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
				return nil, fmt.Errorf("[RedditClient] Failed to decode listing: %w", err)
			}
			return listingToSourceItems(subreddit, listing, limit), nil
		case http.StatusUnauthorized:
			drain(resp)
			if refreshed {
				return nil, fmt.Errorf("[RedditClient] unauthorized after token refresh")
			}
			slog.Warn("[RedditClient] Token expired - Refreshing and Retrying...")
			rc.RefreshClient()
			refreshed = true
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			drain(resp)
			wait := backoff.Next()
			slog.Warn("[RedditClient] Retrying request",
				slog.String("subreddit", subreddit),
				slog.Int("status", resp.StatusCode),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", wait))
			if err := utils.Sleep(ctx, wait); err != nil {
				return nil, err
			}
		default:
			drain(resp)
			return nil, fmt.Errorf("[RedditClient] unexpected status %d for r/%s", resp.StatusCode, subreddit)
		}
	}
	return nil, fmt.Errorf("[RedditClient] Max retries reached request failed")
}

func listingToSourceItems(subreddit string, listing models.RedditAPIResponse, limit int) []models.SourceItem {
	items := make([]models.SourceItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		content := post.Selftext
		content = truncateRunes(content, REDDIT_CONTENT_MAX)
		items = append(items, models.SourceItem{
			Source:   "Reddit - r/" + subreddit,
			Title:    post.Title,
			Content:  content,
			URL:      post.URL,
			Score:    post.Score,
			Comments: post.NumComments,
			Created:  time.Unix(int64(post.CreatedUTC), 0).UTC().Format(REDDIT_CREATED_FORMAT),
		})
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// truncateRunes keeps at most n runes of s without splitting a multibyte sequence.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
