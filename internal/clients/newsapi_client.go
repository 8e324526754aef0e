package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spacesedan/contentflow/internal/models"
	"github.com/spacesedan/contentflow/internal/utils"
)

const (
	NEWS_API_URL         = "https://newsapi.org"
	NEWS_API_SOURCE_NAME = "NewsAPI"
	NEWS_API_TIMEOUT     = 15 * time.Second
)

var ErrNewsAPIKeyMissing = errors.New("[NewsAPIClient] API key is missing")

type NewsAPIClient struct {
	Client  *http.Client
	APIKey  string
	BaseURL string
}

func NewNewsAPIClient(apiKey string) *NewsAPIClient {
	return &NewsAPIClient{
		Client:  &http.Client{Timeout: NEWS_API_TIMEOUT},
		APIKey:  apiKey,
		BaseURL: NEWS_API_URL,
	}
}

// GetTopHeadlinesByCategory returns the first limit English top headlines for
// a NewsAPI category.
func (n *NewsAPIClient) GetTopHeadlinesByCategory(ctx context.Context, category string, limit int) ([]models.SourceItem, error) {
	if n.APIKey == "" {
		slog.Error("[NewsAPIClient] API key is missing")
		return nil, ErrNewsAPIKeyMissing
	}

	endpoint, err := url.Parse(strings.TrimRight(n.BaseURL, "/") + "/v2/top-headlines")
	if err != nil {
		return nil, fmt.Errorf("[NewsAPIClient] Failed to parse URL: %w", err)
	}
	q := endpoint.Query()
	q.Set("category", category)
	q.Set("language", "en")
	q.Set("apiKey", n.APIKey)
	endpoint.RawQuery = q.Encode()

	var lastErr error
	backoff := utils.NewBackoff(INITIAL_BACKOFF, MAX_BACKOFF)

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		slog.Debug("[NewsAPIClient] Fetching top headlines",
			slog.String("category", category), slog.Int("attempt", attempt))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", USER_AGENT)

		res, err := n.Client.Do(req)
		if err != nil {
			slog.Error("[NewsAPIClient] request failed", slog.String("error", err.Error()))
			return nil, fmt.Errorf("[NewsAPIClient] request failed: %w", err)
		}

		switch res.StatusCode {
		case http.StatusOK:
			defer res.Body.Close()
			var response models.NewsAPITopHeadlinesResponse
			if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
				slog.Error("[NewsAPIClient] Failed to parse JSON response", slog.String("error", err.Error()))
				return nil, err
			}
			slog.Info("[NewsAPIClient] Successfully fetched headlines",
				slog.String("category", category), slog.Int("articles", len(response.Articles)))
			return articlesToSourceItems(response.Articles, limit), nil
		case http.StatusBadRequest:
			drain(res)
			return nil, errors.New("[NewsAPIClient] Bad request: check query parameters")
		case http.StatusUnauthorized:
			drain(res)
			return nil, errors.New("[NewsAPIClient] Invalid API Key, check credentials")
		case http.StatusForbidden:
			drain(res)
			return nil, errors.New("[NewsAPIClient] API key lacks required permissions")
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
			drain(res)
			wait := backoff.Next()
			slog.Warn("[NewsAPIClient] Retrying after upstream status",
				slog.Int("status", res.StatusCode),
				slog.Duration("backoff", wait),
				slog.Int("attempt", attempt))
			lastErr = fmt.Errorf("[NewsAPIClient] upstream status %d", res.StatusCode)
			if err := utils.Sleep(ctx, wait); err != nil {
				return nil, err
			}
		default:
			drain(res)
			return nil, fmt.Errorf("[NewsAPIClient] Unexpected status code %d", res.StatusCode)
		}
	}

	slog.Error("[NewsAPIClient] Failed after max retries")
	return nil, fmt.Errorf("[NewsAPIClient] failed after max retries: %w", lastErr)
}

func articlesToSourceItems(articles []models.NewsAPIArticle, limit int) []models.SourceItem {
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	items := make([]models.SourceItem, 0, len(articles))
	for _, article := range articles {
		source := article.Source.Name
		if source == "" {
			source = NEWS_API_SOURCE_NAME
		}
		items = append(items, models.SourceItem{
			Source:  source,
			Title:   article.Title,
			Content: article.Description,
			URL:     article.URL,
			Created: article.PublishedAt,
		})
	}
	return items
}
