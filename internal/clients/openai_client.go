package clients

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	openAIRequestTimeout = 90 * time.Second
	OPENAI_TEMPERATURE   = 0.7
	OPENAI_MAX_TOKENS    = 1500
)

var ErrEmptyCompletion = errors.New("[OpenAIClient] empty completion")

type OpenAIClient struct {
	Client openai.Client
	Model  string
}

// NewOpenAIClient builds a chat completion client. baseURL is optional and
// only needed for OpenAI compatible gateways.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: openAIRequestTimeout}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", model),
		slog.Duration("timeout", openAIRequestTimeout))

	return &OpenAIClient{
		Client: openai.NewClient(opts...),
		Model:  model,
	}
}

// Complete sends a single user prompt and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.create(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}, OPENAI_MAX_TOKENS)
}

// Chat sends a system prompt followed by one user message per entry in user.
func (c *OpenAIClient) Chat(ctx context.Context, system string, user []string, maxTokens int) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(user)+1)
	messages = append(messages, openai.SystemMessage(system))
	for _, m := range user {
		messages = append(messages, openai.UserMessage(m))
	}
	return c.create(ctx, messages, int64(maxTokens))
}

func (c *OpenAIClient) create(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, maxTokens int64) (string, error) {
	start := time.Now()
	resp, err := c.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.Model),
		Messages:    messages,
		Temperature: openai.Float(OPENAI_TEMPERATURE),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		slog.Warn("[OpenAIClient] completion failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}

	slog.Info("[OpenAIClient] OpenAI Response Finish Reason",
		slog.String("finish_reason", resp.Choices[0].FinishReason),
		slog.Duration("elapsed", time.Since(start)))
	return resp.Choices[0].Message.Content, nil
}
