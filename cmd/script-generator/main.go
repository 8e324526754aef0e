package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spacesedan/contentflow/config"
	"github.com/spacesedan/contentflow/internal/clients"
	"github.com/spacesedan/contentflow/internal/logging"
	"github.com/spacesedan/contentflow/internal/models"
	"github.com/spacesedan/contentflow/internal/processing"
	"github.com/spf13/cobra"
)

const DEFAULT_OUTPUT_FILE = "video_script.txt"

var (
	style      string
	limit      int
	subreddits []string
	topics     []string
	output     string
)

// rootCmd runs the generation pipeline once, in process, without the job API,
// and writes the result to a file.
var rootCmd = &cobra.Command{
	Use:          "script-generator",
	Short:        "Generate one video script and save it to a file",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&style, "style", "entertaining", "Video style")
	rootCmd.Flags().IntVar(&limit, "limit", models.DEFAULT_CONTENT_LIMIT, "Items to fetch per source")
	rootCmd.Flags().StringSliceVar(&subreddits, "subreddit", models.DefaultSubreddits, "Subreddits to pull hot posts from")
	rootCmd.Flags().StringSliceVar(&topics, "news-topic", models.DefaultNewsTopics, "NewsAPI categories to pull headlines from")
	rootCmd.Flags().StringVarP(&output, "output", "o", DEFAULT_OUTPUT_FILE, "File to write the script to")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Script generation failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	settings, err := config.FromEnv()
	if err != nil {
		return err
	}
	logging.InitLogger(settings.LogLevel)

	if missing := settings.Credentials.Missing(); len(missing) > 0 {
		return fmt.Errorf("missing required credentials: %s", strings.Join(missing, ", "))
	}

	creds := settings.Credentials
	pipeline := processing.NewPipeline(
		clients.NewRedditClient(creds.RedditClientID, creds.RedditClientSecret, creds.RedditUserAgent),
		clients.NewNewsAPIClient(creds.NewsAPIKey),
		clients.NewOpenAIClient(creds.OpenAIAPIKey, settings.OpenAIModel, os.Getenv("OPENAI_BASE_URL")),
	)

	result, err := pipeline.Generate(cmd.Context(), models.GenerationRequest{
		Subreddits:   subreddits,
		NewsTopics:   topics,
		VideoStyle:   style,
		ContentLimit: limit,
	})
	if err != nil {
		return err
	}

	body := fmt.Sprintf("# %s\n\n%s", result.Title, result.Script)
	if err := os.WriteFile(output, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	slog.Info("Full script saved", slog.String("file", output), slog.String("title", result.Title))
	return nil
}
