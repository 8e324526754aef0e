package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/contentflow/config"
	"github.com/spacesedan/contentflow/internal/client"
	"github.com/spacesedan/contentflow/internal/logging"
	"github.com/spf13/cobra"
)

var (
	apiURL   string
	logLevel string

	settings config.Settings
	api      *client.Client
)

// rootCmd is the ContentFlow command line client.
var rootCmd = &cobra.Command{
	Use:   "contentflow",
	Short: "Generate video scripts from trending news and Reddit posts",
	Long: `contentflow submits script generation jobs to the ContentFlow API and
follows them until the script is ready.

The API address comes from --api-url, CONTENTFLOW_API_URL, or defaults to
http://localhost:8000.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "dev"
		}
		config.LoadEnv(env)

		var err error
		settings, err = config.FromEnv()
		if err != nil {
			return err
		}
		if logLevel != "" {
			settings.LogLevel = logLevel
		}
		logging.InitLogger(settings.LogLevel)

		if apiURL != "" {
			settings.APIURL = apiURL
		}
		api = client.New(settings.APIURL)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "ContentFlow API base URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(stylesCmd)
	rootCmd.AddCommand(credentialsCmd)
	rootCmd.AddCommand(promoCmd)
	rootCmd.AddCommand(eventsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, client.Message(err))
		stop()
		os.Exit(1)
	}
}

func pollOptions() client.PollOptions {
	return client.PollOptions{
		Interval: settings.PollInterval,
		MaxWait:  settings.PollMaxWait,
	}
}
