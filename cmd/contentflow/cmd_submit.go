package main

import (
	"fmt"
	"os"

	"github.com/spacesedan/contentflow/internal/client"
	"github.com/spacesedan/contentflow/internal/models"
	"github.com/spacesedan/contentflow/internal/script"
	"github.com/spf13/cobra"
)

var (
	subreddits   []string
	newsTopics   []string
	videoStyle   string
	contentLimit int
	noWait       bool
	outputFile   string
	htmlOutput   bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a script generation job and wait for the script",
	Long: `Submit a script generation job. Unless --no-wait is given, the job is
polled until it completes or fails and the finished script is printed.

Subreddits and news topics left unset are chosen by the server.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringSliceVar(&subreddits, "subreddit", nil, "Subreddit to pull hot posts from (repeatable)")
	submitCmd.Flags().StringSliceVar(&newsTopics, "news-topic", nil, "NewsAPI category to pull headlines from (repeatable)")
	submitCmd.Flags().StringVar(&videoStyle, "style", "informative", "Video style: informative, entertaining, educational, dramatic")
	submitCmd.Flags().IntVar(&contentLimit, "limit", models.DEFAULT_CONTENT_LIMIT, "Items to fetch per source (1-10)")
	submitCmd.Flags().BoolVar(&noWait, "no-wait", false, "Print the job id and exit without polling")
	submitCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Also write the script to this file")
	submitCmd.Flags().BoolVar(&htmlOutput, "html", false, "Print the script rendered as HTML")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	req := models.GenerationRequest{
		Subreddits:   subreddits,
		NewsTopics:   newsTopics,
		VideoStyle:   videoStyle,
		ContentLimit: contentLimit,
	}

	if noWait {
		job, err := api.GenerateScript(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), job.ID)
		return nil
	}

	tracker := client.NewTracker(api, pollOptions())
	defer tracker.Close()

	out := cmd.ErrOrStderr()
	handle, err := tracker.Submit(cmd.Context(), req, func(s models.JobStatus) {
		fmt.Fprintf(out, "Status: %s\n", s)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Job: %s\n", handle.JobID)

	result, err := handle.Wait(cmd.Context())
	if err != nil {
		return err
	}
	return printResult(cmd, result)
}

func printResult(cmd *cobra.Command, result *models.ScriptResult) error {
	body := result.Script
	if htmlOutput {
		body = script.RenderHTML(result.Title, result.Script)
	}
	fmt.Fprintln(cmd.OutOrStdout(), body)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outputFile, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Script written to %s\n", outputFile)
	}
	return nil
}
