package main

import (
	"fmt"

	"github.com/spacesedan/contentflow/internal/client"
	"github.com/spacesedan/contentflow/internal/models"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the current status of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := api.GetJobStatus(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", res.Status)
		switch res.Status {
		case models.JobStatusCompleted:
			if res.Result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Title: %s\n", res.Result.Title)
			}
		case models.JobStatusFailed:
			fmt.Fprintln(cmd.OutOrStdout(), (&client.JobFailedError{Reason: res.Error}).Error())
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <job-id>",
	Short: "Poll an existing job until it completes or fails",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker := client.NewTracker(api, pollOptions())
		defer tracker.Close()

		out := cmd.ErrOrStderr()
		handle, err := tracker.Watch(cmd.Context(), args[0], func(s models.JobStatus) {
			fmt.Fprintf(out, "Status: %s\n", s)
		})
		if err != nil {
			return err
		}
		result, err := handle.Wait(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(cmd, result)
	},
}

func init() {
	watchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Also write the script to this file")
	watchCmd.Flags().BoolVar(&htmlOutput, "html", false, "Print the script rendered as HTML")
}
