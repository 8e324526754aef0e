package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spacesedan/contentflow/internal/clients/kafka_client"
	"github.com/spf13/cobra"
)

var fromBeginning bool

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Stream job status events from Kafka",
	Long: `Consume the job events topic (KAFKA_JOB_EVENTS_TOPIC, default
script-job-events) from KAFKA_BROKER and print one line per event until
interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		consumer, err := kafka_client.NewJobEventConsumer(kafka_client.GetKafkaConfig(), fromBeginning)
		if err != nil {
			return err
		}
		defer consumer.Close()

		for {
			event, err := consumer.Next(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return err
			}

			line := fmt.Sprintf("%s  %-10s  %s", event.OccurredAt.Format("15:04:05"), event.Status, event.JobID)
			switch {
			case event.Title != "":
				line += "  " + event.Title
			case event.Error != "":
				line += "  " + event.Error
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	},
}

func init() {
	eventsCmd.Flags().BoolVar(&fromBeginning, "from-beginning", false, "Read the topic from the earliest offset")
}
