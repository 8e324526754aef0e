package kafka_client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/contentflow/internal/models"
)

// JobEventConsumer reads job events, newest-only by default.
type JobEventConsumer struct {
	consumer *kafka.Consumer
}

func NewJobEventConsumer(cfg KafkaConfig, fromBeginning bool) (*JobEventConsumer, error) {
	offsetReset := "latest"
	if fromBeginning {
		offsetReset = "earliest"
	}

	slog.Info("[KafkaClient] Initializing Kafka Consumer...",
		slog.String("broker", cfg.Broker),
		slog.String("group_id", cfg.GroupID),
		slog.String("topic", cfg.Topic))

	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Broker,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  offsetReset,
		"enable.auto.commit": true,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create consumer: %w", err)
	}

	if err := c.SubscribeTopics([]string{cfg.Topic}, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to subscribe to topics: %w", err)
	}

	return &JobEventConsumer{consumer: c}, nil
}

// Next blocks until an event arrives or ctx is done. Read timeouts are polled
// so cancellation is noticed within READ_POLL_INTERVAL.
func (jc *JobEventConsumer) Next(ctx context.Context) (models.JobEvent, error) {
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return models.JobEvent{}, err
		}

		msg, err := jc.consumer.ReadMessage(READ_POLL_INTERVAL)
		if err != nil {
			var kafkaErr kafka.Error
			if errors.As(err, &kafkaErr) {
				if kafkaErr.Code() == kafka.ErrTimedOut {
					continue
				}
				if kafkaErr.Code() == kafka.ErrAllBrokersDown {
					slog.Error("[KafkaIterator] All Kafka brokers are down. Aborting")
					return models.JobEvent{}, err
				}
			}

			failures++
			slog.Warn("[KafkaIterator] Failed to read message, retrying...",
				slog.Int("attempt", failures),
				slog.String("error", err.Error()))
			if failures >= MAX_RETRIES {
				return models.JobEvent{}, fmt.Errorf("[KafkaIterator] Failed to read message after retries: %w", err)
			}
			time.Sleep(RETRY_DELAY)
			continue
		}

		event, err := DecodeJobEvent(msg.Value)
		if err != nil {
			slog.Warn("[KafkaIterator] Skipping malformed job event",
				slog.String("key", string(msg.Key)),
				slog.String("error", err.Error()))
			continue
		}
		return event, nil
	}
}

func (jc *JobEventConsumer) Close() error {
	return jc.consumer.Close()
}
