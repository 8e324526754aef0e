package kafka_client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/contentflow/internal/models"
)

// JobEventProducer publishes job status transitions.
type JobEventProducer struct {
	producer *kafka.Producer
	topic    string
}

func NewJobEventProducer(cfg KafkaConfig) (*JobEventProducer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...", slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   cfg.Broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"enable.idempotence":  true,
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	jp := &JobEventProducer{producer: p, topic: cfg.Topic}
	go jp.logDeliveryFailures()

	slog.Info("[KafkaClient] Kafka Producer initialized successfully", slog.String("topic", cfg.Topic))
	return jp, nil
}

func (jp *JobEventProducer) logDeliveryFailures() {
	for e := range jp.producer.Events() {
		msg, ok := e.(*kafka.Message)
		if !ok || msg.TopicPartition.Error == nil {
			continue
		}
		slog.Warn("[KafkaClient] Job event delivery failed",
			slog.String("job_id", string(msg.Key)),
			slog.String("error", msg.TopicPartition.Error.Error()))
	}
}

// PublishJobEvent enqueues the event; delivery failures are logged
// asynchronously.
func (jp *JobEventProducer) PublishJobEvent(ctx context.Context, event models.JobEvent) error {
	key, value, err := EncodeJobEvent(event)
	if err != nil {
		return err
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &jp.topic, Partition: kafka.PartitionAny},
		Key:            key,
		Value:          value,
	}

	for i := 0; i < MAX_RETRIES; i++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = jp.producer.Produce(msg, nil)
		if err == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce job event: %w", err)
	}

	slog.Debug("[KafkaClient] Published job event",
		slog.String("job_id", event.JobID),
		slog.String("status", string(event.Status)))
	return nil
}

func (jp *JobEventProducer) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := jp.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	jp.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}
