package kafka_client

import (
	"encoding/json"
	"fmt"

	"github.com/spacesedan/contentflow/internal/models"
)

// EncodeJobEvent returns the message key and value for a job event. Keying by
// job id keeps every transition of a job on one partition, in order.
func EncodeJobEvent(event models.JobEvent) ([]byte, []byte, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, nil, fmt.Errorf("[KafkaClient] failed to marshal job event: %w", err)
	}
	return []byte(event.JobID), value, nil
}

func DecodeJobEvent(value []byte) (models.JobEvent, error) {
	var event models.JobEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return models.JobEvent{}, fmt.Errorf("[KafkaClient] failed to unmarshal job event: %w", err)
	}
	return event, nil
}
