package kafka_client

import "time"

const (
	KAFKA_TOPIC_JOB_EVENTS = "script-job-events" // status transitions of script generation jobs
)

const (
	MAX_RETRIES        = 3
	RETRY_DELAY        = 2 * time.Second
	FLUSH_TIMEOUT_MS   = 5000
	READ_POLL_INTERVAL = 500 * time.Millisecond
)
