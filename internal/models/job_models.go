package models

import "time"

type JobStatus string

const (
	JobStatusSubmitted  JobStatus = "submitted"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transitions can happen.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is a script generation job as stored by the API server.
//   - Result is set only when Status is completed
//   - Error is set only when Status is failed
type Job struct {
	ID        string            `json:"id" dynamodbav:"job_id"`
	Status    JobStatus         `json:"status" dynamodbav:"status"`
	Request   GenerationRequest `json:"request" dynamodbav:"request"`
	Result    *ScriptResult     `json:"result,omitempty" dynamodbav:"result,omitempty"`
	Error     string            `json:"error,omitempty" dynamodbav:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" dynamodbav:"updated_at"`
}

// JobEvent is published whenever a job changes status.
type JobEvent struct {
	JobID      string    `json:"job_id"`
	Status     JobStatus `json:"status"`
	Title      string    `json:"title,omitempty"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
