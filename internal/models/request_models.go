package models

const DEFAULT_CONTENT_LIMIT = 5

var (
	DefaultSubreddits = []string{"technology", "worldnews", "science", "todayilearned"}
	DefaultNewsTopics = []string{"technology", "science", "business"}
)

// GenerationRequest is the body of POST /generate-script.
type GenerationRequest struct {
	Subreddits   []string `json:"subreddits" dynamodbav:"subreddits"`
	NewsTopics   []string `json:"news_topics" dynamodbav:"news_topics"`
	VideoStyle   string   `json:"video_style" dynamodbav:"video_style"`
	ContentLimit int      `json:"content_limit" dynamodbav:"content_limit"`
}

// CreateJobResponse is the body returned by POST /generate-script.
type CreateJobResponse struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
}

// JobStatusResponse is the body returned by GET /job/{id}.
type JobStatusResponse struct {
	Status JobStatus     `json:"status"`
	Result *ScriptResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// ErrorResponse carries a human readable failure reason.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
