package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DEFAULT_PORT                = 8000
	DEFAULT_API_URL             = "http://localhost:8000"
	DEFAULT_POLL_INTERVAL       = 3000 * time.Millisecond
	DEFAULT_POLL_MAX_WAIT       = 10 * time.Minute
	DEFAULT_MAX_CONCURRENT_JOBS = 4
	DEFAULT_JOB_TTL             = 24 * time.Hour
	DEFAULT_OPENAI_MODEL        = "gpt-4-turbo"
	DEFAULT_REDDIT_USER_AGENT   = "TrendingNewsVideoGenerator/1.0.0"
)

// Settings is the runtime configuration shared by the binaries.
type Settings struct {
	Port     int
	LogLevel string

	APIURL       string
	PollInterval time.Duration
	PollMaxWait  time.Duration

	MaxConcurrentJobs int
	JobTTL            time.Duration

	Credentials Credentials
	OpenAIModel string

	ValkeyAddress string
	AWSEndpoint   string
	ScriptsTable  string
	KafkaBroker   string
}

// Credentials holds the upstream API keys the generation pipeline needs.
type Credentials struct {
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	NewsAPIKey         string
	OpenAIAPIKey       string
}

// Missing returns the names of the environment variables that are unset, in a
// stable order.
func (c Credentials) Missing() []string {
	var missing []string
	if c.RedditClientID == "" {
		missing = append(missing, "REDDIT_CLIENT_ID")
	}
	if c.RedditClientSecret == "" {
		missing = append(missing, "REDDIT_CLIENT_SECRET")
	}
	if c.NewsAPIKey == "" {
		missing = append(missing, "NEWS_API_KEY")
	}
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	return missing
}

// FromEnv builds Settings from the process environment. Call LoadEnv first to
// pick up the .env file for the current APP_ENV.
func FromEnv() (Settings, error) {
	s := Settings{
		Port:              DEFAULT_PORT,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		APIURL:            strings.TrimRight(getEnv("CONTENTFLOW_API_URL", DEFAULT_API_URL), "/"),
		PollInterval:      DEFAULT_POLL_INTERVAL,
		PollMaxWait:       DEFAULT_POLL_MAX_WAIT,
		MaxConcurrentJobs: DEFAULT_MAX_CONCURRENT_JOBS,
		JobTTL:            DEFAULT_JOB_TTL,
		Credentials: Credentials{
			RedditClientID:     os.Getenv("REDDIT_CLIENT_ID"),
			RedditClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
			RedditUserAgent:    getEnv("REDDIT_USER_AGENT", DEFAULT_REDDIT_USER_AGENT),
			NewsAPIKey:         os.Getenv("NEWS_API_KEY"),
			OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		},
		OpenAIModel:   getEnv("OPENAI_MODEL", DEFAULT_OPENAI_MODEL),
		ValkeyAddress: os.Getenv("VALKEY_INIT_ADDRESS"),
		AWSEndpoint:   os.Getenv("AWS_ENDPOINT"),
		ScriptsTable:  os.Getenv("SCRIPTS_TABLE"),
		KafkaBroker:   os.Getenv("KAFKA_BROKER"),
	}

	var err error
	if s.Port, err = intEnv("PORT", s.Port); err != nil {
		return Settings{}, err
	}
	if s.MaxConcurrentJobs, err = intEnv("MAX_CONCURRENT_JOBS", s.MaxConcurrentJobs); err != nil {
		return Settings{}, err
	}
	if s.MaxConcurrentJobs < 1 {
		return Settings{}, fmt.Errorf("MAX_CONCURRENT_JOBS must be positive, got %d", s.MaxConcurrentJobs)
	}

	intervalMS, err := positiveIntEnv("POLL_INTERVAL_MS", int(s.PollInterval/time.Millisecond))
	if err != nil {
		return Settings{}, err
	}
	s.PollInterval = time.Duration(intervalMS) * time.Millisecond

	maxWaitSec, err := positiveIntEnv("POLL_MAX_WAIT_SECONDS", int(s.PollMaxWait/time.Second))
	if err != nil {
		return Settings{}, err
	}
	s.PollMaxWait = time.Duration(maxWaitSec) * time.Second

	// Valkey rejects SET ... EX 0, so a zero TTL would fail every submission.
	ttlHours, err := positiveIntEnv("JOB_TTL_HOURS", int(s.JobTTL/time.Hour))
	if err != nil {
		return Settings{}, err
	}
	s.JobTTL = time.Duration(ttlHours) * time.Hour

	return s, nil
}

func positiveIntEnv(key string, fallback int) (int, error) {
	v, err := intEnv(key, fallback)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, v)
	}
	return v, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}
