package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "CONTENTFLOW_API_URL", "POLL_INTERVAL_MS", "POLL_MAX_WAIT_SECONDS",
		"MAX_CONCURRENT_JOBS", "JOB_TTL_HOURS", "OPENAI_MODEL"} {
		t.Setenv(key, "")
	}

	s, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8000, s.Port)
	assert.Equal(t, "http://localhost:8000", s.APIURL)
	assert.Equal(t, 3*time.Second, s.PollInterval)
	assert.Equal(t, 10*time.Minute, s.PollMaxWait)
	assert.Equal(t, 4, s.MaxConcurrentJobs)
	assert.Equal(t, 24*time.Hour, s.JobTTL)
	assert.Equal(t, "gpt-4-turbo", s.OpenAIModel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CONTENTFLOW_API_URL", "http://api.internal:8000/")
	t.Setenv("POLL_INTERVAL_MS", "250")
	t.Setenv("MAX_CONCURRENT_JOBS", "1")

	s, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, s.Port)
	assert.Equal(t, "http://api.internal:8000", s.APIURL)
	assert.Equal(t, 250*time.Millisecond, s.PollInterval)
	assert.Equal(t, 1, s.MaxConcurrentJobs)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")

	t.Setenv("PORT", "")
	t.Setenv("MAX_CONCURRENT_JOBS", "0")
	_, err = FromEnv()
	require.Error(t, err)
}

func TestFromEnvRejectsNonPositiveDurations(t *testing.T) {
	for _, key := range []string{"JOB_TTL_HOURS", "POLL_INTERVAL_MS", "POLL_MAX_WAIT_SECONDS"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "0")
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)

			t.Setenv(key, "-3")
			_, err = FromEnv()
			require.Error(t, err)
		})
	}
}

func TestCredentialsMissing(t *testing.T) {
	c := Credentials{RedditClientID: "id", NewsAPIKey: "news"}
	assert.Equal(t, []string{"REDDIT_CLIENT_SECRET", "OPENAI_API_KEY"}, c.Missing())

	full := Credentials{RedditClientID: "a", RedditClientSecret: "b", NewsAPIKey: "c", OpenAIAPIKey: "d"}
	assert.Empty(t, full.Missing())
}
