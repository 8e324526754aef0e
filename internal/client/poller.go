package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spacesedan/contentflow/internal/models"
	"github.com/spacesedan/contentflow/internal/utils"
)

const (
	DEFAULT_POLL_INTERVAL          = 3000 * time.Millisecond
	DEFAULT_POLL_MAX_WAIT          = 10 * time.Minute
	DEFAULT_MAX_TRANSPORT_FAILURES = 5
	DEFAULT_INITIAL_BACKOFF        = 1 * time.Second
	DEFAULT_MAX_BACKOFF            = 32 * time.Second
)

// PollOptions controls a poll loop. Zero fields take the defaults above.
type PollOptions struct {
	Interval time.Duration
	MaxWait  time.Duration
	// MaxTransportFailures is the number of consecutive transport errors
	// tolerated before the loop gives up with the last one.
	MaxTransportFailures int
	InitialBackoff       time.Duration
	MaxBackoff           time.Duration
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = DEFAULT_POLL_INTERVAL
	}
	if o.MaxWait <= 0 {
		o.MaxWait = DEFAULT_POLL_MAX_WAIT
	}
	if o.MaxTransportFailures <= 0 {
		o.MaxTransportFailures = DEFAULT_MAX_TRANSPORT_FAILURES
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = DEFAULT_INITIAL_BACKOFF
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = DEFAULT_MAX_BACKOFF
	}
	return o
}

// StatusFunc receives every status the poller observes, in order.
type StatusFunc func(status models.JobStatus)

// Poll queries the job until it completes or fails.
//   - completed returns the script result
//   - failed returns a *JobFailedError
//   - ErrJobNotFound is returned as is
//   - transport errors back off and retry, up to MaxTransportFailures in a row
//   - ErrPollTimeout once MaxWait has elapsed, ctx.Err() when ctx ends first
//
// No request is made after a terminal status has been seen.
func (c *Client) Poll(ctx context.Context, jobID string, opts PollOptions, onStatus StatusFunc) (*models.ScriptResult, error) {
	opts = opts.withDefaults()

	pollCtx, cancel := context.WithTimeoutCause(ctx, opts.MaxWait, ErrPollTimeout)
	defer cancel()

	backoff := utils.NewBackoff(opts.InitialBackoff, opts.MaxBackoff)
	failures := 0

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-pollCtx.Done():
			return nil, pollError(pollCtx)
		case <-timer.C:
		}

		res, err := c.GetJobStatus(pollCtx, jobID)
		if err != nil {
			if pollCtx.Err() != nil {
				return nil, pollError(pollCtx)
			}
			var transportErr *TransportError
			if !errors.As(err, &transportErr) {
				return nil, err
			}

			failures++
			if failures >= opts.MaxTransportFailures {
				slog.Error("[JobPoller] Giving up after transport failures",
					slog.String("job_id", jobID),
					slog.Int("failures", failures),
					slog.String("error", err.Error()))
				return nil, err
			}
			wait := backoff.Next()
			slog.Warn("[JobPoller] Status request failed, backing off",
				slog.String("job_id", jobID),
				slog.Int("failures", failures),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()))
			timer.Reset(wait)
			continue
		}

		failures = 0
		backoff.Reset()
		if onStatus != nil {
			onStatus(res.Status)
		}

		switch res.Status {
		case models.JobStatusCompleted:
			slog.Debug("[JobPoller] Job completed", slog.String("job_id", jobID))
			if res.Result == nil {
				return &models.ScriptResult{}, nil
			}
			return res.Result, nil
		case models.JobStatusFailed:
			return nil, &JobFailedError{Reason: res.Error}
		}
		timer.Reset(opts.Interval)
	}
}

func pollError(ctx context.Context) error {
	if cause := context.Cause(ctx); errors.Is(cause, ErrPollTimeout) {
		return ErrPollTimeout
	}
	return ctx.Err()
}
