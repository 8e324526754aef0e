package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	HEALTHCHECK_INTERVAL = 15 * time.Second
	HEALTHCHECK_TIMEOUT  = 3 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorStoreHealth pings the job store every interval and records the
// outcome in healthy until ctx is done. The first check runs immediately.
func MonitorStoreHealth(ctx context.Context, store Pinger, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		check(ctx, store, healthy)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func check(ctx context.Context, store Pinger, healthy *atomic.Bool) {
	pingCtx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()

	err := store.Ping(pingCtx)
	was := healthy.Swap(err == nil)
	switch {
	case err != nil && was:
		slog.Warn("[HealthCheck] Job store is unhealthy", slog.String("error", err.Error()))
	case err == nil && !was:
		slog.Info("[HealthCheck] Job store recovered")
	}
}
