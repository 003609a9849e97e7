package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/handik/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
	checkTimeout        = 3 * time.Second
)

// HealthChecker queries the backend. *handik.Client implements it.
type HealthChecker interface {
	CheckHealth(ctx context.Context) (bool, error)
}

// StartPoller launches a background goroutine that checks backend health and
// records the result in store. Failures stretch the interval up to
// maxBackoff. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, checker HealthChecker, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			refresh(ctx, store, checker, logger)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

func refresh(ctx context.Context, store *state.Store, checker HealthChecker, logger *zap.Logger) {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	healthy, err := checker.CheckHealth(checkCtx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		store.Update(false, err)
		logger.Warn("health poll failed", zap.Error(err))
		return
	}
	store.Update(healthy, nil)
	if !healthy {
		logger.Warn("backend reports unhealthy")
	}
}
