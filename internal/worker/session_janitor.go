package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/session-gateway/internal/session"
)

// SessionJanitor periodically deletes expired markers from stores that do not
// evict them on their own.
type SessionJanitor struct {
	purger   session.Purger
	interval time.Duration
	logger   *zap.Logger
}

// NewSessionJanitor creates a janitor. A non-positive interval disables it.
func NewSessionJanitor(purger session.Purger, interval time.Duration, logger *zap.Logger) *SessionJanitor {
	return &SessionJanitor{purger: purger, interval: interval, logger: logger}
}

// Run purges on every tick until ctx is cancelled.
func (j *SessionJanitor) Run(ctx context.Context) {
	if j == nil || j.purger == nil || j.interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.PurgeOnce(ctx)
		}
	}
}

// PurgeOnce runs a single purge pass and logs its outcome.
func (j *SessionJanitor) PurgeOnce(ctx context.Context) int64 {
	purged, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		j.logger.Warn("session purge failed", zap.Error(err))
		return 0
	}
	if purged > 0 {
		j.logger.Info("expired sessions purged", zap.Int64("count", purged))
	}
	return purged
}
