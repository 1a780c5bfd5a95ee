package jobs

import (
	"context"

	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/reachloop/reachloop/internal/observability"
	"github.com/reachloop/reachloop/internal/sessions"
)

// SessionsCleanup wires the periodic expiry sweep. It is the only writer of
// the expired session status; request-path validation never rewrites rows.
type SessionsCleanup struct {
	Sessions *sessions.Service
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Handle processes TaskTypeSessionsCleanup tasks. Safe to run concurrently
// with itself; the underlying sweep is one conditional UPDATE.
func (c *SessionsCleanup) Handle(ctx context.Context, t *asynq.Task) error {
	count, err := c.Sessions.CleanupExpired(ctx)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Error("sessions cleanup", slog.Any("error", err))
		}
		return err
	}
	c.Metrics.SessionsExpired(count)
	if c.Logger != nil && count > 0 {
		c.Logger.Info("sessions cleanup", slog.Int64("expired", count))
	}
	return nil
}
