package workers

import (
	"context"
	"log/slog"
	"time"

	application "gatekeeper/contexts/identity-access/authorization-gate/application"
	"gatekeeper/contexts/identity-access/authorization-gate/ports"
)

// SessionSweeper deletes sessions whose expiry has passed.
type SessionSweeper struct {
	Sessions ports.SessionStore
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (s SessionSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	deleted, err := s.Sessions.DeleteExpiredSessions(ctx, now)
	if err != nil {
		logger.Error("session sweep failed",
			"event", "gate_session_sweep_failed",
			"module", "identity-access/authorization-gate",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if deleted > 0 {
		logger.Info("expired sessions deleted",
			"event", "gate_session_sweep_completed",
			"module", "identity-access/authorization-gate",
			"layer", "worker",
			"deleted", deleted,
		)
	}
	return nil
}
