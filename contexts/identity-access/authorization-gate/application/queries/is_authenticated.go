package queries

import (
	"context"
	"log/slog"

	application "gatekeeper/contexts/identity-access/authorization-gate/application"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/entities"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/services"
)

// IsAuthenticatedUseCase grants any request whose session carries a user id.
type IsAuthenticatedUseCase struct {
	Logger *slog.Logger
}

func (u IsAuthenticatedUseCase) Execute(_ context.Context, session entities.Session) entities.Decision {
	decision := services.EvaluateAuthenticated(session)
	if !decision.Granted() {
		application.ResolveLogger(u.Logger).Warn("authentication check denied",
			"event", "gate_authenticated_denied",
			"module", "identity-access/authorization-gate",
			"layer", "application",
			"reason", decision.Reason,
		)
	}
	return decision
}
