package queries

import (
	"context"
	"log/slog"

	application "gatekeeper/contexts/identity-access/authorization-gate/application"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/entities"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/services"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/valueobjects"
)

// IsAdminUseCase grants only the configured privileged user id.
type IsAdminUseCase struct {
	AdminUserID valueobjects.UserID
	Logger      *slog.Logger
}

func (u IsAdminUseCase) Execute(_ context.Context, session entities.Session) entities.Decision {
	decision := services.EvaluateAdmin(session, u.AdminUserID)
	if !decision.Granted() {
		application.ResolveLogger(u.Logger).Warn("admin check denied",
			"event", "gate_admin_denied",
			"module", "identity-access/authorization-gate",
			"layer", "application",
			"user_id", session.UserID.String(),
			"reason", decision.Reason,
		)
	}
	return decision
}
