package queries

import (
	"context"
	"fmt"
	"log/slog"

	application "gatekeeper/contexts/identity-access/authorization-gate/application"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/entities"
	domainerrors "gatekeeper/contexts/identity-access/authorization-gate/domain/errors"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/services"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/valueobjects"
	"gatekeeper/contexts/identity-access/authorization-gate/ports"
)

// IsMemberUseCase builds member gates bound to one organization each.
type IsMemberUseCase struct {
	Oracle ports.MembershipOracle
	Logger *slog.Logger
}

// ForOrganization binds the membership check to organization at configuration time.
func (u IsMemberUseCase) ForOrganization(organization string) (MemberGate, error) {
	name, err := valueobjects.NewOrganizationName(organization)
	if err != nil {
		return MemberGate{}, fmt.Errorf("%w: %v", domainerrors.ErrInvalidOrganization, err)
	}
	if u.Oracle == nil {
		return MemberGate{}, fmt.Errorf("%w: membership oracle is required", domainerrors.ErrInvalidOrganization)
	}
	return MemberGate{
		organization: name,
		oracle:       u.Oracle,
		logger:       u.Logger,
	}, nil
}

// MemberGate checks organization membership of a session's identity.
type MemberGate struct {
	organization valueobjects.OrganizationName
	oracle       ports.MembershipOracle
	logger       *slog.Logger
}

func (g MemberGate) Organization() string {
	return g.organization.String()
}

// Execute queries the oracle at most once, and only for authenticated sessions.
// Oracle failures are returned unchanged and never turned into a denial.
func (g MemberGate) Execute(ctx context.Context, session entities.Session) (entities.Decision, error) {
	logger := application.ResolveLogger(g.logger)
	if !session.Authenticated() {
		logger.Warn("membership check denied without session",
			"event", "gate_member_denied",
			"module", "identity-access/authorization-gate",
			"layer", "application",
			"organization", g.organization.String(),
			"reason", entities.ReasonUnauthorized,
		)
		decision := entities.Deny(entities.PolicyMember, entities.ReasonUnauthorized)
		decision.Organization = g.organization.String()
		return decision, nil
	}

	member, err := g.oracle.CheckMembership(ctx, session.Credential, session.Identity, g.organization.String())
	if err != nil {
		logger.Error("membership oracle call failed",
			"event", "gate_member_oracle_failed",
			"module", "identity-access/authorization-gate",
			"layer", "application",
			"organization", g.organization.String(),
			"user_id", session.UserID.String(),
			"identity", session.Identity,
			"error", err.Error(),
		)
		return entities.Decision{Policy: entities.PolicyMember, Organization: g.organization.String()}, err
	}

	decision := services.EvaluateMembership(g.organization, member)
	if !decision.Granted() {
		logger.Warn("membership check denied",
			"event", "gate_member_denied",
			"module", "identity-access/authorization-gate",
			"layer", "application",
			"organization", g.organization.String(),
			"user_id", session.UserID.String(),
			"identity", session.Identity,
			"reason", decision.Reason,
		)
		return decision, nil
	}
	logger.Debug("membership check granted",
		"event", "gate_member_granted",
		"module", "identity-access/authorization-gate",
		"layer", "application",
		"organization", g.organization.String(),
		"user_id", session.UserID.String(),
	)
	return decision, nil
}
