package services

import (
	"gatekeeper/contexts/identity-access/authorization-gate/domain/entities"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/valueobjects"
)

// EvaluateAuthenticated grants any session that carries a user id.
func EvaluateAuthenticated(session entities.Session) entities.Decision {
	if !session.Authenticated() {
		return entities.Deny(entities.PolicyAuthenticated, entities.ReasonUnauthorized)
	}
	return entities.Grant(entities.PolicyAuthenticated)
}

// EvaluateAdmin grants only the configured admin user id.
func EvaluateAdmin(session entities.Session, adminID valueobjects.UserID) entities.Decision {
	if !session.Authenticated() || adminID.IsZero() || session.UserID != adminID {
		return entities.Deny(entities.PolicyAdmin, entities.ReasonUnauthorized)
	}
	return entities.Grant(entities.PolicyAdmin)
}

// EvaluateMembership maps an oracle answer to a decision for organization.
func EvaluateMembership(organization valueobjects.OrganizationName, member bool) entities.Decision {
	decision := entities.Deny(entities.PolicyMember, entities.ReasonUnauthorized)
	if member {
		decision = entities.Grant(entities.PolicyMember)
	}
	decision.Organization = organization.String()
	return decision
}
