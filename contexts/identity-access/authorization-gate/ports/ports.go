package ports

import (
	"context"
	"time"

	"gatekeeper/contexts/identity-access/authorization-gate/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// MembershipOracle answers whether identity currently belongs to organization.
// A failed lookup is reported as an error, never as false.
type MembershipOracle interface {
	CheckMembership(ctx context.Context, credential string, identity string, organization string) (bool, error)
}

// SessionStore is the host-owned session persistence boundary.
type SessionStore interface {
	GetSession(ctx context.Context, sessionID string, now time.Time) (entities.SessionRecord, error)
	SaveSession(ctx context.Context, record entities.SessionRecord) error
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
