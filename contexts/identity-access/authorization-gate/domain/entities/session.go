package entities

import (
	"context"
	"time"

	"gatekeeper/contexts/identity-access/authorization-gate/domain/valueobjects"
)

// Session is the per-request identity snapshot the host attaches before the gate runs.
// The zero value represents an unauthenticated request.
type Session struct {
	UserID     valueobjects.UserID `json:"user_id,omitempty"`
	Identity   string              `json:"identity,omitempty"`
	Credential string              `json:"-"`
}

func (s Session) Authenticated() bool {
	return !s.UserID.IsZero()
}

// SessionRecord is a stored session as owned by the host session mechanism.
type SessionRecord struct {
	SessionID  string
	UserID     valueobjects.UserID
	Identity   string
	Credential string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

func (r SessionRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

func (r SessionRecord) Session() Session {
	return Session{
		UserID:     r.UserID,
		Identity:   r.Identity,
		Credential: r.Credential,
	}
}

type sessionContextKey struct{}

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the attached session or the zero Session.
func SessionFromContext(ctx context.Context) Session {
	session, _ := ctx.Value(sessionContextKey{}).(Session)
	return session
}
