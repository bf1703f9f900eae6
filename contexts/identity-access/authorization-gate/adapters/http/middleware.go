package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"

	application "gatekeeper/contexts/identity-access/authorization-gate/application"
	"gatekeeper/contexts/identity-access/authorization-gate/application/queries"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/entities"
	domainerrors "gatekeeper/contexts/identity-access/authorization-gate/domain/errors"
)

// FailureFunc is the host's error channel. The gate calls it exactly once for
// every rejected request and never writes a response itself.
type FailureFunc func(w http.ResponseWriter, r *http.Request, err error)

// Middleware wraps a handler behind one bound policy.
type Middleware func(http.Handler) http.Handler

// Gate exposes the authorization policies as net/http middleware.
type Gate struct {
	Authenticated queries.IsAuthenticatedUseCase
	Member        queries.IsMemberUseCase
	Admin         queries.IsAdminUseCase
	Failure       FailureFunc
	Logger        *slog.Logger
}

// RequireAuthenticated passes requests whose session carries a user id.
func (g Gate) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := entities.SessionFromContext(r.Context())
		decision := g.Authenticated.Execute(r.Context(), session)
		g.finish(w, r, next, decision)
	})
}

// RequireAdmin passes only the configured admin user.
func (g Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := entities.SessionFromContext(r.Context())
		decision := g.Admin.Execute(r.Context(), session)
		g.finish(w, r, next, decision)
	})
}

// RequireMember binds a membership gate to organization at route registration time.
func (g Gate) RequireMember(organization string) (Middleware, error) {
	member, err := g.Member.ForOrganization(organization)
	if err != nil {
		return nil, err
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := entities.SessionFromContext(r.Context())
			decision, err := member.Execute(r.Context(), session)
			if err != nil {
				g.fail(w, r, err)
				return
			}
			g.finish(w, r, next, decision)
		})
	}, nil
}

func (g Gate) finish(w http.ResponseWriter, r *http.Request, next http.Handler, decision entities.Decision) {
	if err := decision.Err(); err != nil {
		g.fail(w, r, err)
		return
	}
	next.ServeHTTP(w, r)
}

func (g Gate) fail(w http.ResponseWriter, r *http.Request, err error) {
	if g.Failure != nil {
		g.Failure(w, r, err)
		return
	}
	application.ResolveLogger(g.Logger).Debug("gate failure without host channel",
		"event", "gate_http_default_failure",
		"module", "identity-access/authorization-gate",
		"layer", "transport",
		"path", r.URL.Path,
		"error", err.Error(),
	)
	DefaultFailure(w, r, err)
}

// DefaultFailure answers 401 for denials and 502 for everything else.
func DefaultFailure(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, domainerrors.ErrUnauthorized) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
}
