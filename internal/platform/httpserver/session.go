package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gatekeeper/contexts/identity-access/authorization-gate/domain/entities"
	gateerrors "gatekeeper/contexts/identity-access/authorization-gate/domain/errors"
)

// loadSession attaches the session context before any gate runs.
// Missing or unknown sessions leave the request unauthenticated.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := s.requestSessionID(r)
		if sessionID == "" || s.sessions == nil {
			next.ServeHTTP(w, r)
			return
		}

		record, err := s.sessions.GetSession(r.Context(), sessionID, s.now())
		if err != nil {
			if !errors.Is(err, gateerrors.ErrSessionNotFound) {
				s.logger.Error("session lookup failed",
					"event", "http_session_lookup_failed",
					"module", "internal/platform/httpserver",
					"layer", "platform",
					"request_id", r.Header.Get(requestIDHeader),
					"error", err.Error(),
				)
				writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}
			s.logger.Debug("unknown session, continuing unauthenticated",
				"event", "http_session_unknown",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"request_id", r.Header.Get(requestIDHeader),
			)
			if _, cookieErr := r.Cookie(s.cookie); cookieErr == nil {
				http.SetCookie(w, &http.Cookie{Name: s.cookie, Value: "", Path: "/", MaxAge: -1})
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := entities.WithSession(r.Context(), record.Session())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestSessionID(r *http.Request) string {
	if fromHeader := strings.TrimSpace(r.Header.Get(sessionHeader)); fromHeader != "" {
		return fromHeader
	}
	cookie, err := r.Cookie(s.cookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func (s *Server) now() time.Time {
	if s.clock != nil {
		return s.clock.Now().UTC()
	}
	return time.Now().UTC()
}
