package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	authorization "gatekeeper/contexts/identity-access/authorization-gate"
	httpadapter "gatekeeper/contexts/identity-access/authorization-gate/adapters/http"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/entities"
	gateerrors "gatekeeper/contexts/identity-access/authorization-gate/domain/errors"
	"gatekeeper/contexts/identity-access/authorization-gate/ports"
	gatehttp "gatekeeper/contexts/identity-access/authorization-gate/transport/http"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "gatekeeper/internal/platform/httpserver/docs"
)

const (
	requestIDHeader = "X-Request-Id"
	sessionHeader   = "X-Session-Id"
)

// Options configures routing and request handling.
type Options struct {
	Addr               string
	Organization       string
	SessionCookieName  string
	RateLimitPerSecond float64
	RequestTimeout     time.Duration
	EnableSwagger      bool
	Clock              ports.Clock
}

type Server struct {
	mux      *http.ServeMux
	handler  http.Handler
	http     *http.Server
	logger   *slog.Logger
	addr     string
	gate     httpadapter.Gate
	sessions ports.SessionStore
	clock    ports.Clock
	cookie   string
	opts     Options
}

func New(module authorization.Module, opts Options, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.SessionCookieName == "" {
		opts.SessionCookieName = "session"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     opts.Addr,
		gate:     module.Gate,
		sessions: module.Sessions,
		clock:    opts.Clock,
		cookie:   opts.SessionCookieName,
		opts:     opts,
	}
	if s.gate.Failure == nil {
		s.gate.Failure = s.writeGateFailure
	}
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}

	var handler http.Handler = s.mux
	handler = s.loadSession(handler)
	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, `{"code":"timeout","message":"request timed out"}`)
	}
	s.handler = s.withRequestID(handler)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	s.http = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() error {
	if s.opts.EnableSwagger {
		s.mux.Handle("/swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /api/auth/v1/session", s.gate.RequireAuthenticated(http.HandlerFunc(s.handleSession)))
	s.mux.Handle("GET /api/auth/v1/admin", s.gate.RequireAdmin(http.HandlerFunc(s.handleAdmin)))

	if strings.TrimSpace(s.opts.Organization) == "" {
		s.logger.Warn("membership route disabled, no organization configured",
			"event", "http_membership_route_disabled",
			"module", "internal/platform/httpserver",
			"layer", "platform",
		)
		return nil
	}
	requireMember, err := s.gate.RequireMember(s.opts.Organization)
	if err != nil {
		return err
	}
	s.mux.Handle("GET /api/auth/v1/membership", s.throttle(requireMember(s.handleMembership(s.opts.Organization))))
	return nil
}

// throttle limits requests that reach the membership oracle.
func (s *Server) throttle(next http.Handler) http.Handler {
	if s.opts.RateLimitPerSecond <= 0 {
		return next
	}
	lmt := tollbooth.NewLimiter(s.opts.RateLimitPerSecond, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetMessageContentType("application/json")
	lmt.SetMessage(`{"code":"rate_limited","message":"too many requests"}`)
	return tollbooth.LimitHandler(lmt, next)
}

// handleHealth godoc
// @Summary Liveness probe
// @Tags ops
// @Produce json
// @Success 200 {object} httptransport.HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, gatehttp.HealthResponse{Status: "ok"})
}

// handleSession godoc
// @Summary Current session identity
// @Description Requires an authenticated session.
// @Tags authorization-gate
// @Produce json
// @Param X-Session-Id header string false "Session id (falls back to the session cookie)"
// @Success 200 {object} httptransport.SessionResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Router /api/auth/v1/session [get]
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session := entities.SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, gatehttp.SessionResponse{
		UserID:   session.UserID.String(),
		Identity: session.Identity,
	})
}

// handleAdmin godoc
// @Summary Admin access probe
// @Description Passes only for the configured admin user id.
// @Tags authorization-gate
// @Produce json
// @Param X-Session-Id header string false "Session id (falls back to the session cookie)"
// @Success 200 {object} httptransport.AccessResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Router /api/auth/v1/admin [get]
func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	session := entities.SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, gatehttp.AccessResponse{
		Policy:  string(entities.PolicyAdmin),
		Outcome: entities.OutcomeGranted.String(),
		UserID:  session.UserID.String(),
	})
}

// handleMembership godoc
// @Summary Organization membership probe
// @Description Passes when the session identity belongs to the configured organization.
// @Tags authorization-gate
// @Produce json
// @Param X-Session-Id header string false "Session id (falls back to the session cookie)"
// @Success 200 {object} httptransport.AccessResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 429 {object} httptransport.ErrorResponse
// @Failure 502 {object} httptransport.ErrorResponse
// @Router /api/auth/v1/membership [get]
func (s *Server) handleMembership(organization string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := entities.SessionFromContext(r.Context())
		writeJSON(w, http.StatusOK, gatehttp.AccessResponse{
			Policy:       string(entities.PolicyMember),
			Outcome:      entities.OutcomeGranted.String(),
			UserID:       session.UserID.String(),
			Organization: organization,
		})
	})
}

// writeGateFailure is the failure channel handed to the gate.
func (s *Server) writeGateFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, gateerrors.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
	case errors.Is(err, context.Canceled):
		s.logger.Info("request cancelled during authorization",
			"event", "http_gate_cancelled",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"request_id", r.Header.Get(requestIDHeader),
			"path", r.URL.Path,
		)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "upstream_timeout", "membership check timed out")
	case errors.Is(err, gateerrors.ErrUpstreamUnavailable):
		s.logger.Error("membership oracle unavailable",
			"event", "http_gate_upstream_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"request_id", r.Header.Get(requestIDHeader),
			"path", r.URL.Path,
			"error", err.Error(),
		)
		writeError(w, http.StatusBadGateway, "upstream_unavailable", "membership could not be verified")
	default:
		s.logger.Error("authorization failed unexpectedly",
			"event", "http_gate_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"request_id", r.Header.Get(requestIDHeader),
			"path", r.URL.Path,
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, gatehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
			r.Header.Set(requestIDHeader, requestID)
		}
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r)
	})
}
