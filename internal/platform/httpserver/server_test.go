package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authorization "gatekeeper/contexts/identity-access/authorization-gate"
	"gatekeeper/contexts/identity-access/authorization-gate/adapters/memory"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/entities"
	gateerrors "gatekeeper/contexts/identity-access/authorization-gate/domain/errors"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/valueobjects"
	gatehttp "gatekeeper/contexts/identity-access/authorization-gate/transport/http"
)

type failingOracle struct {
	err error
}

func (o failingOracle) CheckMembership(context.Context, string, string, string) (bool, error) {
	return false, o.err
}

func newTestServer(t *testing.T, opts Options) (*Server, *memory.Store) {
	t.Helper()
	module, err := authorization.NewInMemoryModule("1", nil)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	opts.Clock = module.Store
	server, err := New(module, opts, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server, module.Store
}

func saveSession(t *testing.T, store *memory.Store, id string, userID string, identity string) {
	t.Helper()
	now := time.Now().UTC()
	err := store.SaveSession(context.Background(), entities.SessionRecord{
		SessionID:  id,
		UserID:     valueobjects.UserID(userID),
		Identity:   identity,
		Credential: "token-" + identity,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("save session: %v", err)
	}
}

func get(server *Server, path string, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) gatehttp.ErrorResponse {
	t.Helper()
	var body gatehttp.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestHealthzIsOpen(t *testing.T) {
	server, _ := newTestServer(t, Options{})

	rr := get(server, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestSessionRouteRequiresAuthentication(t *testing.T) {
	server, store := newTestServer(t, Options{})
	saveSession(t, store, "s-42", "42", "octocat")

	rr := get(server, "/api/auth/v1/session", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if body := decodeError(t, rr); body.Code != "unauthorized" || body.Message != "Unauthorized" {
		t.Fatalf("unexpected error body: %+v", body)
	}

	rr = get(server, "/api/auth/v1/session", "s-42")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body gatehttp.SessionResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode session body: %v", err)
	}
	if body.UserID != "42" || body.Identity != "octocat" {
		t.Fatalf("unexpected session body: %+v", body)
	}
}

func TestSessionCookieIsAccepted(t *testing.T) {
	server, store := newTestServer(t, Options{SessionCookieName: "sid"})
	saveSession(t, store, "s-42", "42", "octocat")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/v1/session", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "s-42"})
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestUnknownSessionCookieIsCleared(t *testing.T) {
	server, _ := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/v1/session", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "gone"})
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	cleared := false
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "session" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected stale session cookie to be cleared")
	}
}

func TestAdminRoute(t *testing.T) {
	server, store := newTestServer(t, Options{})
	saveSession(t, store, "admin", "1", "root")
	saveSession(t, store, "user", "42", "octocat")

	if rr := get(server, "/api/auth/v1/admin", "admin"); rr.Code != http.StatusOK {
		t.Fatalf("expected admin to get 200, got %d", rr.Code)
	}
	if rr := get(server, "/api/auth/v1/admin", "user"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected non-admin to get 401, got %d", rr.Code)
	}
	if rr := get(server, "/api/auth/v1/admin", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected anonymous to get 401, got %d", rr.Code)
	}
}

func TestMembershipRouteDisabledWithoutOrganization(t *testing.T) {
	server, store := newTestServer(t, Options{})
	saveSession(t, store, "s-42", "42", "octocat")

	if rr := get(server, "/api/auth/v1/membership", "s-42"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without organization, got %d", rr.Code)
	}
}

func TestMembershipRoute(t *testing.T) {
	server, store := newTestServer(t, Options{Organization: "acme"})
	store.AddMember("acme", "octocat")
	saveSession(t, store, "member", "42", "octocat")
	saveSession(t, store, "outsider", "43", "mallory")

	rr := get(server, "/api/auth/v1/membership", "member")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected member to get 200, got %d", rr.Code)
	}
	var body gatehttp.AccessResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode access body: %v", err)
	}
	if body.Organization != "acme" || body.Outcome != "granted" {
		t.Fatalf("unexpected access body: %+v", body)
	}

	if rr := get(server, "/api/auth/v1/membership", "outsider"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected outsider to get 401, got %d", rr.Code)
	}
}

func TestMembershipOracleFailureMapsToBadGateway(t *testing.T) {
	store := memory.NewStore()
	saveSession(t, store, "s-42", "42", "octocat")
	module, err := authorization.NewModule(authorization.Dependencies{
		Oracle:      failingOracle{err: fmt.Errorf("%w: github responded 500", gateerrors.ErrUpstreamUnavailable)},
		Sessions:    store,
		Clock:       store,
		AdminUserID: "1",
	})
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	server, err := New(module, Options{Organization: "acme"}, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	rr := get(server, "/api/auth/v1/membership", "s-42")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if body := decodeError(t, rr); body.Code != "upstream_unavailable" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestMembershipRouteIsRateLimited(t *testing.T) {
	server, store := newTestServer(t, Options{Organization: "acme", RateLimitPerSecond: 1})
	store.AddMember("acme", "octocat")
	saveSession(t, store, "member", "42", "octocat")

	if rr := get(server, "/api/auth/v1/membership", "member"); rr.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rr.Code)
	}
	if rr := get(server, "/api/auth/v1/membership", "member"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rr.Code)
	}
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	server, _ := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	if got := rr.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}

	rr = get(server, "/healthz", "")
	if rr.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestGateFailureMapping(t *testing.T) {
	server, _ := newTestServer(t, Options{})

	cases := []struct {
		err  error
		want int
	}{
		{err: gateerrors.ErrUnauthorized, want: http.StatusUnauthorized},
		{err: fmt.Errorf("%w: boom", gateerrors.ErrUpstreamUnavailable), want: http.StatusBadGateway},
		{err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{err: fmt.Errorf("unexpected"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		server.writeGateFailure(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		if rr.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	server.writeGateFailure(rr, httptest.NewRequest(http.MethodGet, "/", nil), context.Canceled)
	if rr.Body.Len() != 0 {
		t.Fatalf("expected no body for cancelled request, got %q", rr.Body.String())
	}
}
