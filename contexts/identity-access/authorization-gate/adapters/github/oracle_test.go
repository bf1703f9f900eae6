package githubadapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainerrors "gatekeeper/contexts/identity-access/authorization-gate/domain/errors"
)

func newTestOracle(t *testing.T, handler http.HandlerFunc) *Oracle {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOracle(Config{
		BaseURL:      server.URL,
		Timeout:      2 * time.Second,
		RetryMax:     0,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	})
}

func TestCheckMembershipMember(t *testing.T) {
	var gotPath, gotAuth string
	oracle := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	member, err := oracle.CheckMembership(context.Background(), "test_access_token", "test-github-username", "test-organization")
	if err != nil {
		t.Fatalf("check membership: %v", err)
	}
	if !member {
		t.Fatalf("expected member")
	}
	if gotPath != "/orgs/test-organization/members/test-github-username" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer test_access_token" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
}

func TestCheckMembershipNotMember(t *testing.T) {
	oracle := newTestOracle(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	member, err := oracle.CheckMembership(context.Background(), "token", "someone", "test-organization")
	if err != nil {
		t.Fatalf("check membership: %v", err)
	}
	if member {
		t.Fatalf("expected non-member")
	}
}

func TestCheckMembershipDoesNotFollowRedirect(t *testing.T) {
	oracle := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orgs/test-organization/members/someone" {
			t.Errorf("redirect was followed to %s", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, "/orgs/test-organization/public_members/someone", http.StatusFound)
	})

	member, err := oracle.CheckMembership(context.Background(), "token", "someone", "test-organization")
	if err != nil {
		t.Fatalf("check membership: %v", err)
	}
	if member {
		t.Fatalf("expected 302 to be treated as non-member")
	}
}

func TestCheckMembershipUnexpectedStatusIsUpstreamFailure(t *testing.T) {
	oracle := newTestOracle(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	member, err := oracle.CheckMembership(context.Background(), "token", "someone", "test-organization")
	if !errors.Is(err, domainerrors.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if member {
		t.Fatalf("expected no membership on failure")
	}
}

func TestCheckMembershipUnauthorizedTokenIsUpstreamFailure(t *testing.T) {
	oracle := newTestOracle(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := oracle.CheckMembership(context.Background(), "expired", "someone", "test-organization")
	if !errors.Is(err, domainerrors.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestCheckMembershipRetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	oracle := NewOracle(Config{
		BaseURL:      server.URL,
		Timeout:      2 * time.Second,
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})

	member, err := oracle.CheckMembership(context.Background(), "token", "someone", "test-organization")
	if err != nil {
		t.Fatalf("check membership: %v", err)
	}
	if !member || attempts != 2 {
		t.Fatalf("expected success on second attempt, member=%v attempts=%d", member, attempts)
	}
}

func TestCheckMembershipHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	oracle := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusNoContent)
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := oracle.CheckMembership(ctx, "token", "someone", "test-organization")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
