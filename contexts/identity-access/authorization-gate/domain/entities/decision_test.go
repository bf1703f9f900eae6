package entities

import (
	"context"
	"errors"
	"testing"

	domainerrors "gatekeeper/contexts/identity-access/authorization-gate/domain/errors"
)

func TestZeroDecisionIsUnevaluatedAndNotGranted(t *testing.T) {
	var d Decision
	if d.Outcome != OutcomeUnevaluated {
		t.Fatalf("expected unevaluated, got %s", d.Outcome)
	}
	if !errors.Is(d.Err(), domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unevaluated decision to fail closed, got %v", d.Err())
	}
}

func TestDecisionErr(t *testing.T) {
	if err := Grant(PolicyAdmin).Err(); err != nil {
		t.Fatalf("expected nil error for grant, got %v", err)
	}
	if err := Deny(PolicyAdmin, ReasonUnauthorized).Err(); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSessionContextRoundTrip(t *testing.T) {
	if SessionFromContext(context.Background()).Authenticated() {
		t.Fatalf("expected empty context to be unauthenticated")
	}
	ctx := WithSession(context.Background(), Session{UserID: "1", Identity: "octocat", Credential: "token"})
	got := SessionFromContext(ctx)
	if got.UserID != "1" || got.Identity != "octocat" || got.Credential != "token" {
		t.Fatalf("unexpected session %+v", got)
	}
}
