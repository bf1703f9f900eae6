package entities

import domainerrors "gatekeeper/contexts/identity-access/authorization-gate/domain/errors"

// Outcome is the state of one gate evaluation.
type Outcome int

const (
	OutcomeUnevaluated Outcome = iota
	OutcomeGranted
	OutcomeDenied
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGranted:
		return "granted"
	case OutcomeDenied:
		return "denied"
	default:
		return "unevaluated"
	}
}

// Policy names the check that produced a decision.
type Policy string

const (
	PolicyAuthenticated Policy = "authenticated"
	PolicyMember        Policy = "member"
	PolicyAdmin         Policy = "admin"
)

const ReasonUnauthorized = "unauthorized"

// Decision is the result of evaluating one policy against one session.
type Decision struct {
	Policy       Policy  `json:"policy"`
	Outcome      Outcome `json:"outcome"`
	Reason       string  `json:"reason,omitempty"`
	Organization string  `json:"organization,omitempty"`
}

func Grant(policy Policy) Decision {
	return Decision{Policy: policy, Outcome: OutcomeGranted}
}

func Deny(policy Policy, reason string) Decision {
	return Decision{Policy: policy, Outcome: OutcomeDenied, Reason: reason}
}

func (d Decision) Granted() bool {
	return d.Outcome == OutcomeGranted
}

// Err returns ErrUnauthorized for any decision that is not granted.
func (d Decision) Err() error {
	if d.Granted() {
		return nil
	}
	return domainerrors.ErrUnauthorized
}
