package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gatekeeper/contexts/identity-access/authorization-gate/domain/entities"
	domainerrors "gatekeeper/contexts/identity-access/authorization-gate/domain/errors"
	"gatekeeper/contexts/identity-access/authorization-gate/ports"
)

// Store is an in-memory adapter implementing the oracle, session and clock ports.
// It is intended for tests and local development wiring.
type Store struct {
	mu sync.RWMutex

	// organization -> lowercased identity set
	members  map[string]map[string]struct{}
	sessions map[string]entities.SessionRecord
}

func NewStore() *Store {
	return &Store{
		members:  make(map[string]map[string]struct{}),
		sessions: make(map[string]entities.SessionRecord),
	}
}

// AddMember registers identity as a member of organization.
// Identities are matched case-insensitively, the way GitHub logins are.
func (s *Store) AddMember(organization string, identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	org := strings.TrimSpace(organization)
	if s.members[org] == nil {
		s.members[org] = make(map[string]struct{})
	}
	s.members[org][strings.ToLower(strings.TrimSpace(identity))] = struct{}{}
}

func (s *Store) RemoveMember(organization string, identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.members[strings.TrimSpace(organization)], strings.ToLower(strings.TrimSpace(identity)))
}

func (s *Store) CheckMembership(ctx context.Context, _ string, identity string, organization string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.members[strings.TrimSpace(organization)][strings.ToLower(strings.TrimSpace(identity))]
	return ok, nil
}

func (s *Store) GetSession(_ context.Context, sessionID string, now time.Time) (entities.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok || record.Expired(now) {
		return entities.SessionRecord{}, domainerrors.ErrSessionNotFound
	}
	return record, nil
}

func (s *Store) SaveSession(_ context.Context, record entities.SessionRecord) error {
	if strings.TrimSpace(record.SessionID) == "" {
		return fmt.Errorf("%w: session id is required", domainerrors.ErrInvalidSession)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[record.SessionID] = record
	return nil
}

func (s *Store) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, strings.TrimSpace(sessionID))
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.sessions {
		if record.Expired(now) {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.MembershipOracle = (*Store)(nil)
var _ ports.SessionStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
