package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore   = (*MemorySessionStore)(nil)
	_ ports.RoleMapper     = (*StaticRoleMapper)(nil)
	_ ports.TokenIssuer    = (*PlainTokenIssuer)(nil)
	_ ports.PasswordHasher = (*PlainHasher)(nil)
)

// ErrSessionNotFound is returned by MemorySessionStore.Get for unknown IDs.
var ErrSessionNotFound = errors.New("session not found")

// MemorySessionStore is an in-memory session store safe for concurrent use.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session

	// SaveErr, when set, is returned by Save to simulate store failures.
	SaveErr error
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (s *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StaticRoleMapper maps wire role names via the canonical table and
// substitutes a fixed fallback for unknown names.
type StaticRoleMapper struct {
	// Fallback is assigned when a name does not resolve. Leave empty
	// to drop unknown names.
	Fallback domainauth.Role
}

func (m *StaticRoleMapper) Map(names []string) []domainauth.Role {
	out := make([]domainauth.Role, 0, len(names))
	for _, n := range names {
		if r, ok := domainauth.ParseWireRole(n); ok {
			out = append(out, r)
			continue
		}
		if m.Fallback != "" {
			out = append(out, m.Fallback)
		}
	}
	return out
}

// PlainTokenIssuer issues reversible tokens of the form "tok:<session ID>".
// It lets tests assert on token contents without JWT machinery.
type PlainTokenIssuer struct {
	IssueErr  error
	VerifyErr error
}

func (i *PlainTokenIssuer) Issue(sessionID string, _ time.Time) (string, error) {
	if i.IssueErr != nil {
		return "", i.IssueErr
	}
	return "tok:" + sessionID, nil
}

func (i *PlainTokenIssuer) Verify(token string) (string, error) {
	if i.VerifyErr != nil {
		return "", i.VerifyErr
	}
	const prefix = "tok:"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return "", errors.New("malformed token")
	}
	return token[len(prefix):], nil
}

// PlainHasher produces "hashed:<password>" so tests can seed matching
// credentials without bcrypt cost.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	return "hashed:" + password, nil
}

func (PlainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("password mismatch")
	}
	return nil
}
