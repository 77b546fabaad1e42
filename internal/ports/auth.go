package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
)

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps external role names to application roles.
type RoleMapper interface {
	Map(names []string) []domainauth.Role
}

// TokenIssuer mints and verifies bearer tokens. Issue binds the token
// to a session by embedding the session ID; Verify returns that ID.
type TokenIssuer interface {
	Issue(sessionID string, expiresAt time.Time) (string, error)
	Verify(token string) (sessionID string, err error)
}

// PasswordHasher hashes credentials and compares them in constant time.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
