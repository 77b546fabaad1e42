package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and tokens.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleCollaborator Role = "collaborator"
)

// Wire names as stored in the roles table and exchanged with API clients.
// The canonical internal names above never leave the process.
const (
	WireRoleAdmin        = "ROLE_ADMIN"
	WireRoleManager      = "ROLE_MANAGER"
	WireRoleCollaborator = "ROLE_COLLABORATOR"
)

// Valid reports whether the role is one of the canonical values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCollaborator:
		return true
	default:
		return false
	}
}

// WireName returns the external name for the role, or "" for unknown roles.
func (r Role) WireName() string {
	switch r {
	case RoleAdmin:
		return WireRoleAdmin
	case RoleManager:
		return WireRoleManager
	case RoleCollaborator:
		return WireRoleCollaborator
	default:
		return ""
	}
}

// ParseWireRole maps an external role name to the canonical role.
// Unknown names report false; they are never guessed.
func ParseWireRole(name string) (Role, bool) {
	switch name {
	case WireRoleAdmin:
		return RoleAdmin, true
	case WireRoleManager:
		return RoleManager, true
	case WireRoleCollaborator:
		return RoleCollaborator, true
	default:
		return "", false
	}
}

// WireNames maps canonical roles to their external names, dropping unknowns.
func WireNames(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if n := r.WireName(); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Session is the server-side record persisted for an authenticated user.
// ID is an opaque session identifier; it doubles as the token's jti claim
// so that deleting the record revokes the token.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []Role    `json:"roles"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HasRole reports whether the session carries the given role.
func (s Session) HasRole(role Role) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAny reports whether the session carries at least one of the given roles.
func (s Session) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.HasRole(r) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the session carries the admin role.
func (s Session) IsAdmin() bool { return s.HasRole(RoleAdmin) }
