package authroles

import (
	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
)

// WireMapper maps external role names (ROLE_ADMIN, ROLE_MANAGER,
// ROLE_COLLABORATOR) to canonical application roles. Unknown names are
// dropped, never guessed.
type WireMapper struct{}

func (WireMapper) Map(names []string) []domainauth.Role {
	out := make([]domainauth.Role, 0, len(names))
	for _, n := range names {
		if r, ok := domainauth.ParseWireRole(n); ok && !contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

func contains(roles []domainauth.Role, r domainauth.Role) bool {
	for _, have := range roles {
		if have == r {
			return true
		}
	}
	return false
}
