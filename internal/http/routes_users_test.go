package httpx

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
)

func adminToken(t *testing.T, env *testEnv) string {
	t.Helper()
	env.seedUser(t, "admin@example.com", "admin-pass", domainauth.RoleAdmin)
	return env.login(t, "admin@example.com", "admin-pass")
}

func TestUserRoutes_RequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "collab@example.com", "collab-pass")
	collabToken := env.login(t, "collab@example.com", "collab-pass")

	// No token: 401.
	rec := env.do(t, request{Method: http.MethodGet, Path: "/api/users"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "authentication_required", body["error"])

	// Authenticated but not admin: 403.
	rec = env.do(t, request{Method: http.MethodGet, Path: "/api/users", Token: collabToken})
	require.Equal(t, http.StatusForbidden, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "insufficient_permissions", body["error"])
}

func TestUserRoutes_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)

	rec := env.do(t, request{Method: http.MethodPost, Path: "/api/users", Token: token, Body: map[string]any{
		"name":     "Carla Dias",
		"email":    "carla@example.com",
		"password": "strong-pass",
		"roles":    []string{domainauth.WireRoleManager},
	}})

	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID    int64    `json:"id"`
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	}
	decode(t, rec, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, []string{domainauth.WireRoleManager}, created.Roles)

	// The password hash must never appear in responses.
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.do(t, request{Method: http.MethodGet, Path: fmt.Sprintf("/api/users/%d", created.ID), Token: token})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUserRoutes_CreateConflict(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)

	body := map[string]any{
		"name":     "Dup",
		"email":    "dup@example.com",
		"password": "strong-pass",
	}
	rec := env.do(t, request{Method: http.MethodPost, Path: "/api/users", Token: token, Body: body})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, request{Method: http.MethodPost, Path: "/api/users", Token: token, Body: body})
	require.Equal(t, http.StatusConflict, rec.Code)
	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, "conflict", resp["error"])
}

func TestUserRoutes_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)

	rec := env.do(t, request{Method: http.MethodPost, Path: "/api/users", Token: token, Body: map[string]any{
		"name":     "No Email",
		"email":    "not-an-email",
		"password": "strong-pass",
	}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, "validation_failed", resp["error"])
}

func TestUserRoutes_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)
	target := env.seedUser(t, "target@example.com", "target-pass")

	rec := env.do(t, request{Method: http.MethodPut, Path: fmt.Sprintf("/api/users/%d", target.ID), Token: token, Body: map[string]any{
		"name":   "Renamed",
		"active": false,
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated struct {
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}
	decode(t, rec, &updated)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.Active)

	rec = env.do(t, request{Method: http.MethodDelete, Path: fmt.Sprintf("/api/users/%d", target.ID), Token: token})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, request{Method: http.MethodGet, Path: fmt.Sprintf("/api/users/%d", target.ID), Token: token})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserRoutes_AdminCannotDeleteSelf(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)

	// The seeded admin is the only user, so their ID is 1.
	rec := env.do(t, request{Method: http.MethodDelete, Path: "/api/users/1", Token: token})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	decode(t, rec, &resp)
	assert.Contains(t, resp["message"], "own account")
}

func TestUserRoutes_InvalidID(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)

	rec := env.do(t, request{Method: http.MethodGet, Path: "/api/users/abc", Token: token})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, "invalid_path", resp["error"])
}
