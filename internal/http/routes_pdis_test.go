package httpx

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
)

type pdiResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	ManagerID *int64 `json:"manager_id"`
	Goals     []struct {
		Description string `json:"description"`
	} `json:"goals"`
}

func TestPDIRoutes_ManagerCreatesForCollaborator(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedUser(t, "manager@example.com", "manager-pass", domainauth.RoleManager)
	collab := env.seedUser(t, "collab@example.com", "collab-pass")
	token := env.login(t, "manager@example.com", "manager-pass")

	rec := env.do(t, request{Method: http.MethodPost, Path: "/api/pdis", Token: token, Body: map[string]any{
		"title":           "Evoluir em backend",
		"collaborator_id": collab.ID,
		"goals": []map[string]any{
			{"description": "Dominar SQL"},
		},
	}})

	require.Equal(t, http.StatusCreated, rec.Code)
	var created pdiResponse
	decode(t, rec, &created)
	assert.Equal(t, "planned", created.Status)
	require.NotNil(t, created.ManagerID)
	assert.Equal(t, manager.ID, *created.ManagerID)
	require.Len(t, created.Goals, 1)
}

func TestPDIRoutes_CollaboratorScope(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "manager@example.com", "manager-pass", domainauth.RoleManager)
	collab := env.seedUser(t, "collab@example.com", "collab-pass")
	other := env.seedUser(t, "other@example.com", "other-pass")

	managerToken := env.login(t, "manager@example.com", "manager-pass")
	collabToken := env.login(t, "collab@example.com", "collab-pass")

	mk := func(collaboratorID int64, title string) int64 {
		rec := env.do(t, request{Method: http.MethodPost, Path: "/api/pdis", Token: managerToken, Body: map[string]any{
			"title":           title,
			"collaborator_id": collaboratorID,
		}})
		require.Equal(t, http.StatusCreated, rec.Code)
		var created pdiResponse
		decode(t, rec, &created)
		return created.ID
	}
	ownID := mk(collab.ID, "Plano do colaborador")
	otherID := mk(other.ID, "Plano de outra pessoa")

	// Collaborator sees only their own plan in lists.
	rec := env.do(t, request{Method: http.MethodGet, Path: "/api/pdis", Token: collabToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		PDIs []pdiResponse `json:"pdis"`
	}
	decode(t, rec, &list)
	require.Len(t, list.PDIs, 1)
	assert.Equal(t, ownID, list.PDIs[0].ID)

	// Direct fetch of someone else's plan is forbidden.
	rec = env.do(t, request{Method: http.MethodGet, Path: fmt.Sprintf("/api/pdis/%d", otherID), Token: collabToken})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Collaborator cannot open a plan for someone else.
	rec = env.do(t, request{Method: http.MethodPost, Path: "/api/pdis", Token: collabToken, Body: map[string]any{
		"title":           "Plano intruso",
		"collaborator_id": other.ID,
	}})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Collaborator cannot delete at all.
	rec = env.do(t, request{Method: http.MethodDelete, Path: fmt.Sprintf("/api/pdis/%d", ownID), Token: collabToken})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Manager can.
	rec = env.do(t, request{Method: http.MethodDelete, Path: fmt.Sprintf("/api/pdis/%d", otherID), Token: managerToken})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPDIRoutes_StatusLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "manager@example.com", "manager-pass", domainauth.RoleManager)
	collab := env.seedUser(t, "collab@example.com", "collab-pass")
	token := env.login(t, "manager@example.com", "manager-pass")

	rec := env.do(t, request{Method: http.MethodPost, Path: "/api/pdis", Token: token, Body: map[string]any{
		"title":           "Plano",
		"collaborator_id": collab.ID,
	}})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created pdiResponse
	decode(t, rec, &created)
	path := fmt.Sprintf("/api/pdis/%d", created.ID)

	// planned -> completed skips in_progress and is rejected.
	rec = env.do(t, request{Method: http.MethodPut, Path: path, Token: token, Body: map[string]any{"status": "completed"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, request{Method: http.MethodPut, Path: path, Token: token, Body: map[string]any{"status": "in_progress"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, request{Method: http.MethodPut, Path: path, Token: token, Body: map[string]any{"status": "completed"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var done struct {
		Status        string  `json:"status"`
		CompletedDate *string `json:"completed_date"`
	}
	decode(t, rec, &done)
	assert.Equal(t, "completed", done.Status)
	assert.NotNil(t, done.CompletedDate)

	// Terminal plans are frozen.
	rec = env.do(t, request{Method: http.MethodPut, Path: path, Token: token, Body: map[string]any{"status": "in_progress"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPDIRoutes_InvalidStatusFilter(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "collab@example.com", "collab-pass")
	token := env.login(t, "collab@example.com", "collab-pass")

	rec := env.do(t, request{Method: http.MethodGet, Path: "/api/pdis?status=bogus", Token: token})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, "invalid_status", resp["error"])
}
