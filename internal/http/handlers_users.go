package httpx

import (
	"net/http"

	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/domain/model"
	"github.com/progresshq/progress-api/internal/service"
)

// UserHandlers provides HTTP handlers for user management. All routes
// are admin-only; the role check happens in the router middleware.
type UserHandlers struct {
	Svc *service.UserService
}

const maxUserListLimit = 100

// userJSON shapes a user for API responses. Roles go out under their
// wire names and the password hash never appears.
func userJSON(u *model.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"job_title":  u.JobTitle,
		"department": u.Department,
		"active":     u.Active,
		"roles":      domainauth.WireNames(u.Roles),
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

// Create handles HTTP requests to create a new user.
func (h *UserHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, userJSON(user))
}

// List handles HTTP requests to list users with pagination.
func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, maxUserListLimit)

	users, err := h.Svc.List(r.Context(), limit, offset)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(users))
	for i := range users {
		out = append(out, userJSON(&users[i]))
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"users":  out,
		"limit":  limit,
		"offset": offset,
	})
}

// GetByID handles HTTP requests to get a user by ID.
func (h *UserHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: err})
		return
	}

	user, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, userJSON(user))
}

// Update handles HTTP requests to update a user.
func (h *UserHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: err})
		return
	}

	var req model.UpdateUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, userJSON(user))
}

// Delete handles HTTP requests to delete a user.
func (h *UserHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: err})
		return
	}

	session := GetSessionFromContext(r.Context())
	var actorID int64
	if session != nil {
		actorID = session.UserID
	}

	if err := h.Svc.Delete(r.Context(), id, actorID); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
