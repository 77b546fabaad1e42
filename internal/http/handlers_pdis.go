package httpx

import (
	"net/http"

	"github.com/progresshq/progress-api/internal/domain/model"
	"github.com/progresshq/progress-api/internal/service"
)

// PDIHandlers provides HTTP handlers for development plan operations.
type PDIHandlers struct {
	Svc *service.PDIService
}

const maxPDIListLimit = 100

// Create handles HTTP requests to open a new development plan.
func (h *PDIHandlers) Create(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errNoSession})
		return
	}

	var req model.CreatePDIRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	pdi, err := h.Svc.Create(r.Context(), *session, req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, pdi)
}

// GetByID handles HTTP requests to fetch a single plan.
func (h *PDIHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errNoSession})
		return
	}

	id, err := pathID(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: err})
		return
	}

	pdi, err := h.Svc.GetByID(r.Context(), *session, id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, pdi)
}

// List handles HTTP requests to list plans. Supports collaborator_id,
// manager_id, and status filters; the status filter matches the
// effective status, so "overdue" works.
func (h *PDIHandlers) List(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errNoSession})
		return
	}

	opts := model.PDIListOptions{
		CollaboratorID: parseInt64Query(r, "collaborator_id"),
		ManagerID:      parseInt64Query(r, "manager_id"),
	}
	opts.Limit, opts.Offset = ParseLimitOffset(r, 50, maxPDIListLimit)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := model.ParsePDIStatus(raw)
		if !ok {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_status", Err: errInvalidStatus})
			return
		}
		opts.Status = &status
	}

	pdis, err := h.Svc.List(r.Context(), *session, opts)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"pdis":   pdis,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

// Update handles HTTP requests to update a plan, including lifecycle
// transitions.
func (h *PDIHandlers) Update(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errNoSession})
		return
	}

	id, err := pathID(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: err})
		return
	}

	var req model.UpdatePDIRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	pdi, err := h.Svc.Update(r.Context(), *session, id, req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, pdi)
}

// Delete handles HTTP requests to delete a plan.
func (h *PDIHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errNoSession})
		return
	}

	id, err := pathID(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: err})
		return
	}

	if err := h.Svc.Delete(r.Context(), *session, id); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
