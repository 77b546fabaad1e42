package httpx

import (
	"errors"
	"net/http"

	"github.com/progresshq/progress-api/internal/domain/model"
	"github.com/progresshq/progress-api/internal/service"
)

// FeedbackHandlers provides HTTP handlers for feedback operations.
type FeedbackHandlers struct {
	Svc *service.FeedbackService
}

const maxFeedbackListLimit = 100

var errNoSession = errors.New("no session in request context")

// Create handles HTTP requests to record a feedback. The author always
// comes from the session, never from the payload.
func (h *FeedbackHandlers) Create(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errNoSession})
		return
	}

	var req model.CreateFeedbackRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	fb, err := h.Svc.Create(r.Context(), *session, req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, fb)
}

// GetByID handles HTTP requests to fetch a single feedback.
func (h *FeedbackHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
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

	fb, err := h.Svc.GetByID(r.Context(), *session, id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, fb)
}

// List handles HTTP requests to list feedbacks. Supports author_id and
// recipient_id filters; collaborators only ever see their own rows.
func (h *FeedbackHandlers) List(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errNoSession})
		return
	}

	opts := model.FeedbackListOptions{
		AuthorID:    parseInt64Query(r, "author_id"),
		RecipientID: parseInt64Query(r, "recipient_id"),
	}
	opts.Limit, opts.Offset = ParseLimitOffset(r, 50, maxFeedbackListLimit)

	feedbacks, err := h.Svc.List(r.Context(), *session, opts)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"feedbacks": feedbacks,
		"limit":     opts.Limit,
		"offset":    opts.Offset,
	})
}
