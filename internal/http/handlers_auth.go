package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	Login(ctx context.Context, creds service.Credentials) (*service.LoginResult, error)
	GetSession(ctx context.Context, token string) (*domainauth.Session, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc    AuthServiceInterface
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// sessionUserPayload shapes the user object returned on login and status.
func sessionUserPayload(s *domainauth.Session) map[string]any {
	return map[string]any{
		"id":    s.UserID,
		"name":  s.Name,
		"email": s.Email,
		"roles": domainauth.WireNames(s.Roles),
	}
}

// Login authenticates credentials and returns a bearer token.
// POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if !DecodeJSON(w, r, &creds) {
		return
	}

	result, err := h.Svc.Login(r.Context(), creds)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"token":      result.Token,
		"user":       sessionUserPayload(&result.Session),
		"expires_at": result.Session.ExpiresAt,
	})
}

// Logout revokes the session behind the bearer token. Always succeeds
// from the client's point of view.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := h.Svc.Logout(r.Context(), token); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Status reports whether the bearer token maps to a live session.
// GET /api/auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), token)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          sessionUserPayload(session),
		"expires_at":    session.ExpiresAt,
	})
}
