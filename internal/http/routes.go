// Package httpx provides the HTTP API surface of the development
// tracking service.
package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth      AuthServiceInterface
	Users     *service.UserService
	Feedbacks *service.FeedbackService
	PDIs      *service.PDIService
	Dashboard *service.DashboardService
	Logger    *slog.Logger
}

// NewRouter creates and configures the HTTP router with logging and
// panic recovery applied to every route.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	registerAuthRoutes(mux, &AuthHandlers{Svc: services.Auth, Logger: logger})
	registerUserRoutes(mux, &UserHandlers{Svc: services.Users}, services.Auth)
	registerFeedbackRoutes(mux, &FeedbackHandlers{Svc: services.Feedbacks}, services.Auth)
	registerPDIRoutes(mux, &PDIHandlers{Svc: services.PDIs}, services.Auth)
	registerDashboardRoutes(mux, &DashboardHandlers{Svc: services.Dashboard}, services.Auth)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return Logging(logger)(Recover(logger)(mux))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/status", h.Status)
}

// registerUserRoutes wires the admin-only user management endpoints.
func registerUserRoutes(mux *http.ServeMux, h *UserHandlers, auth AuthServiceInterface) {
	adminOnly := RequireAnyRole(auth, domainauth.RoleAdmin)

	mux.Handle("POST /api/users", adminOnly(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/users", adminOnly(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/users/{id}", adminOnly(http.HandlerFunc(h.GetByID)))
	mux.Handle("PUT /api/users/{id}", adminOnly(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/users/{id}", adminOnly(http.HandlerFunc(h.Delete)))
}

// registerFeedbackRoutes wires feedback endpoints. Any authenticated
// user may write and read; visibility is narrowed in the service.
func registerFeedbackRoutes(mux *http.ServeMux, h *FeedbackHandlers, auth AuthServiceInterface) {
	authed := RequireAuth(auth)

	mux.Handle("POST /api/feedbacks", authed(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/feedbacks", authed(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/feedbacks/{id}", authed(http.HandlerFunc(h.GetByID)))
}

// registerPDIRoutes wires development plan endpoints. Deletion is
// restricted to managers and admins; the service enforces the rest.
func registerPDIRoutes(mux *http.ServeMux, h *PDIHandlers, auth AuthServiceInterface) {
	authed := RequireAuth(auth)
	managerOnly := RequireAnyRole(auth, domainauth.RoleAdmin, domainauth.RoleManager)

	mux.Handle("POST /api/pdis", authed(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/pdis", authed(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/pdis/{id}", authed(http.HandlerFunc(h.GetByID)))
	mux.Handle("PUT /api/pdis/{id}", authed(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/pdis/{id}", managerOnly(http.HandlerFunc(h.Delete)))
}

func registerDashboardRoutes(mux *http.ServeMux, h *DashboardHandlers, auth AuthServiceInterface) {
	adminOnly := RequireAnyRole(auth, domainauth.RoleAdmin)

	mux.Handle("GET /api/dashboard/admin", adminOnly(http.HandlerFunc(h.AdminOverview)))
}
