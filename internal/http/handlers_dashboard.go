package httpx

import (
	"net/http"

	"github.com/progresshq/progress-api/internal/service"
)

// DashboardHandlers provides HTTP handlers for the admin dashboard.
type DashboardHandlers struct {
	Svc *service.DashboardService
}

// AdminOverview returns the aggregate counts for the admin view.
// GET /api/dashboard/admin.
func (h *DashboardHandlers) AdminOverview(w http.ResponseWriter, r *http.Request) {
	dash, err := h.Svc.AdminOverview(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, dash)
}
