package model

// AdminDashboard is the aggregate returned by GET /api/dashboard/admin.
// Count maps are keyed by wire role names and PDI status values so the
// payload is self-describing for the frontend.
type AdminDashboard struct {
	TotalUsers      int64            `json:"total_users"`
	ActiveUsers     int64            `json:"active_users"`
	UsersByRole     map[string]int64 `json:"users_by_role"`
	TotalPDIs       int64            `json:"total_pdis"`
	PDIsByStatus    map[string]int64 `json:"pdis_by_status"`
	TotalFeedbacks  int64            `json:"total_feedbacks"`
	RecentFeedbacks []Feedback       `json:"recent_feedbacks"`
}
