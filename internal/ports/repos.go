package ports

import (
	"context"

	"github.com/progresshq/progress-api/internal/domain/model"
)

// UserRepository persists users and their role assignments.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
}

// FeedbackRepository persists feedbacks and their insight annotations.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *model.Feedback) error
	GetByID(ctx context.Context, id int64) (*model.Feedback, error)
	List(ctx context.Context, opts model.FeedbackListOptions) ([]model.Feedback, error)
}

// PDIRepository persists development plans with their goals.
type PDIRepository interface {
	Create(ctx context.Context, pdi *model.PDI) error
	GetByID(ctx context.Context, id int64) (*model.PDI, error)
	List(ctx context.Context, opts model.PDIListOptions) ([]model.PDI, error)
	Update(ctx context.Context, pdi *model.PDI) error
	Delete(ctx context.Context, id int64) error
}

// DashboardRepository serves the aggregate counts for the admin view.
type DashboardRepository interface {
	UserCounts(ctx context.Context) (total, active int64, byRole map[string]int64, err error)
	PDICounts(ctx context.Context) (total int64, byStatus map[string]int64, err error)
	FeedbackTotal(ctx context.Context) (int64, error)
	RecentFeedbacks(ctx context.Context, limit int) ([]model.Feedback, error)
}
