package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/progresshq/progress-api/internal/domain/model"
	"github.com/progresshq/progress-api/internal/ports"
)

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Repo ports.DashboardRepository
}

// DashboardService assembles the admin overview from aggregate queries.
type DashboardService struct {
	repo ports.DashboardRepository
}

// NewDashboardService constructs a new DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	return &DashboardService{repo: opts.Repo}
}

const recentFeedbackLimit = 5

// AdminOverview runs the aggregate queries concurrently and folds the
// results into a single snapshot.
func (s *DashboardService) AdminOverview(ctx context.Context) (*model.AdminDashboard, error) {
	var dash model.AdminDashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, active, byRole, err := s.repo.UserCounts(gctx)
		if err != nil {
			return fmt.Errorf("user counts: %w", err)
		}
		dash.TotalUsers, dash.ActiveUsers, dash.UsersByRole = total, active, byRole
		return nil
	})
	g.Go(func() error {
		total, byStatus, err := s.repo.PDICounts(gctx)
		if err != nil {
			return fmt.Errorf("pdi counts: %w", err)
		}
		dash.TotalPDIs, dash.PDIsByStatus = total, byStatus
		return nil
	})
	g.Go(func() error {
		total, err := s.repo.FeedbackTotal(gctx)
		if err != nil {
			return fmt.Errorf("feedback total: %w", err)
		}
		dash.TotalFeedbacks = total
		return nil
	})
	g.Go(func() error {
		recent, err := s.repo.RecentFeedbacks(gctx, recentFeedbackLimit)
		if err != nil {
			return fmt.Errorf("recent feedbacks: %w", err)
		}
		dash.RecentFeedbacks = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dash, nil
}
