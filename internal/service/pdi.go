package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/progresshq/progress-api/internal/data"
	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/domain/model"
	apperrors "github.com/progresshq/progress-api/internal/errors"
	"github.com/progresshq/progress-api/internal/ports"
)

// PDIServiceOptions groups dependencies for PDIService.
type PDIServiceOptions struct {
	PDIs  ports.PDIRepository
	Users ports.UserRepository
	Now   func() time.Time
}

// PDIService orchestrates development plan CRUD with lifecycle rules
// and role-scoped visibility.
type PDIService struct {
	pdis  ports.PDIRepository
	users ports.UserRepository
	now   func() time.Time
}

// NewPDIService constructs a new PDIService.
func NewPDIService(opts PDIServiceOptions) *PDIService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &PDIService{pdis: opts.PDIs, users: opts.Users, now: now}
}

// Create validates the request and persists a new plan in planned
// status. Collaborators may only open plans for themselves; a manager
// creating a plan becomes its manager.
func (s *PDIService) Create(ctx context.Context, sess domainauth.Session, req model.CreatePDIRequest) (*model.PDI, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if !canManagePDIs(sess) && req.CollaboratorID != sess.UserID {
		return nil, apperrors.Forbidden("you can only create a development plan for yourself")
	}

	if _, err := s.users.GetByID(ctx, req.CollaboratorID); err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, apperrors.ValidationField("collaborator_id", "collaborator does not exist")
		}
		return nil, fmt.Errorf("look up collaborator: %w", err)
	}

	pdi := &model.PDI{
		Title:          req.Title,
		Description:    req.Description,
		CollaboratorID: req.CollaboratorID,
		Status:         model.PDIStatusPlanned,
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		Goals:          goalsFromRequests(req.Goals),
	}
	if canManagePDIs(sess) && req.CollaboratorID != sess.UserID {
		id := sess.UserID
		pdi.ManagerID = &id
	}

	if err := s.pdis.Create(ctx, pdi); err != nil {
		return nil, fmt.Errorf("create development plan: %w", err)
	}
	s.derive(pdi)
	return pdi, nil
}

// GetByID retrieves a plan. Collaborators only see their own plans.
// The returned status is the effective one, with overdue derived from
// the due date.
func (s *PDIService) GetByID(ctx context.Context, sess domainauth.Session, id int64) (*model.PDI, error) {
	pdi, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManagePDIs(sess) && pdi.CollaboratorID != sess.UserID {
		return nil, apperrors.Forbidden("development plan is not visible to you")
	}
	s.derive(pdi)
	return pdi, nil
}

// List returns plans matching the options. Collaborators are silently
// restricted to their own plans; the status filter matches the
// effective status.
func (s *PDIService) List(ctx context.Context, sess domainauth.Session, opts model.PDIListOptions) ([]model.PDI, error) {
	opts.Limit, opts.Offset = normalizePage(opts.Limit, opts.Offset)
	if !canManagePDIs(sess) {
		id := sess.UserID
		opts.CollaboratorID = &id
	}

	// Overdue is derived, not stored, so it cannot be pushed into SQL.
	// Filter after derivation instead.
	statusFilter := opts.Status
	opts.Status = nil

	pdis, err := s.pdis.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := pdis[:0]
	for i := range pdis {
		pdis[i].Status = pdis[i].EffectiveStatus(now)
		if statusFilter != nil && pdis[i].Status != *statusFilter {
			continue
		}
		out = append(out, pdis[i])
	}
	return out, nil
}

// Update applies a partial update. Status changes must follow the
// lifecycle rules evaluated against the effective status; completing a
// plan stamps its completion date.
func (s *PDIService) Update(ctx context.Context, sess domainauth.Session, id int64, req model.UpdatePDIRequest) (*model.PDI, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	pdi, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManagePDIs(sess) && pdi.CollaboratorID != sess.UserID {
		return nil, apperrors.Forbidden("development plan is not visible to you")
	}

	now := s.now()
	if req.Status != nil {
		next, _ := model.ParsePDIStatus(*req.Status)
		current := pdi.EffectiveStatus(now)
		if !current.CanTransition(next) {
			return nil, apperrors.ValidationField("status",
				fmt.Sprintf("cannot move a %s plan to %s", current, next))
		}
		pdi.Status = next
		if next == model.PDIStatusCompleted {
			pdi.CompletedDate = &now
		}
	}
	if req.Title != nil {
		pdi.Title = *req.Title
	}
	if req.Description != nil {
		pdi.Description = req.Description
	}
	if req.ManagerID != nil {
		if !canManagePDIs(sess) {
			return nil, apperrors.Forbidden("only managers can reassign a plan")
		}
		pdi.ManagerID = req.ManagerID
	}
	if req.StartDate != nil {
		pdi.StartDate = req.StartDate
	}
	if req.DueDate != nil {
		pdi.DueDate = req.DueDate
	}
	if pdi.StartDate != nil && pdi.DueDate != nil && pdi.DueDate.Before(*pdi.StartDate) {
		return nil, apperrors.ValidationField("due_date", "due_date cannot precede start_date")
	}
	if req.Goals != nil {
		pdi.Goals = goalsFromRequests(req.Goals)
	} else {
		pdi.Goals = nil // repository keeps the existing goals
	}

	if updateErr := s.pdis.Update(ctx, pdi); updateErr != nil {
		if errors.Is(updateErr, data.ErrPDINotFound) {
			return nil, apperrors.NotFound("Development Plan not found")
		}
		return nil, fmt.Errorf("update development plan: %w", updateErr)
	}
	s.derive(pdi)
	return pdi, nil
}

// Delete removes a plan. Only managers and admins may delete.
func (s *PDIService) Delete(ctx context.Context, sess domainauth.Session, id int64) error {
	if !canManagePDIs(sess) {
		return apperrors.Forbidden("only managers can delete a development plan")
	}
	if err := s.pdis.Delete(ctx, id); err != nil {
		if errors.Is(err, data.ErrPDINotFound) {
			return apperrors.NotFound("Development Plan not found")
		}
		return fmt.Errorf("delete development plan: %w", err)
	}
	return nil
}

func (s *PDIService) load(ctx context.Context, id int64) (*model.PDI, error) {
	pdi, err := s.pdis.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrPDINotFound) {
			return nil, apperrors.NotFound("Development Plan not found")
		}
		return nil, fmt.Errorf("get development plan: %w", err)
	}
	return pdi, nil
}

func (s *PDIService) derive(pdi *model.PDI) {
	pdi.Status = pdi.EffectiveStatus(s.now())
}

func canManagePDIs(sess domainauth.Session) bool {
	return sess.HasAny(domainauth.RoleAdmin, domainauth.RoleManager)
}

func goalsFromRequests(reqs []model.CreatePDIGoalRequest) []model.PDIGoal {
	if reqs == nil {
		return nil
	}
	goals := make([]model.PDIGoal, 0, len(reqs))
	for _, r := range reqs {
		goals = append(goals, model.PDIGoal{
			Description: r.Description,
			Actions:     r.Actions,
			Resources:   r.Resources,
			Deadline:    r.Deadline,
		})
	}
	return goals
}
