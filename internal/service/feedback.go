package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/progresshq/progress-api/internal/data"
	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/domain/model"
	apperrors "github.com/progresshq/progress-api/internal/errors"
	"github.com/progresshq/progress-api/internal/ports"
)

// FeedbackServiceOptions groups dependencies for FeedbackService.
type FeedbackServiceOptions struct {
	Feedbacks ports.FeedbackRepository
	Users     ports.UserRepository
	Analyzer  ports.InsightAnalyzer
}

// FeedbackService orchestrates feedback creation with insight analysis
// and role-scoped visibility.
type FeedbackService struct {
	feedbacks ports.FeedbackRepository
	users     ports.UserRepository
	analyzer  ports.InsightAnalyzer
}

// NewFeedbackService constructs a new FeedbackService.
func NewFeedbackService(opts FeedbackServiceOptions) *FeedbackService {
	return &FeedbackService{
		feedbacks: opts.Feedbacks,
		users:     opts.Users,
		analyzer:  opts.Analyzer,
	}
}

// Create records a feedback authored by the session user. The insight
// annotations are derived at write time and stored with the row.
func (s *FeedbackService) Create(ctx context.Context, sess domainauth.Session, req model.CreateFeedbackRequest) (*model.Feedback, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if req.RecipientID == sess.UserID {
		return nil, apperrors.ValidationField("recipient_id", "cannot send feedback to yourself")
	}

	if _, err := s.users.GetByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, apperrors.ValidationField("recipient_id", "recipient does not exist")
		}
		return nil, fmt.Errorf("look up recipient: %w", err)
	}

	fb := &model.Feedback{
		AuthorID:          sess.UserID,
		RecipientID:       req.RecipientID,
		Text:              req.Text,
		Skills:            req.Skills,
		Difficulties:      req.Difficulties,
		LearningInterests: req.LearningInterests,
		Insights:          s.analyzer.Analyze(ctx, req),
	}
	if err := s.feedbacks.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return fb, nil
}

// GetByID retrieves a feedback, enforcing visibility: collaborators only
// see feedbacks they wrote or received.
func (s *FeedbackService) GetByID(ctx context.Context, sess domainauth.Session, id int64) (*model.Feedback, error) {
	fb, err := s.feedbacks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrFeedbackNotFound) {
			return nil, apperrors.NotFound("Feedback not found")
		}
		return nil, fmt.Errorf("get feedback: %w", err)
	}
	if !canSeeAllFeedbacks(sess) && fb.AuthorID != sess.UserID && fb.RecipientID != sess.UserID {
		return nil, apperrors.Forbidden("feedback is not visible to you")
	}
	return fb, nil
}

// List returns feedbacks matching the options. For collaborators the
// result is silently restricted to rows they wrote or received.
func (s *FeedbackService) List(ctx context.Context, sess domainauth.Session, opts model.FeedbackListOptions) ([]model.Feedback, error) {
	opts.Limit, opts.Offset = normalizePage(opts.Limit, opts.Offset)
	if !canSeeAllFeedbacks(sess) {
		id := sess.UserID
		opts.VisibleToUserID = &id
	}
	return s.feedbacks.List(ctx, opts)
}

func canSeeAllFeedbacks(sess domainauth.Session) bool {
	return sess.HasAny(domainauth.RoleAdmin, domainauth.RoleManager)
}
