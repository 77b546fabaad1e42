package ports

import (
	"context"

	"github.com/progresshq/progress-api/internal/domain/model"
)

// InsightAnalyzer derives annotations from feedback content. Analysis is
// best-effort; implementations return zero-value insights rather than
// failing feedback creation.
type InsightAnalyzer interface {
	Analyze(ctx context.Context, req model.CreateFeedbackRequest) model.FeedbackInsights
	SuggestGoals(ctx context.Context, objective string) []model.CreatePDIGoalRequest
}
