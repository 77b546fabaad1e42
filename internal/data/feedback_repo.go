package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/progresshq/progress-api/internal/data/pgxutil"
	"github.com/progresshq/progress-api/internal/domain/model"
)

// FeedbackRepo provides database operations for feedbacks.
type FeedbackRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewFeedbackRepo creates a new FeedbackRepo with real time provider.
func NewFeedbackRepo(db *sql.DB) *FeedbackRepo {
	return &FeedbackRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewFeedbackRepoWithTimeProvider creates a new FeedbackRepo with a custom time provider.
func NewFeedbackRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *FeedbackRepo {
	return &FeedbackRepo{DB: db, timeProvider: tp}
}

// feedbackRow mirrors the feedbacks table; insight columns are flattened
// for RowToStructByName and folded into model.Feedback afterwards.
type feedbackRow struct {
	ID                 int64            `db:"id"`
	AuthorID           int64            `db:"author_id"`
	RecipientID        int64            `db:"recipient_id"`
	Text               string           `db:"text"`
	Skills             *string          `db:"skills"`
	Difficulties       *string          `db:"difficulties"`
	LearningInterests  *string          `db:"learning_interests"`
	Sentiment          *model.Sentiment `db:"sentiment"`
	DifficultyCategory *string          `db:"difficulty_category"`
	SuggestedGoal      *string          `db:"suggested_goal"`
	RecommendedCourse  *string          `db:"recommended_course"`
	SentAt             sql.NullTime     `db:"sent_at"`
}

func (row feedbackRow) toModel() model.Feedback {
	fb := model.Feedback{
		ID:                row.ID,
		AuthorID:          row.AuthorID,
		RecipientID:       row.RecipientID,
		Text:              row.Text,
		Skills:            row.Skills,
		Difficulties:      row.Difficulties,
		LearningInterests: row.LearningInterests,
		Insights: model.FeedbackInsights{
			Sentiment:          row.Sentiment,
			DifficultyCategory: row.DifficultyCategory,
			SuggestedGoal:      row.SuggestedGoal,
			RecommendedCourse:  row.RecommendedCourse,
		},
	}
	if row.SentAt.Valid {
		fb.SentAt = row.SentAt.Time
	}
	return fb
}

const feedbackColumns = `id, author_id, recipient_id, text, skills, difficulties, learning_interests,
	sentiment, difficulty_category, suggested_goal, recommended_course, sent_at`

// Create inserts a new feedback with its insight annotations.
func (r *FeedbackRepo) Create(ctx context.Context, fb *model.Feedback) error {
	if fb == nil {
		return errors.New("feedback is required")
	}

	sentAt := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO feedbacks (
				author_id, recipient_id, text, skills, difficulties, learning_interests,
				sentiment, difficulty_category, suggested_goal, recommended_course, sent_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING `+feedbackColumns,
			fb.AuthorID, fb.RecipientID, fb.Text, fb.Skills, fb.Difficulties, fb.LearningInterests,
			fb.Insights.Sentiment, fb.Insights.DifficultyCategory,
			fb.Insights.SuggestedGoal, fb.Insights.RecommendedCourse, sentAt,
		)
		if err != nil {
			return err
		}
		row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[feedbackRow])
		if err != nil {
			return err
		}
		*fb = row.toModel()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// GetByID retrieves a feedback by ID.
func (r *FeedbackRepo) GetByID(ctx context.Context, id int64) (*model.Feedback, error) {
	var fb model.Feedback
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+feedbackColumns+` FROM feedbacks WHERE id = $1`, id)
		if err != nil {
			return err
		}
		row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[feedbackRow])
		if err != nil {
			return err
		}
		fb = row.toModel()
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return &fb, nil
}

// List retrieves feedbacks newest first with optional filters.
func (r *FeedbackRepo) List(ctx context.Context, opts model.FeedbackListOptions) ([]model.Feedback, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	where, args := buildFeedbackFilters(opts)
	args = append(args, limit, offset)
	query := `SELECT ` + feedbackColumns + ` FROM feedbacks` + where +
		` ORDER BY sent_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) +
		` OFFSET $` + strconv.Itoa(len(args))

	var out []model.Feedback
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[feedbackRow])
		if err != nil {
			return err
		}
		out = make([]model.Feedback, len(collected))
		for i, row := range collected {
			out[i] = row.toModel()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list feedbacks: %w", err)
	}
	return out, nil
}

// buildFeedbackFilters builds the WHERE clause and args for List.
func buildFeedbackFilters(opts model.FeedbackListOptions) (string, []any) {
	var conds []string
	var args []any
	nextIdx := func() int { return len(args) + 1 }

	if opts.AuthorID != nil {
		conds = append(conds, "author_id = $"+strconv.Itoa(nextIdx()))
		args = append(args, *opts.AuthorID)
	}
	if opts.RecipientID != nil {
		conds = append(conds, "recipient_id = $"+strconv.Itoa(nextIdx()))
		args = append(args, *opts.RecipientID)
	}
	if opts.VisibleToUserID != nil {
		idx := strconv.Itoa(nextIdx())
		conds = append(conds, "(author_id = $"+idx+" OR recipient_id = $"+idx+")")
		args = append(args, *opts.VisibleToUserID)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
