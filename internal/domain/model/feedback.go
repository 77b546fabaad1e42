package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxFeedbackTextLen = 4000

// Sentiment is the insight classification of a feedback text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid reports whether the sentiment is a supported value.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	default:
		return false
	}
}

// FeedbackInsights holds the derived annotations produced when a
// feedback is created. All fields are optional; analysis never blocks
// feedback creation.
type FeedbackInsights struct {
	Sentiment          *Sentiment `json:"sentiment,omitempty"           db:"sentiment"`
	DifficultyCategory *string    `json:"difficulty_category,omitempty" db:"difficulty_category"`
	SuggestedGoal      *string    `json:"suggested_goal,omitempty"      db:"suggested_goal"`
	RecommendedCourse  *string    `json:"recommended_course,omitempty"  db:"recommended_course"`
}

// Feedback is a development feedback from one user to another.
type Feedback struct {
	ID                int64     `json:"id"                           db:"id"`
	AuthorID          int64     `json:"author_id"                    db:"author_id"`
	RecipientID       int64     `json:"recipient_id"                 db:"recipient_id"`
	Text              string    `json:"text"                         db:"text"`
	Skills            *string   `json:"skills,omitempty"             db:"skills"`
	Difficulties      *string   `json:"difficulties,omitempty"       db:"difficulties"`
	LearningInterests *string   `json:"learning_interests,omitempty" db:"learning_interests"`
	Insights          FeedbackInsights `json:"insights"`
	SentAt            time.Time `json:"sent_at"                      db:"sent_at"`
}

// CreateFeedbackRequest represents parameters to create a Feedback.
// The author is always the session user; it is never client-supplied.
type CreateFeedbackRequest struct {
	RecipientID       int64   `json:"recipient_id"`
	Text              string  `json:"text"`
	Skills            *string `json:"skills,omitempty"`
	Difficulties      *string `json:"difficulties,omitempty"`
	LearningInterests *string `json:"learning_interests,omitempty"`
}

// Validate validates CreateFeedbackRequest.
func (r *CreateFeedbackRequest) Validate() error {
	if r.RecipientID <= 0 {
		return errors.New("recipient_id is required")
	}
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return errors.New("text is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Text) > maxFeedbackTextLen {
		return errors.New("text cannot exceed 4000 characters")
	}
	return nil
}

// FeedbackListOptions controls filtering for listing feedbacks.
// VisibleToUserID restricts the result to rows the user wrote or
// received; it is set by the service for collaborators.
type FeedbackListOptions struct {
	Limit           int
	Offset          int
	AuthorID        *int64
	RecipientID     *int64
	VisibleToUserID *int64
}
