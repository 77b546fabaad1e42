package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxPDITitleLen        = 255
	maxPDIDescriptionLen  = 4000
	maxGoalDescriptionLen = 2000
)

// PDIStatus is the lifecycle status of an individual development plan.
type PDIStatus string

const (
	PDIStatusPlanned    PDIStatus = "planned"
	PDIStatusInProgress PDIStatus = "in_progress"
	PDIStatusCompleted  PDIStatus = "completed"
	PDIStatusCanceled   PDIStatus = "canceled"
	PDIStatusOverdue    PDIStatus = "overdue"
)

// Valid reports whether the status is one of the supported values.
func (s PDIStatus) Valid() bool {
	switch s {
	case PDIStatusPlanned, PDIStatusInProgress, PDIStatusCompleted, PDIStatusCanceled, PDIStatusOverdue:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status permits no further transitions.
func (s PDIStatus) Terminal() bool {
	return s == PDIStatusCompleted || s == PDIStatusCanceled
}

// ParsePDIStatus normalizes a status string and reports whether it is supported.
func ParsePDIStatus(value string) (PDIStatus, bool) {
	s := PDIStatus(strings.ToLower(strings.TrimSpace(value)))
	if s.Valid() {
		return s, true
	}
	return "", false
}

// CanTransition reports whether a plan may move from s to next.
// Terminal statuses are frozen; overdue is derived but may still be
// completed or canceled.
func (s PDIStatus) CanTransition(next PDIStatus) bool {
	if !next.Valid() || s.Terminal() {
		return false
	}
	if s == next {
		return true
	}
	switch s {
	case PDIStatusPlanned:
		return next == PDIStatusInProgress || next == PDIStatusCanceled
	case PDIStatusInProgress, PDIStatusOverdue:
		return next == PDIStatusCompleted || next == PDIStatusCanceled || next == PDIStatusInProgress
	default:
		return false
	}
}

// PDIGoal is a single goal inside a development plan.
type PDIGoal struct {
	ID          int64      `json:"id"                 db:"id"`
	PDIID       int64      `json:"pdi_id"             db:"pdi_id"`
	Description string     `json:"description"        db:"description"`
	Actions     *string    `json:"actions,omitempty"  db:"actions"`
	Resources   *string    `json:"resources,omitempty" db:"resources"`
	Deadline    *time.Time `json:"deadline,omitempty" db:"deadline"`
	Done        bool       `json:"done"               db:"done"`
	Feedback    *string    `json:"feedback,omitempty" db:"feedback"`
}

// PDI is an individual development plan owned by a collaborator and
// supervised by a manager.
type PDI struct {
	ID             int64      `json:"id"                       db:"id"`
	Title          string     `json:"title"                    db:"title"`
	Description    *string    `json:"description,omitempty"    db:"description"`
	CollaboratorID int64      `json:"collaborator_id"          db:"collaborator_id"`
	ManagerID      *int64     `json:"manager_id,omitempty"     db:"manager_id"`
	Status         PDIStatus  `json:"status"                   db:"status"`
	StartDate      *time.Time `json:"start_date,omitempty"     db:"start_date"`
	DueDate        *time.Time `json:"due_date,omitempty"       db:"due_date"`
	CompletedDate  *time.Time `json:"completed_date,omitempty" db:"completed_date"`
	Goals          []PDIGoal  `json:"goals"                    db:"-"`
	CreatedAt      time.Time  `json:"created_at"               db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"               db:"updated_at"`
}

// EffectiveStatus derives overdue from the due date for active plans.
// Stored status is never rewritten; derivation happens on read.
func (p *PDI) EffectiveStatus(now time.Time) PDIStatus {
	if p.Status.Terminal() {
		return p.Status
	}
	if p.DueDate != nil && p.DueDate.Before(now) {
		return PDIStatusOverdue
	}
	return p.Status
}

// CreatePDIGoalRequest is one goal within a create/update request.
type CreatePDIGoalRequest struct {
	Description string     `json:"description"`
	Actions     *string    `json:"actions,omitempty"`
	Resources   *string    `json:"resources,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// Validate validates CreatePDIGoalRequest.
func (r *CreatePDIGoalRequest) Validate() error {
	r.Description = strings.TrimSpace(r.Description)
	if r.Description == "" {
		return errors.New("goal description is required")
	}
	if utf8.RuneCountInString(r.Description) > maxGoalDescriptionLen {
		return errors.New("goal description cannot exceed 2000 characters")
	}
	return nil
}

// CreatePDIRequest represents parameters to create a PDI.
type CreatePDIRequest struct {
	Title          string                 `json:"title"`
	Description    *string                `json:"description,omitempty"`
	CollaboratorID int64                  `json:"collaborator_id"`
	StartDate      *time.Time             `json:"start_date,omitempty"`
	DueDate        *time.Time             `json:"due_date,omitempty"`
	Goals          []CreatePDIGoalRequest `json:"goals,omitempty"`
}

// Validate validates CreatePDIRequest.
func (r *CreatePDIRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Title) > maxPDITitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if r.Description != nil && utf8.RuneCountInString(*r.Description) > maxPDIDescriptionLen {
		return errors.New("description cannot exceed 4000 characters")
	}
	if r.CollaboratorID <= 0 {
		return errors.New("collaborator_id is required")
	}
	if r.StartDate != nil && r.DueDate != nil && r.DueDate.Before(*r.StartDate) {
		return errors.New("due_date cannot precede start_date")
	}
	for i := range r.Goals {
		if err := r.Goals[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePDIRequest represents parameters to update a PDI.
// A non-nil Goals slice replaces the goal list wholesale.
type UpdatePDIRequest struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	ManagerID   *int64                 `json:"manager_id,omitempty"`
	Status      *string                `json:"status,omitempty"`
	StartDate   *time.Time             `json:"start_date,omitempty"`
	DueDate     *time.Time             `json:"due_date,omitempty"`
	Goals       []CreatePDIGoalRequest `json:"goals,omitempty"`
}

// HasUpdates reports whether any field is set in UpdatePDIRequest.
func (r *UpdatePDIRequest) HasUpdates() bool {
	return r.Title != nil || r.Description != nil || r.ManagerID != nil || r.Status != nil ||
		r.StartDate != nil ||
		r.DueDate != nil ||
		r.Goals != nil
}

// Validate validates UpdatePDIRequest.
func (r *UpdatePDIRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		if t == "" {
			return errors.New("title cannot be empty")
		}
		if utf8.RuneCountInString(t) > maxPDITitleLen {
			return errors.New("title cannot exceed 255 characters")
		}
		*r.Title = t
	}
	if r.Description != nil && utf8.RuneCountInString(*r.Description) > maxPDIDescriptionLen {
		return errors.New("description cannot exceed 4000 characters")
	}
	if r.Status != nil {
		s, ok := ParsePDIStatus(*r.Status)
		if !ok {
			return errors.New("invalid status")
		}
		*r.Status = string(s)
	}
	for i := range r.Goals {
		if err := r.Goals[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PDIListOptions controls filtering for listing plans.
type PDIListOptions struct {
	Limit          int
	Offset         int
	CollaboratorID *int64
	ManagerID      *int64
	Status         *PDIStatus
}
