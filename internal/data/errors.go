package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// User repository sentinels.
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")

	// PDI repository sentinels.
	ErrPDINotFound = errors.New("development plan not found")

	// Feedback repository sentinels.
	ErrFeedbackNotFound = errors.New("feedback not found")
)
