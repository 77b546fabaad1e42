// Package mocks provides mock implementations for testing the repository ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockUserRepository(ctrl)
//	mockRepo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Return(user, nil)
package mocks

// Generate mock for UserRepository interface from internal/ports.
// This creates MockUserRepository with methods for all UserRepository interface methods:
// Create, GetByID, GetByEmail, List, Update, Delete
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=user_repository_mock.go github.com/progresshq/progress-api/internal/ports UserRepository

// Generate mock for FeedbackRepository interface from internal/ports.
// This creates MockFeedbackRepository with methods for all FeedbackRepository interface methods:
// Create, GetByID, List
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=feedback_repository_mock.go github.com/progresshq/progress-api/internal/ports FeedbackRepository

// Generate mock for PDIRepository interface from internal/ports.
// This creates MockPDIRepository with methods for all PDIRepository interface methods:
// Create, GetByID, List, Update, Delete
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=pdi_repository_mock.go github.com/progresshq/progress-api/internal/ports PDIRepository

// Generate mock for DashboardRepository interface from internal/ports.
// This creates MockDashboardRepository with methods for all DashboardRepository interface methods:
// UserCounts, PDICounts, FeedbackTotal, RecentFeedbacks
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=dashboard_repository_mock.go github.com/progresshq/progress-api/internal/ports DashboardRepository
