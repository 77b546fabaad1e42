package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/progresshq/progress-api/internal/data"
	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/domain/model"
)

// Hand-written stubs with overridable behavior per test. Defaults are
// permissive so tests only set the functions they care about.

type stubUserRepo struct {
	createFunc     func(context.Context, *model.User) error
	getByIDFunc    func(context.Context, int64) (*model.User, error)
	getByEmailFunc func(context.Context, string) (*model.User, error)
	listFunc       func(context.Context, int, int) ([]model.User, error)
	updateFunc     func(context.Context, *model.User) error
	deleteFunc     func(context.Context, int64) error
}

func (s *stubUserRepo) Create(ctx context.Context, u *model.User) error {
	if s.createFunc != nil {
		return s.createFunc(ctx, u)
	}
	u.ID = 1
	return nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.getByIDFunc != nil {
		return s.getByIDFunc(ctx, id)
	}
	return nil, data.ErrUserNotFound
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.getByEmailFunc != nil {
		return s.getByEmailFunc(ctx, email)
	}
	return nil, data.ErrUserNotFound
}

func (s *stubUserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (s *stubUserRepo) Update(ctx context.Context, u *model.User) error {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, u)
	}
	return nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id int64) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, id)
	}
	return nil
}

// memSessionStore keeps sessions in a map; enough for single-goroutine tests.
type memSessionStore struct {
	sessions map[string]domainauth.Session
	saveErr  error
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *memSessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *memSessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, errors.New("session not found")
	}
	return sess, nil
}

func (m *memSessionStore) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

// stubTokenIssuer issues reversible tokens of the form "tok:<sessionID>".
type stubTokenIssuer struct {
	issueErr  error
	verifyErr error
}

func (s *stubTokenIssuer) Issue(sessionID string, _ time.Time) (string, error) {
	if s.issueErr != nil {
		return "", s.issueErr
	}
	return "tok:" + sessionID, nil
}

func (s *stubTokenIssuer) Verify(token string) (string, error) {
	if s.verifyErr != nil {
		return "", s.verifyErr
	}
	sessionID, ok := strings.CutPrefix(token, "tok:")
	if !ok {
		return "", errors.New("malformed token")
	}
	return sessionID, nil
}

type stubPDIRepo struct {
	createFunc  func(context.Context, *model.PDI) error
	getByIDFunc func(context.Context, int64) (*model.PDI, error)
	listFunc    func(context.Context, model.PDIListOptions) ([]model.PDI, error)
	updateFunc  func(context.Context, *model.PDI) error
	deleteFunc  func(context.Context, int64) error
}

func (s *stubPDIRepo) Create(ctx context.Context, p *model.PDI) error {
	if s.createFunc != nil {
		return s.createFunc(ctx, p)
	}
	p.ID = 1
	return nil
}

func (s *stubPDIRepo) GetByID(ctx context.Context, id int64) (*model.PDI, error) {
	if s.getByIDFunc != nil {
		return s.getByIDFunc(ctx, id)
	}
	return nil, data.ErrPDINotFound
}

func (s *stubPDIRepo) List(ctx context.Context, opts model.PDIListOptions) ([]model.PDI, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, opts)
	}
	return nil, nil
}

func (s *stubPDIRepo) Update(ctx context.Context, p *model.PDI) error {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, p)
	}
	return nil
}

func (s *stubPDIRepo) Delete(ctx context.Context, id int64) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, id)
	}
	return nil
}

type stubFeedbackRepo struct {
	createFunc  func(context.Context, *model.Feedback) error
	getByIDFunc func(context.Context, int64) (*model.Feedback, error)
	listFunc    func(context.Context, model.FeedbackListOptions) ([]model.Feedback, error)
}

func (s *stubFeedbackRepo) Create(ctx context.Context, fb *model.Feedback) error {
	if s.createFunc != nil {
		return s.createFunc(ctx, fb)
	}
	fb.ID = 1
	return nil
}

func (s *stubFeedbackRepo) GetByID(ctx context.Context, id int64) (*model.Feedback, error) {
	if s.getByIDFunc != nil {
		return s.getByIDFunc(ctx, id)
	}
	return nil, data.ErrFeedbackNotFound
}

func (s *stubFeedbackRepo) List(ctx context.Context, opts model.FeedbackListOptions) ([]model.Feedback, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, opts)
	}
	return nil, nil
}

type stubDashboardRepo struct {
	userCountsFunc      func(context.Context) (int64, int64, map[string]int64, error)
	pdiCountsFunc       func(context.Context) (int64, map[string]int64, error)
	feedbackTotalFunc   func(context.Context) (int64, error)
	recentFeedbacksFunc func(context.Context, int) ([]model.Feedback, error)
}

func (s *stubDashboardRepo) UserCounts(ctx context.Context) (int64, int64, map[string]int64, error) {
	if s.userCountsFunc != nil {
		return s.userCountsFunc(ctx)
	}
	return 0, 0, map[string]int64{}, nil
}

func (s *stubDashboardRepo) PDICounts(ctx context.Context) (int64, map[string]int64, error) {
	if s.pdiCountsFunc != nil {
		return s.pdiCountsFunc(ctx)
	}
	return 0, map[string]int64{}, nil
}

func (s *stubDashboardRepo) FeedbackTotal(ctx context.Context) (int64, error) {
	if s.feedbackTotalFunc != nil {
		return s.feedbackTotalFunc(ctx)
	}
	return 0, nil
}

func (s *stubDashboardRepo) RecentFeedbacks(ctx context.Context, limit int) ([]model.Feedback, error) {
	if s.recentFeedbacksFunc != nil {
		return s.recentFeedbacksFunc(ctx, limit)
	}
	return nil, nil
}

// staticAnalyzer returns a fixed insight payload.
type staticAnalyzer struct {
	insights model.FeedbackInsights
}

func (a *staticAnalyzer) Analyze(context.Context, model.CreateFeedbackRequest) model.FeedbackInsights {
	return a.insights
}

func (a *staticAnalyzer) SuggestGoals(context.Context, string) []model.CreatePDIGoalRequest {
	return nil
}

// plainHasher avoids bcrypt cost in unit tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("password mismatch")
	}
	return nil
}

func collaboratorSession(userID int64) domainauth.Session {
	return domainauth.Session{
		ID:     "sess-collab",
		UserID: userID,
		Roles:  []domainauth.Role{domainauth.RoleCollaborator},
	}
}

func managerSession(userID int64) domainauth.Session {
	return domainauth.Session{
		ID:     "sess-manager",
		UserID: userID,
		Roles:  []domainauth.Role{domainauth.RoleManager},
	}
}

func adminSession(userID int64) domainauth.Session {
	return domainauth.Session{
		ID:     "sess-admin",
		UserID: userID,
		Roles:  []domainauth.Role{domainauth.RoleAdmin},
	}
}
