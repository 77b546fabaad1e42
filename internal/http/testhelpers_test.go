package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/progresshq/progress-api/internal/data"
	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/domain/model"
	"github.com/progresshq/progress-api/internal/service"
)

// In-memory repository fakes so router tests exercise the full
// middleware/handler/service stack without a database.

type memUsers struct {
	nextID int64
	users  map[int64]model.User
}

func newMemUsers() *memUsers {
	return &memUsers{nextID: 1, users: make(map[int64]model.User)}
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return data.ErrEmailExists
		}
	}
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, data.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, data.ErrUserNotFound
}

func (m *memUsers) List(_ context.Context, limit, offset int) ([]model.User, error) {
	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]model.User, 0, limit)
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, m.users[ids[i]])
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, u *model.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return data.ErrUserNotFound
	}
	u.UpdatedAt = time.Now()
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return data.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type memPDIs struct {
	nextID int64
	pdis   map[int64]model.PDI
}

func newMemPDIs() *memPDIs {
	return &memPDIs{nextID: 1, pdis: make(map[int64]model.PDI)}
}

func (m *memPDIs) Create(_ context.Context, p *model.PDI) error {
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	if p.Goals == nil {
		p.Goals = []model.PDIGoal{}
	}
	m.pdis[p.ID] = *p
	return nil
}

func (m *memPDIs) GetByID(_ context.Context, id int64) (*model.PDI, error) {
	p, ok := m.pdis[id]
	if !ok {
		return nil, data.ErrPDINotFound
	}
	return &p, nil
}

func (m *memPDIs) List(_ context.Context, opts model.PDIListOptions) ([]model.PDI, error) {
	out := make([]model.PDI, 0, len(m.pdis))
	for _, p := range m.pdis {
		if opts.CollaboratorID != nil && p.CollaboratorID != *opts.CollaboratorID {
			continue
		}
		if opts.ManagerID != nil && (p.ManagerID == nil || *p.ManagerID != *opts.ManagerID) {
			continue
		}
		if opts.Status != nil && p.Status != *opts.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memPDIs) Update(_ context.Context, p *model.PDI) error {
	existing, ok := m.pdis[p.ID]
	if !ok {
		return data.ErrPDINotFound
	}
	if p.Goals == nil {
		p.Goals = existing.Goals
	}
	p.UpdatedAt = time.Now()
	m.pdis[p.ID] = *p
	return nil
}

func (m *memPDIs) Delete(_ context.Context, id int64) error {
	if _, ok := m.pdis[id]; !ok {
		return data.ErrPDINotFound
	}
	delete(m.pdis, id)
	return nil
}

type memFeedbacks struct {
	nextID    int64
	feedbacks map[int64]model.Feedback
}

func newMemFeedbacks() *memFeedbacks {
	return &memFeedbacks{nextID: 1, feedbacks: make(map[int64]model.Feedback)}
}

func (m *memFeedbacks) Create(_ context.Context, fb *model.Feedback) error {
	fb.ID = m.nextID
	m.nextID++
	fb.SentAt = time.Now()
	m.feedbacks[fb.ID] = *fb
	return nil
}

func (m *memFeedbacks) GetByID(_ context.Context, id int64) (*model.Feedback, error) {
	fb, ok := m.feedbacks[id]
	if !ok {
		return nil, data.ErrFeedbackNotFound
	}
	return &fb, nil
}

func (m *memFeedbacks) List(_ context.Context, opts model.FeedbackListOptions) ([]model.Feedback, error) {
	out := make([]model.Feedback, 0, len(m.feedbacks))
	for _, fb := range m.feedbacks {
		if opts.AuthorID != nil && fb.AuthorID != *opts.AuthorID {
			continue
		}
		if opts.RecipientID != nil && fb.RecipientID != *opts.RecipientID {
			continue
		}
		if opts.VisibleToUserID != nil && fb.AuthorID != *opts.VisibleToUserID && fb.RecipientID != *opts.VisibleToUserID {
			continue
		}
		out = append(out, fb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memDashboard struct {
	users     *memUsers
	pdis      *memPDIs
	feedbacks *memFeedbacks
}

func (m *memDashboard) UserCounts(context.Context) (int64, int64, map[string]int64, error) {
	byRole := make(map[string]int64)
	var total, active int64
	for _, u := range m.users.users {
		total++
		if u.Active {
			active++
		}
		for _, r := range u.Roles {
			byRole[r.WireName()]++
		}
	}
	return total, active, byRole, nil
}

func (m *memDashboard) PDICounts(context.Context) (int64, map[string]int64, error) {
	byStatus := make(map[string]int64)
	var total int64
	for _, p := range m.pdis.pdis {
		total++
		byStatus[string(p.Status)]++
	}
	return total, byStatus, nil
}

func (m *memDashboard) FeedbackTotal(context.Context) (int64, error) {
	return int64(len(m.feedbacks.feedbacks)), nil
}

func (m *memDashboard) RecentFeedbacks(ctx context.Context, limit int) ([]model.Feedback, error) {
	all, err := m.feedbacks.List(ctx, model.FeedbackListOptions{})
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

type memSessions struct {
	sessions map[string]domainauth.Session
}

func (m *memSessions) Save(_ context.Context, sess domainauth.Session) error {
	m.sessions[sess.ID] = sess
	return nil
}

func (m *memSessions) Get(_ context.Context, id string) (domainauth.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, errors.New("session not found")
	}
	return sess, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

type reversibleIssuer struct{}

func (reversibleIssuer) Issue(sessionID string, _ time.Time) (string, error) {
	return "tok:" + sessionID, nil
}

func (reversibleIssuer) Verify(token string) (string, error) {
	sessionID, ok := strings.CutPrefix(token, "tok:")
	if !ok {
		return "", errors.New("malformed token")
	}
	return sessionID, nil
}

type testHasher struct{}

func (testHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (testHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("password mismatch")
	}
	return nil
}

type staticInsights struct{}

func (staticInsights) Analyze(context.Context, model.CreateFeedbackRequest) model.FeedbackInsights {
	positive := model.SentimentPositive
	return model.FeedbackInsights{Sentiment: &positive}
}

func (staticInsights) SuggestGoals(context.Context, string) []model.CreatePDIGoalRequest {
	return nil
}

// testEnv wires the full router over in-memory state.
type testEnv struct {
	handler http.Handler
	users   *memUsers
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMemUsers()
	pdis := newMemPDIs()
	feedbacks := newMemFeedbacks()

	auth := service.NewAuthService(service.AuthServiceOptions{
		Users:    users,
		Sessions: &memSessions{sessions: make(map[string]domainauth.Session)},
		Tokens:   reversibleIssuer{},
		Hasher:   testHasher{},
		TokenTTL: time.Hour,
	})
	handler := NewRouter(RouterServices{
		Auth:      auth,
		Users:     service.NewUserService(service.UserServiceOptions{Users: users, Hasher: testHasher{}}),
		Feedbacks: service.NewFeedbackService(service.FeedbackServiceOptions{Feedbacks: feedbacks, Users: users, Analyzer: staticInsights{}}),
		PDIs:      service.NewPDIService(service.PDIServiceOptions{PDIs: pdis, Users: users}),
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{Repo: &memDashboard{users: users, pdis: pdis, feedbacks: feedbacks}}),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return &testEnv{handler: handler, users: users}
}

// seedUser inserts a user directly into the fake store and returns it.
func (e *testEnv) seedUser(t *testing.T, email, password string, roles ...domainauth.Role) *model.User {
	t.Helper()
	if len(roles) == 0 {
		roles = []domainauth.Role{domainauth.RoleCollaborator}
	}
	u := &model.User{
		Name:         "Seed User",
		Email:        email,
		Active:       true,
		PasswordHash: "hashed:" + password,
		Roles:        roles,
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

// login performs a real login through the router and returns the token.
func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := e.do(t, request{Method: http.MethodPost, Path: "/api/auth/login", Body: map[string]string{
		"email":    email,
		"password": password,
	}})
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

type request struct {
	Method string
	Path   string
	Token  string
	Body   any
}

// do runs a request through the router and returns the recorder.
func (e *testEnv) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	httpReq := httptest.NewRequest(req.Method, req.Path, body)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httpReq)
	return rec
}

// decode unmarshals a recorded JSON body into dst.
func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}
