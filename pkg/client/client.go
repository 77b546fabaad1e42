// Package client is the Go SDK for the progress API. It bundles a
// typed HTTP client, a durable session store, and a session manager
// that owns the authenticated state, plus the route guard and
// navigation filter that consume it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// APIError carries the server's error contract for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthenticatedUser is the identity attached to a session.
type AuthenticatedUser struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// HasRole reports whether the user carries the given wire role name.
func (u *AuthenticatedUser) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// LoginResponse is the payload of a successful login.
type LoginResponse struct {
	Token     string            `json:"token"`
	User      AuthenticatedUser `json:"user"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// AuthStatus reports whether the presented token still maps to a live
// session.
type AuthStatus struct {
	Authenticated bool               `json:"authenticated"`
	User          *AuthenticatedUser `json:"user,omitempty"`
	ExpiresAt     *time.Time         `json:"expires_at,omitempty"`
}

// User mirrors the server's user resource.
type User struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	JobTitle   *string   `json:"job_title,omitempty"`
	Department *string   `json:"department,omitempty"`
	Active     bool      `json:"active"`
	Roles      []string  `json:"roles"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateUserRequest creates a user. Roles are wire names; an empty
// list defaults to collaborator on the server.
type CreateUserRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	JobTitle   *string  `json:"job_title,omitempty"`
	Department *string  `json:"department,omitempty"`
	Roles      []string `json:"roles,omitempty"`
}

// UpdateUserRequest partially updates a user; nil fields are left as is.
type UpdateUserRequest struct {
	Name       *string  `json:"name,omitempty"`
	Email      *string  `json:"email,omitempty"`
	Password   *string  `json:"password,omitempty"`
	JobTitle   *string  `json:"job_title,omitempty"`
	Department *string  `json:"department,omitempty"`
	Active     *bool    `json:"active,omitempty"`
	Roles      []string `json:"roles,omitempty"`
}

// FeedbackInsights is the analyzer annotation attached on creation.
type FeedbackInsights struct {
	Sentiment          *string `json:"sentiment,omitempty"`
	DifficultyCategory *string `json:"difficulty_category,omitempty"`
	SuggestedGoal      *string `json:"suggested_goal,omitempty"`
	RecommendedCourse  *string `json:"recommended_course,omitempty"`
}

// Feedback mirrors the server's feedback resource.
type Feedback struct {
	ID                int64            `json:"id"`
	AuthorID          int64            `json:"author_id"`
	RecipientID       int64            `json:"recipient_id"`
	Text              string           `json:"text"`
	Skills            *string          `json:"skills,omitempty"`
	Difficulties      *string          `json:"difficulties,omitempty"`
	LearningInterests *string          `json:"learning_interests,omitempty"`
	Insights          FeedbackInsights `json:"insights"`
	SentAt            time.Time        `json:"sent_at"`
}

// CreateFeedbackRequest creates a feedback; the author is taken from
// the session server-side.
type CreateFeedbackRequest struct {
	RecipientID       int64   `json:"recipient_id"`
	Text              string  `json:"text"`
	Skills            *string `json:"skills,omitempty"`
	Difficulties      *string `json:"difficulties,omitempty"`
	LearningInterests *string `json:"learning_interests,omitempty"`
}

// FeedbackListOptions filters the feedback list.
type FeedbackListOptions struct {
	AuthorID    *int64
	RecipientID *int64
	Limit       int
	Offset      int
}

// PDIGoal is a single goal inside a development plan.
type PDIGoal struct {
	ID          int64      `json:"id"`
	PDIID       int64      `json:"pdi_id"`
	Description string     `json:"description"`
	Actions     *string    `json:"actions,omitempty"`
	Resources   *string    `json:"resources,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Done        bool       `json:"done"`
	Feedback    *string    `json:"feedback,omitempty"`
}

// PDI mirrors the server's development plan resource.
type PDI struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	CollaboratorID int64      `json:"collaborator_id"`
	ManagerID      *int64     `json:"manager_id,omitempty"`
	Status         string     `json:"status"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	CompletedDate  *time.Time `json:"completed_date,omitempty"`
	Goals          []PDIGoal  `json:"goals"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreatePDIGoalRequest creates a goal alongside its plan.
type CreatePDIGoalRequest struct {
	Description string     `json:"description"`
	Actions     *string    `json:"actions,omitempty"`
	Resources   *string    `json:"resources,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// CreatePDIRequest opens a development plan.
type CreatePDIRequest struct {
	Title          string                 `json:"title"`
	Description    *string                `json:"description,omitempty"`
	CollaboratorID int64                  `json:"collaborator_id"`
	StartDate      *time.Time             `json:"start_date,omitempty"`
	DueDate        *time.Time             `json:"due_date,omitempty"`
	Goals          []CreatePDIGoalRequest `json:"goals,omitempty"`
}

// UpdatePDIRequest partially updates a plan; nil fields are left as is.
type UpdatePDIRequest struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	ManagerID   *int64                 `json:"manager_id,omitempty"`
	Status      *string                `json:"status,omitempty"`
	StartDate   *time.Time             `json:"start_date,omitempty"`
	DueDate     *time.Time             `json:"due_date,omitempty"`
	Goals       []CreatePDIGoalRequest `json:"goals,omitempty"`
}

// PDIListOptions filters the plan list.
type PDIListOptions struct {
	CollaboratorID *int64
	ManagerID      *int64
	Status         *string
	Limit          int
	Offset         int
}

// AdminDashboard is the aggregate admin overview.
type AdminDashboard struct {
	TotalUsers      int64            `json:"total_users"`
	ActiveUsers     int64            `json:"active_users"`
	UsersByRole     map[string]int64 `json:"users_by_role"`
	TotalPDIs       int64            `json:"total_pdis"`
	PDIsByStatus    map[string]int64 `json:"pdis_by_status"`
	TotalFeedbacks  int64            `json:"total_feedbacks"`
	RecentFeedbacks []Feedback       `json:"recent_feedbacks"`
}

// Client is a typed HTTP client for the progress API. The bearer
// token is set by the session manager; all methods attach it when
// present. Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the given base URL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken installs the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the currently installed bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-side close

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError extracts the server's {message} contract, falling
// back to a synthesized "HTTP <status> <statusText>" message when the
// body is not valid JSON.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Message != "" {
		apiErr.Message = payload.Message
		return apiErr
	}

	apiErr.Message = fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	return apiErr
}

// Login exchanges credentials for a bearer token. It does not install
// the token; that is the session manager's decision.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the current session server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// AuthStatus checks whether the installed token is still valid.
func (c *Client) AuthStatus(ctx context.Context) (*AuthStatus, error) {
	var out AuthStatus
	if err := c.do(ctx, http.MethodGet, "/api/auth/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser creates a user (admin only).
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPost, "/api/users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser fetches a user by ID (admin only).
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/users/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns a page of users (admin only).
func (c *Client) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	var out struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/api/users", q), nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// UpdateUser partially updates a user (admin only).
func (c *Client) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPut, "/api/users/"+strconv.FormatInt(id, 10), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes a user (admin only).
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+strconv.FormatInt(id, 10), nil, nil)
}

// CreateFeedback sends a feedback as the authenticated user.
func (c *Client) CreateFeedback(ctx context.Context, req CreateFeedbackRequest) (*Feedback, error) {
	var out Feedback
	if err := c.do(ctx, http.MethodPost, "/api/feedbacks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFeedback fetches a feedback the user is allowed to see.
func (c *Client) GetFeedback(ctx context.Context, id int64) (*Feedback, error) {
	var out Feedback
	if err := c.do(ctx, http.MethodGet, "/api/feedbacks/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFeedbacks returns feedbacks visible to the authenticated user.
func (c *Client) ListFeedbacks(ctx context.Context, opts FeedbackListOptions) ([]Feedback, error) {
	q := url.Values{}
	if opts.AuthorID != nil {
		q.Set("author_id", strconv.FormatInt(*opts.AuthorID, 10))
	}
	if opts.RecipientID != nil {
		q.Set("recipient_id", strconv.FormatInt(*opts.RecipientID, 10))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	var out struct {
		Feedbacks []Feedback `json:"feedbacks"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/api/feedbacks", q), nil, &out); err != nil {
		return nil, err
	}
	return out.Feedbacks, nil
}

// CreatePDI opens a development plan.
func (c *Client) CreatePDI(ctx context.Context, req CreatePDIRequest) (*PDI, error) {
	var out PDI
	if err := c.do(ctx, http.MethodPost, "/api/pdis", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPDI fetches a plan the user is allowed to see.
func (c *Client) GetPDI(ctx context.Context, id int64) (*PDI, error) {
	var out PDI
	if err := c.do(ctx, http.MethodGet, "/api/pdis/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPDIs returns plans visible to the authenticated user.
func (c *Client) ListPDIs(ctx context.Context, opts PDIListOptions) ([]PDI, error) {
	q := url.Values{}
	if opts.CollaboratorID != nil {
		q.Set("collaborator_id", strconv.FormatInt(*opts.CollaboratorID, 10))
	}
	if opts.ManagerID != nil {
		q.Set("manager_id", strconv.FormatInt(*opts.ManagerID, 10))
	}
	if opts.Status != nil {
		q.Set("status", *opts.Status)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	var out struct {
		PDIs []PDI `json:"pdis"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/api/pdis", q), nil, &out); err != nil {
		return nil, err
	}
	return out.PDIs, nil
}

// UpdatePDI partially updates a plan.
func (c *Client) UpdatePDI(ctx context.Context, id int64, req UpdatePDIRequest) (*PDI, error) {
	var out PDI
	if err := c.do(ctx, http.MethodPut, "/api/pdis/"+strconv.FormatInt(id, 10), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePDI removes a plan (manager or admin).
func (c *Client) DeletePDI(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/pdis/"+strconv.FormatInt(id, 10), nil, nil)
}

// AdminDashboard fetches the aggregate admin overview (admin only).
func (c *Client) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	var out AdminDashboard
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/admin", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
