package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/progresshq/progress-api/internal/data"
	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	apperrors "github.com/progresshq/progress-api/internal/errors"
	"github.com/progresshq/progress-api/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users    ports.UserRepository
	Sessions ports.SessionStore
	Tokens   ports.TokenIssuer
	Hasher   ports.PasswordHasher
	TokenTTL time.Duration
	Now      func() time.Time
}

// AuthService orchestrates credential login, session persistence, and
// token verification.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	tokens   ports.TokenIssuer
	hasher   ports.PasswordHasher
	tokenTTL time.Duration
	now      func() time.Time
}

const defaultTokenTTL = 8 * time.Hour

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:    opts.Users,
		sessions: opts.Sessions,
		tokens:   opts.Tokens,
		hasher:   opts.Hasher,
		tokenTTL: ttl,
		now:      now,
	}
}

// Credentials carries an email/password login attempt.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult contains the bearer token and the session it is bound to.
type LoginResult struct {
	Token   string
	Session domainauth.Session
}

// errInvalidCredentials is the single rejection for every login failure
// mode, so responses never reveal whether the account exists.
func errInvalidCredentials() error {
	return apperrors.Unauthorized("invalid email or password")
}

// Login verifies credentials, persists a session, and issues a bearer
// token whose jti is the session ID. A failed login leaves no session
// behind.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return nil, errInvalidCredentials()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if compareErr := s.hasher.Compare(user.PasswordHash, creds.Password); compareErr != nil {
		return nil, errInvalidCredentials()
	}
	if !user.Active {
		return nil, errInvalidCredentials()
	}

	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Roles:     user.Roles,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	token, err := s.tokens.Issue(session.ID, session.ExpiresAt)
	if err != nil {
		// Do not leave an orphaned session for a token that was never handed out.
		if deleteErr := s.sessions.Delete(ctx, session.ID); deleteErr != nil {
			return nil, errors.Join(fmt.Errorf("issue token: %w", err), fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{Token: token, Session: session}, nil
}

// GetSession resolves a bearer token to its live session. A valid
// signature is not enough; the session must still exist in the store,
// which is what makes logout an actual revocation.
func (s *AuthService) GetSession(ctx context.Context, token string) (*domainauth.Session, error) {
	sessionID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "invalid token")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "session not found")
	}

	if s.now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, fmt.Errorf("delete expired session: %w", deleteErr)
		}
		return nil, apperrors.Unauthorized("session expired")
	}

	return &session, nil
}

// Logout revokes the session bound to the token. It is idempotent and
// tolerates invalid or already-revoked tokens.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	sessionID, err := s.tokens.Verify(token)
	if err != nil {
		return nil
	}
	if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
		return fmt.Errorf("delete session: %w", deleteErr)
	}
	return nil
}
