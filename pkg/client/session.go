package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidAuthResponse is returned by Login when the server's
// response is missing the token or the identity fields.
var ErrInvalidAuthResponse = errors.New("login response is missing token or identity")

// State is the lifecycle phase of a session manager.
type State string

const (
	// StateInitializing is the window between construction and the
	// one-time restore from the store.
	StateInitializing    State = "INITIALIZING"
	StateAuthenticated   State = "AUTHENTICATED"
	StateUnauthenticated State = "UNAUTHENTICATED"
)

// Snapshot is an immutable view of the session handed to subscribers.
type Snapshot struct {
	State State
	User  *AuthenticatedUser
	Token string
}

// Loading reports whether the session is still restoring.
func (s Snapshot) Loading() bool {
	return s.State == StateInitializing
}

// IsAuthenticated is derived, never stored: both token and user must
// be present.
func (s Snapshot) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// SessionManager owns the authenticated state: it is the only writer
// of the session store and of the client's bearer token. Safe for
// concurrent use.
type SessionManager struct {
	api   *Client
	store Store

	mu    sync.RWMutex
	state State
	user  *AuthenticatedUser
	token string

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Snapshot)
}

// SessionManagerOptions configures NewSessionManager.
type SessionManagerOptions struct {
	API   *Client
	Store Store
}

// NewSessionManager builds a manager and immediately restores any
// persisted session. A corrupted stored user clears both keys and
// lands unauthenticated without surfacing an error; store I/O
// failures are returned.
func NewSessionManager(opts SessionManagerOptions) (*SessionManager, error) {
	if opts.API == nil {
		return nil, errors.New("api client is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}

	m := &SessionManager{
		api:   opts.API,
		store: opts.Store,
		state: StateInitializing,
		subs:  make(map[int]func(Snapshot)),
	}
	if err := m.restore(); err != nil {
		return nil, err
	}
	return m, nil
}

// restore reads both keys exactly once and resolves the initializing
// state.
func (m *SessionManager) restore() error {
	token, haveToken, err := m.store.Get(KeyAuthToken)
	if err != nil {
		return fmt.Errorf("read stored token: %w", err)
	}
	rawUser, haveUser, err := m.store.Get(KeyAuthUser)
	if err != nil {
		return fmt.Errorf("read stored user: %w", err)
	}

	if !haveToken || !haveUser || token == "" {
		return m.clearStored()
	}

	var user AuthenticatedUser
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.ID == 0 {
		// Corrupted persisted identity: recover silently.
		return m.clearStored()
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = &user
	m.token = token
	m.mu.Unlock()
	m.api.SetToken(token)
	return nil
}

// clearStored deletes both keys and settles unauthenticated.
func (m *SessionManager) clearStored() error {
	if err := m.store.Delete(KeyAuthToken); err != nil {
		return fmt.Errorf("clear stored token: %w", err)
	}
	if err := m.store.Delete(KeyAuthUser); err != nil {
		return fmt.Errorf("clear stored user: %w", err)
	}
	m.mu.Lock()
	m.state = StateUnauthenticated
	m.user = nil
	m.token = ""
	m.mu.Unlock()
	m.api.ClearToken()
	return nil
}

// Snapshot returns the current session view.
func (m *SessionManager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, User: m.user, Token: m.token}
}

// IsAuthenticated reports whether both token and user are present.
func (m *SessionManager) IsAuthenticated() bool {
	return m.Snapshot().IsAuthenticated()
}

// User returns the authenticated identity, or nil.
func (m *SessionManager) User() *AuthenticatedUser {
	return m.Snapshot().User
}

// Subscribe registers a callback invoked after every state change.
// The returned function removes the subscription.
func (m *SessionManager) Subscribe(fn func(Snapshot)) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

func (m *SessionManager) notify() {
	snap := m.Snapshot()
	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// Login authenticates and, only on full success, updates memory, the
// store, and the client token together. Any failure leaves all three
// untouched.
func (m *SessionManager) Login(ctx context.Context, creds Credentials) error {
	resp, err := m.api.Login(ctx, creds)
	if err != nil {
		return err
	}
	if resp.Token == "" || resp.User.ID == 0 || resp.User.Email == "" {
		return ErrInvalidAuthResponse
	}

	rawUser, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("encode user for store: %w", err)
	}

	// Persist before mutating memory so a store failure cannot leave
	// the two views disagreeing.
	if err := m.store.Set(KeyAuthToken, resp.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := m.store.Set(KeyAuthUser, string(rawUser)); err != nil {
		if delErr := m.store.Delete(KeyAuthToken); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return fmt.Errorf("persist user: %w", err)
	}

	user := resp.User
	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = &user
	m.token = resp.Token
	m.mu.Unlock()
	m.api.SetToken(resp.Token)

	m.notify()
	return nil
}

// Logout clears memory, both store keys, and the client token. The
// server-side revocation is best effort; a dead session is already
// logged out. Idempotent.
func (m *SessionManager) Logout(ctx context.Context) error {
	if m.Snapshot().Token != "" {
		// Ignore revocation failures: the local session dies anyway.
		_ = m.api.Logout(ctx) //nolint:errcheck
	}

	if err := m.clearStored(); err != nil {
		return err
	}
	m.notify()
	return nil
}
