// internal/domain/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/domain/cart"
	"github.com/your-org/storefront-client/internal/domain/user"
	"github.com/your-org/storefront-client/internal/infrastructure/storage"
	"github.com/your-org/storefront-client/internal/pkg/auth"
	"github.com/your-org/storefront-client/internal/state"
)

// State is the authentication state of the client
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// ErrMissingToken is returned by Login when the API issued no access token
var ErrMissingToken = errors.New("access token is required")

// LogoutHook runs after the session has been dropped
type LogoutHook func(ctx context.Context) error

// Manager owns the session lifecycle: restore on startup, login and logout
type Manager struct {
	container *state.Container
	store     storage.Store
	inspector *auth.Inspector
	log       *logrus.Logger

	mu        sync.Mutex
	lastError string
	hooks     []LogoutHook
}

// NewManager creates a session manager over the state container
func NewManager(container *state.Container, inspector *auth.Inspector, log *logrus.Logger) *Manager {
	return &Manager{
		container: container,
		store:     container.Store(),
		inspector: inspector,
		log:       log,
	}
}

// OnLogout registers a hook run by every Logout
func (m *Manager) OnLogout(hook LogoutHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// Restore rebuilds the session from the stored token and user. Partial,
// corrupt or expired data is cleared and the session falls back to
// anonymous; only storage failures are returned.
func (m *Manager) Restore(ctx context.Context) error {
	token, hasToken, err := storage.Lookup(ctx, m.store, storage.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	rawUser, hasUser, err := storage.Lookup(ctx, m.store, storage.KeyUser)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	if !hasToken && !hasUser {
		return m.becomeAnonymous(ctx)
	}

	if !hasToken || !hasUser {
		m.log.WithFields(logrus.Fields{
			"has_token": hasToken,
			"has_user":  hasUser,
		}).Warn("Clearing partial session")
		return m.discard(ctx)
	}

	var u user.User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		m.log.WithError(err).Warn("Clearing corrupt stored user")
		return m.discard(ctx)
	}
	if u.ID == 0 {
		m.log.Warn("Clearing stored user without an id")
		return m.discard(ctx)
	}

	if !m.inspector.Usable(token) {
		m.log.WithField("user_id", u.ID).Info("Stored token has expired")
		return m.discard(ctx)
	}

	if err := m.container.SetSession(ctx, state.Session{User: &u, Token: token, IsAuthenticated: true}); err != nil {
		return err
	}

	m.log.WithField("user_id", u.ID).Debug("Session restored")
	return nil
}

// Login persists the user and tokens and marks the session authenticated
func (m *Manager) Login(ctx context.Context, u user.User, token, refreshToken string) error {
	if token == "" {
		return ErrMissingToken
	}

	rawUser, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	if err := m.store.Set(ctx, storage.KeyAuthToken, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if refreshToken != "" {
		if err := m.store.Set(ctx, storage.KeyRefreshToken, refreshToken); err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}
	}
	if err := m.store.Set(ctx, storage.KeyUser, string(rawUser)); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}

	if err := m.container.SetSession(ctx, state.Session{User: &u, Token: token, IsAuthenticated: true}); err != nil {
		return err
	}

	m.SetError("")
	m.log.WithField("user_id", u.ID).Info("User logged in")
	return nil
}

// Logout drops the stored credentials, resets the session and runs the logout hooks
func (m *Manager) Logout(ctx context.Context) error {
	var errs []error

	if err := m.store.Remove(ctx, storage.KeyAuthToken, storage.KeyRefreshToken, storage.KeyUser); err != nil {
		errs = append(errs, fmt.Errorf("failed to clear credentials: %w", err))
	}
	if err := m.container.SetSession(ctx, state.Session{}); err != nil {
		errs = append(errs, err)
	}

	m.mu.Lock()
	hooks := make([]LogoutHook, len(m.hooks))
	copy(hooks, m.hooks)
	m.mu.Unlock()

	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	m.log.Info("User logged out")
	return errors.Join(errs...)
}

// Current returns a copy of the session
func (m *Manager) Current() state.Session {
	return m.container.Session()
}

// State returns Anonymous or Authenticated
func (m *Manager) State() State {
	if m.container.Session().IsAuthenticated {
		return Authenticated
	}
	return Anonymous
}

// SetError records a message for the last failed authentication attempt
func (m *Manager) SetError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastError = msg
}

// LastError returns the message of the last failed authentication attempt
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

// discard removes every stored credential and falls back to anonymous
func (m *Manager) discard(ctx context.Context) error {
	if err := m.store.Remove(ctx, storage.KeyAuthToken, storage.KeyRefreshToken, storage.KeyUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return m.becomeAnonymous(ctx)
}

// becomeAnonymous resets the session. A mirrored remote cart belongs to the
// previous user and is dropped; a guest cart is kept.
func (m *Manager) becomeAnonymous(ctx context.Context) error {
	if m.container.Cart().Source.Kind() == cart.SourceRemote {
		return m.container.Reset(ctx)
	}
	return m.container.SetSession(ctx, state.Session{})
}
