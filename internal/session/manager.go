// Package session owns the browser's token triple: it restores it from the
// store, refreshes it ahead of expiry, and exposes the user and guild list.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/iamasit07/soundboard-dashboard/internal/backend"
	"github.com/iamasit07/soundboard-dashboard/internal/domain"
	"github.com/iamasit07/soundboard-dashboard/internal/logging"
)

const (
	DefaultLookahead = 24 * time.Hour
	revokeTimeout    = 10 * time.Second
)

var (
	ErrSessionExpired   = errors.New("session expired")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// TokenStore persists the session between requests (cookies in production).
type TokenStore interface {
	Load() domain.Session
	Save(sess domain.Session, maxAge time.Duration)
	Clear()
}

type Backend interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	Revoke(ctx context.Context, accessToken string) error
	Profile(ctx context.Context, accessToken string) (*domain.User, error)
	Guilds(ctx context.Context, accessToken string) ([]domain.Guild, error)
}

type Options struct {
	Store   TokenStore
	Backend Backend
	Cache   *ProfileCache // optional
	Logger  *slog.Logger
	// Lookahead is how long before expiry a restored session is refreshed.
	Lookahead time.Duration
	Now       func() time.Time
}

// Manager is the only writer of the session tokens. Build one per request
// and pass it explicitly to whatever needs the token.
type Manager struct {
	store     TokenStore
	backend   Backend
	cache     *ProfileCache
	logger    *slog.Logger
	lookahead time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	state   domain.SessionState
	session domain.Session
	user    *domain.User

	background sync.WaitGroup
}

func NewManager(opts Options) *Manager {
	m := &Manager{
		store:     opts.Store,
		backend:   opts.Backend,
		cache:     opts.Cache,
		logger:    logging.Component(opts.Logger, "session"),
		lookahead: opts.Lookahead,
		now:       opts.Now,
		state:     domain.StateUnknown,
	}
	if m.lookahead <= 0 {
		m.lookahead = DefaultLookahead
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

func (m *Manager) State() domain.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) IsAuthenticated() bool {
	return m.State() == domain.StateAuthenticated
}

func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.AccessToken
}

// User is nil until a profile fetch succeeded.
func (m *Manager) User() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

func (m *Manager) setState(state domain.SessionState) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

// Load restores the session from the store. A session expiring within the
// lookahead window is refreshed before anything else is fetched.
func (m *Manager) Load(ctx context.Context) domain.SessionState {
	sess := m.store.Load()
	if !sess.Complete() {
		m.setState(domain.StateUnauthenticated)
		return domain.StateUnauthenticated
	}

	if sess.NeedsRefresh(m.now(), m.lookahead) {
		state, _ := m.refresh(ctx, sess.RefreshToken)
		return state
	}

	m.mu.Lock()
	m.session = sess
	m.state = domain.StateAuthenticated
	m.mu.Unlock()

	m.loadProfile(ctx, sess.AccessToken)
	return domain.StateAuthenticated
}

// Refresh trades the held refresh token for a new pair. It always ends in
// Authenticated or Unauthenticated; on failure the tokens are gone and
// ErrSessionExpired is returned so the caller can send the user to /login.
func (m *Manager) Refresh(ctx context.Context) (domain.SessionState, error) {
	m.mu.RLock()
	refreshToken := m.session.RefreshToken
	m.mu.RUnlock()

	if refreshToken == "" {
		refreshToken = m.store.Load().RefreshToken
	}
	return m.refresh(ctx, refreshToken)
}

func (m *Manager) refresh(ctx context.Context, refreshToken string) (domain.SessionState, error) {
	m.setState(domain.StateRefreshing)

	if refreshToken == "" {
		m.drop()
		return domain.StateUnauthenticated, ErrSessionExpired
	}

	tok, err := m.backend.Refresh(ctx, refreshToken)
	if err != nil {
		m.logger.Warn("token refresh failed, clearing session", "error", err)
		m.drop()
		return domain.StateUnauthenticated, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	m.persist(tok)
	m.logger.Debug("token refreshed")
	m.loadProfile(ctx, tok.AccessToken)
	return domain.StateAuthenticated, nil
}

// Login stores a freshly issued token pair and fetches the profile.
func (m *Manager) Login(ctx context.Context, tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" || tok.RefreshToken == "" || tok.ExpiresIn <= 0 {
		return errors.New("incomplete token pair")
	}
	m.persist(tok)
	m.loadProfile(ctx, tok.AccessToken)
	return nil
}

func (m *Manager) persist(tok *oauth2.Token) {
	lifetime := backend.Lifetime(tok)
	sess := domain.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    m.now().Add(lifetime),
	}
	m.store.Save(sess, lifetime)

	m.mu.Lock()
	m.session = sess
	m.state = domain.StateAuthenticated
	m.user = nil
	m.mu.Unlock()
}

func (m *Manager) drop() {
	m.store.Clear()

	m.mu.Lock()
	m.session = domain.Session{}
	m.user = nil
	m.state = domain.StateUnauthenticated
	m.mu.Unlock()
}

// Logout clears local state before returning and revokes the token in the
// background. A failed revoke is only logged.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.RLock()
	token := m.session.AccessToken
	m.mu.RUnlock()
	if token == "" {
		token = m.store.Load().AccessToken
	}

	m.drop()

	if token == "" {
		return
	}

	bg := context.WithoutCancel(ctx)
	m.background.Add(1)
	go func() {
		defer m.background.Done()

		revokeCtx, cancel := context.WithTimeout(bg, revokeTimeout)
		defer cancel()

		if m.cache != nil {
			m.cache.Forget(revokeCtx, token)
		}
		if err := m.backend.Revoke(revokeCtx, token); err != nil {
			m.logger.Warn("token revoke failed", "error", err)
		}
	}()
}

// Wait blocks until background revokes have finished.
func (m *Manager) Wait() {
	m.background.Wait()
}

func (m *Manager) loadProfile(ctx context.Context, token string) {
	if m.cache != nil {
		if user, ok := m.cache.User(ctx, token); ok {
			m.setUser(user)
			return
		}
	}

	user, err := m.backend.Profile(ctx, token)
	if err != nil {
		if !backend.IsCanceled(err) {
			m.logger.Warn("profile fetch failed", "error", err)
		}
		return
	}
	m.setUser(user)

	if m.cache != nil {
		m.cache.PutUser(ctx, token, user)
	}
}

func (m *Manager) setUser(user *domain.User) {
	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
}

// Guilds lists the user's guilds. Failures are returned and logged but
// leave the session state alone.
func (m *Manager) Guilds(ctx context.Context) ([]domain.Guild, error) {
	m.mu.RLock()
	token, state := m.session.AccessToken, m.state
	m.mu.RUnlock()

	if state != domain.StateAuthenticated {
		return nil, ErrNotAuthenticated
	}

	if m.cache != nil {
		if guilds, ok := m.cache.Guilds(ctx, token); ok {
			return guilds, nil
		}
	}

	guilds, err := m.backend.Guilds(ctx, token)
	if err != nil {
		if !backend.IsCanceled(err) {
			m.logger.Warn("guild fetch failed", "error", err)
		}
		return nil, err
	}

	if m.cache != nil {
		m.cache.PutGuilds(ctx, token, guilds)
	}
	return guilds, nil
}
