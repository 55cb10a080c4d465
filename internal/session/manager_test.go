package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/iamasit07/soundboard-dashboard/internal/domain"
	"github.com/iamasit07/soundboard-dashboard/internal/logging"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newManager(store TokenStore, b Backend, cache *ProfileCache) *Manager {
	return NewManager(Options{
		Store:   store,
		Backend: b,
		Cache:   cache,
		Logger:  logging.Discard(),
		Now:     func() time.Time { return testNow },
	})
}

func storeExpiringIn(d time.Duration) *memStore {
	return &memStore{sess: domain.Session{
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresAt:    testNow.Add(d),
	}}
}

func newToken() *oauth2.Token {
	return &oauth2.Token{AccessToken: "a2", RefreshToken: "r2", ExpiresIn: int64((7 * 24 * time.Hour).Seconds())}
}

func TestLoad_ValidSessionSkipsRefresh(t *testing.T) {
	b := &fakeBackend{}
	m := newManager(storeExpiringIn(7*24*time.Hour), b, nil)

	state := m.Load(context.Background())

	assert.Equal(t, domain.StateAuthenticated, state)
	assert.Equal(t, []string{"profile:a1"}, b.Calls())
	require.NotNil(t, m.User())
	assert.Equal(t, "a1", m.AccessToken())
}

func TestLoad_ExpiringSoonRefreshesBeforeProfile(t *testing.T) {
	store := storeExpiringIn(time.Hour)
	b := &fakeBackend{refreshTok: newToken()}
	m := newManager(store, b, nil)

	state := m.Load(context.Background())

	assert.Equal(t, domain.StateAuthenticated, state)
	assert.Equal(t, []string{"refresh:r1", "profile:a2"}, b.Calls())
	assert.Equal(t, "a2", store.sess.AccessToken)
	assert.Equal(t, 7*24*time.Hour, store.maxAge)
	assert.True(t, testNow.Add(7*24*time.Hour).Equal(store.sess.ExpiresAt))
}

func TestLoad_LookaheadIsTwentyFourHours(t *testing.T) {
	// 23h left falls inside the window.
	b := &fakeBackend{refreshTok: newToken()}
	newManager(storeExpiringIn(23*time.Hour), b, nil).Load(context.Background())
	assert.Equal(t, "refresh:r1", b.Calls()[0])

	// 25h left does not.
	b = &fakeBackend{}
	newManager(storeExpiringIn(25*time.Hour), b, nil).Load(context.Background())
	assert.Equal(t, []string{"profile:a1"}, b.Calls())
}

func TestLoad_MissingPartIsUnauthenticated(t *testing.T) {
	store := &memStore{sess: domain.Session{AccessToken: "a1", ExpiresAt: testNow.Add(time.Hour)}}
	b := &fakeBackend{}
	m := newManager(store, b, nil)

	assert.Equal(t, domain.StateUnauthenticated, m.Load(context.Background()))
	assert.Empty(t, b.Calls())
}

func TestLoad_RefreshFailureClearsTokens(t *testing.T) {
	store := storeExpiringIn(time.Hour)
	b := &fakeBackend{refreshErr: errors.New("invalid_grant")}
	m := newManager(store, b, nil)

	state := m.Load(context.Background())

	assert.Equal(t, domain.StateUnauthenticated, state)
	assert.Equal(t, 1, store.cleared)
	assert.False(t, store.Load().Complete())
	assert.Empty(t, m.AccessToken())
	assert.Equal(t, []string{"refresh:r1"}, b.Calls())
}

func TestRefresh_ReturnsSessionExpired(t *testing.T) {
	b := &fakeBackend{refreshErr: errors.New("boom")}
	m := newManager(storeExpiringIn(48*time.Hour), b, nil)

	state, err := m.Refresh(context.Background())

	assert.Equal(t, domain.StateUnauthenticated, state)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestRefresh_WithoutTokensIsUnauthenticated(t *testing.T) {
	b := &fakeBackend{}
	m := newManager(&memStore{}, b, nil)

	state, err := m.Refresh(context.Background())

	assert.Equal(t, domain.StateUnauthenticated, state)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Empty(t, b.Calls())
}

func TestRefresh_SafeWhenNotNeeded(t *testing.T) {
	b := &fakeBackend{refreshTok: newToken()}
	m := newManager(storeExpiringIn(30*24*time.Hour), b, nil)
	m.Load(context.Background())

	state, err := m.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.StateAuthenticated, state)
	assert.Equal(t, "a2", m.AccessToken())
}

func TestLoad_ProfileFailureKeepsAuthenticated(t *testing.T) {
	b := &fakeBackend{profileErr: errors.New("provider down")}
	m := newManager(storeExpiringIn(7*24*time.Hour), b, nil)

	assert.Equal(t, domain.StateAuthenticated, m.Load(context.Background()))
	assert.Nil(t, m.User())
	assert.Equal(t, domain.StateAuthenticated, m.State())
}

func TestGuilds_FailureKeepsState(t *testing.T) {
	b := &fakeBackend{guildsErr: errors.New("500")}
	m := newManager(storeExpiringIn(7*24*time.Hour), b, nil)
	m.Load(context.Background())

	_, err := m.Guilds(context.Background())

	require.Error(t, err)
	assert.Equal(t, domain.StateAuthenticated, m.State())
}

func TestGuilds_RequiresAuthentication(t *testing.T) {
	m := newManager(&memStore{}, &fakeBackend{}, nil)
	m.Load(context.Background())

	_, err := m.Guilds(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestLogin_PersistsAndFetchesProfile(t *testing.T) {
	store := &memStore{}
	b := &fakeBackend{}
	m := newManager(store, b, nil)

	require.NoError(t, m.Login(context.Background(), newToken()))

	assert.Equal(t, domain.StateAuthenticated, m.State())
	assert.Equal(t, "a2", store.sess.AccessToken)
	assert.Equal(t, []string{"profile:a2"}, b.Calls())
}

func TestLogin_RejectsIncompleteToken(t *testing.T) {
	m := newManager(&memStore{}, &fakeBackend{}, nil)
	require.Error(t, m.Login(context.Background(), &oauth2.Token{AccessToken: "a"}))
}

func TestLogout_ClearsBeforeRevokeResolves(t *testing.T) {
	store := storeExpiringIn(7 * 24 * time.Hour)
	b := &fakeBackend{revokeGate: make(chan struct{}), revoked: make(chan string, 1)}
	m := newManager(store, b, nil)
	m.Load(context.Background())

	m.Logout(context.Background())

	// Revoke is still blocked, local state is already gone.
	assert.Equal(t, domain.StateUnauthenticated, m.State())
	assert.False(t, store.Load().Complete())
	assert.NotContains(t, b.Calls(), "revoke:a1")

	close(b.revokeGate)
	select {
	case tok := <-b.revoked:
		assert.Equal(t, "a1", tok)
	case <-time.After(time.Second):
		t.Fatal("revoke never ran")
	}
	m.Wait()
}

func TestLogout_RevokeFailureIsIgnored(t *testing.T) {
	store := storeExpiringIn(7 * 24 * time.Hour)
	b := &fakeBackend{revokeErr: errors.New("nope")}
	m := newManager(store, b, nil)
	m.Load(context.Background())

	m.Logout(context.Background())
	m.Wait()

	assert.Equal(t, domain.StateUnauthenticated, m.State())
	assert.False(t, store.Load().Complete())
}

func TestLogout_SurvivesRequestCancellation(t *testing.T) {
	b := &fakeBackend{revoked: make(chan string, 1)}
	m := newManager(storeExpiringIn(7*24*time.Hour), b, nil)
	m.Load(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	m.Logout(ctx)
	cancel()
	m.Wait()

	assert.Contains(t, b.Calls(), "revoke:a1")
}

func TestProfileCache_AvoidsSecondFetch(t *testing.T) {
	repo := newMemCache()
	cache := NewProfileCache(repo, time.Minute, logging.Discard())
	b := &fakeBackend{}

	newManager(storeExpiringIn(7*24*time.Hour), b, cache).Load(context.Background())
	newManager(storeExpiringIn(7*24*time.Hour), b, cache).Load(context.Background())

	assert.Equal(t, []string{"profile:a1"}, b.Calls())
}

func TestProfileCache_ForgottenOnLogout(t *testing.T) {
	repo := newMemCache()
	cache := NewProfileCache(repo, time.Minute, logging.Discard())
	m := newManager(storeExpiringIn(7*24*time.Hour), &fakeBackend{}, cache)
	m.Load(context.Background())
	_, err := m.Guilds(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.Len())

	m.Logout(context.Background())
	m.Wait()

	assert.Equal(t, 0, repo.Len())
}
