package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/iamasit07/soundboard-dashboard/internal/domain"
)

type memStore struct {
	mu      sync.Mutex
	sess    domain.Session
	maxAge  time.Duration
	saves   int
	cleared int
}

func (s *memStore) Load() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

func (s *memStore) Save(sess domain.Session, maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess, s.maxAge = sess, maxAge
	s.saves++
}

func (s *memStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = domain.Session{}
	s.cleared++
}

// fakeBackend records every call in order.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	refreshTok *oauth2.Token
	refreshErr error
	profileErr error
	guildsErr  error
	revokeErr  error

	// revokeGate, when set, blocks Revoke until closed.
	revokeGate chan struct{}
	revoked    chan string
}

func (b *fakeBackend) record(call string) {
	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()
}

func (b *fakeBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	b.record("refresh:" + refreshToken)
	if b.refreshErr != nil {
		return nil, b.refreshErr
	}
	return b.refreshTok, nil
}

func (b *fakeBackend) Revoke(ctx context.Context, accessToken string) error {
	if b.revokeGate != nil {
		<-b.revokeGate
	}
	b.record("revoke:" + accessToken)
	if b.revoked != nil {
		b.revoked <- accessToken
	}
	return b.revokeErr
}

func (b *fakeBackend) Profile(ctx context.Context, accessToken string) (*domain.User, error) {
	b.record("profile:" + accessToken)
	if b.profileErr != nil {
		return nil, b.profileErr
	}
	return &domain.User{ID: "42", Username: "amy"}, nil
}

func (b *fakeBackend) Guilds(ctx context.Context, accessToken string) ([]domain.Guild, error) {
	b.record("guilds:" + accessToken)
	if b.guildsErr != nil {
		return nil, b.guildsErr
	}
	return []domain.Guild{{ID: "g1", Name: "Guild"}}, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	default:
		return errors.New("unsupported value")
	}
	c.ttls[key] = expiration
	return nil
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (c *memCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
