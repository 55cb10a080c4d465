package session

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/iamasit07/soundboard-dashboard/internal/domain"
	"github.com/iamasit07/soundboard-dashboard/internal/logging"
)

const (
	profileKeyPrefix = "profile:"
	guildsKeyPrefix  = "guilds:"
)

// CacheRepository is satisfied by the redis wrapper.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// ProfileCache keeps profile and guild lookups per access token so a page
// load does not hit the provider on every request. Tokens are hashed before
// they become keys.
type ProfileCache struct {
	repo   CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

func NewProfileCache(repo CacheRepository, ttl time.Duration, logger *slog.Logger) *ProfileCache {
	return &ProfileCache{repo: repo, ttl: ttl, logger: logging.Component(logger, "session-cache")}
}

func tokenKey(prefix, token string) string {
	sum := blake2b.Sum256([]byte(token))
	return prefix + hex.EncodeToString(sum[:])
}

func (c *ProfileCache) User(ctx context.Context, token string) (*domain.User, bool) {
	var user domain.User
	if !c.get(ctx, tokenKey(profileKeyPrefix, token), &user) {
		return nil, false
	}
	return &user, true
}

func (c *ProfileCache) PutUser(ctx context.Context, token string, user *domain.User) {
	c.put(ctx, tokenKey(profileKeyPrefix, token), user)
}

func (c *ProfileCache) Guilds(ctx context.Context, token string) ([]domain.Guild, bool) {
	var guilds []domain.Guild
	if !c.get(ctx, tokenKey(guildsKeyPrefix, token), &guilds) {
		return nil, false
	}
	return guilds, true
}

func (c *ProfileCache) PutGuilds(ctx context.Context, token string, guilds []domain.Guild) {
	c.put(ctx, tokenKey(guildsKeyPrefix, token), guilds)
}

// Forget drops everything cached for token.
func (c *ProfileCache) Forget(ctx context.Context, token string) {
	err := c.repo.Del(ctx, tokenKey(profileKeyPrefix, token), tokenKey(guildsKeyPrefix, token))
	if err != nil {
		c.logger.Warn("cache delete failed", "error", err)
	}
}

func (c *ProfileCache) get(ctx context.Context, key string, out any) bool {
	data, err := c.repo.Get(ctx, key)
	if err != nil || data == "" {
		return false
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		c.logger.Warn("dropping undecodable cache entry", "error", err)
		_ = c.repo.Del(ctx, key)
		return false
	}
	return true
}

func (c *ProfileCache) put(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.repo.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
}
