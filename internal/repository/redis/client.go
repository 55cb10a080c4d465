package redis

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamasit07/soundboard-dashboard/internal/logging"
	"github.com/iamasit07/soundboard-dashboard/internal/session"
)

// Connect returns nil when addr is empty or the server does not answer; the
// dashboard then runs without a profile cache.
func Connect(ctx context.Context, addr, password string, logger *slog.Logger) *redis.Client {
	logger = logging.Component(logger, "redis")
	if addr == "" {
		logger.Info("redis disabled, profile cache off")
		return nil
	}

	opts, err := options(addr, password)
	if err != nil {
		logger.Warn("invalid redis address, profile cache off", "error", err)
		return nil
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("could not reach redis, profile cache off", "addr", opts.Addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("redis connected", "addr", opts.Addr)
	return client
}

// options accepts both host:port and redis:// URLs. An explicit password
// wins over one embedded in the URL.
func options(addr, password string) (*redis.Options, error) {
	if !strings.HasPrefix(addr, "redis://") && !strings.HasPrefix(addr, "rediss://") {
		return &redis.Options{Addr: addr, Password: password, DB: 0}, nil
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}
	return opts, nil
}

// RedisCache adapts a redis client to session.CacheRepository.
type RedisCache struct {
	client *redis.Client
}

var _ session.CacheRepository = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}
