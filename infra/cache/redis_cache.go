package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenCache implements TokenCache on Redis so concurrent instances
// share one processor token instead of each authenticating separately.
type RedisTokenCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisTokenCache creates a RedisTokenCache from redis options.
func NewRedisTokenCache(
	opt *redis.Options,
	prefix string,
	logger *slog.Logger,
) *RedisTokenCache {
	return &RedisTokenCache{
		client: redis.NewClient(opt),
		prefix: prefix,
		logger: logger,
	}
}

func (r *RedisTokenCache) key(key string) string {
	return r.prefix + key
}

// Get implements TokenCache.
func (r *RedisTokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("token cache miss", "key", key)
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("token cache get error", "key", key, "error", err)
		return "", false, err
	}
	return val, true, nil
}

// Set implements TokenCache.
func (r *RedisTokenCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		r.logger.Error("token cache set error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("token cached", "key", key, "ttl", ttl)
	return nil
}

var _ TokenCache = (*RedisTokenCache)(nil)
