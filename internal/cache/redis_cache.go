package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// setIfVersionScript sets KEYS[1] only while KEYS[2] (missing counts as 0)
// equals ARGV[1]. The check and the write happen atomically on the server.
const setIfVersionScript = `
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`

type redisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

func NewRedisCache(client *redis.Client, defaultTTL time.Duration) Cache {
	return &redisCache{
		client:     client,
		defaultTTL: defaultTTL,
	}
}

func (r *redisCache) Get(ctx context.Context, key string, value any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache data for key %s: %w", key, err)
	}
	return true, nil
}

func (r *redisCache) Version(ctx context.Context, key string) (int64, error) {
	version, err := r.client.Get(ctx, VersionKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get version of key %s from redis: %w", key, err)
	}
	return version, nil
}

func (r *redisCache) SetIfVersion(ctx context.Context, key string, version int64, value any, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	stored, err := r.client.Eval(ctx, setIfVersionScript,
		[]string{key, VersionKey(key)},
		strconv.FormatInt(version, 10), string(data), ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}
	return stored == 1, nil
}

// Invalidate bumps the version before deleting, so a concurrent fill either
// lands before the delete or is rejected by the new version.
func (r *redisCache) Invalidate(ctx context.Context, key string) error {
	if err := r.client.Incr(ctx, VersionKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to bump version of key %s in redis: %w", key, err)
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}
	return nil
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
