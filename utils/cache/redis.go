package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound = errors.New("key not found in cache")
)

// hitScript increments a counter and starts its window on the first hit, in one round trip
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisCache holds short-lived counters and locks in Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redisURL and fails when the server does not answer
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// Get retrieves a value; a missing key is ErrNotFound
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores a value with expiration
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Delete removes keys
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// Hit increments the counter at key and returns the new count. The first hit
// opens a window; the counter disappears when it closes.
func (r *RedisCache) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	return hitScript.Run(ctx, r.client, []string{key}, window.Milliseconds()).Int64()
}

// Remaining reports whether key exists and how long it has left.
// A key without expiry exists with zero time left.
func (r *RedisCache) Remaining(ctx context.Context, key string) (time.Duration, bool, error) {
	ttl, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, false, err
	}
	switch ttl {
	case -2:
		return 0, false, nil
	case -1:
		return 0, true, nil
	}
	return ttl, true, nil
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}
