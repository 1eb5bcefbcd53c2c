package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript runs the whole check-then-update in one round trip so concurrent
// callers sharing a Redis instance cannot both slip past the limit.
var takeScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
	redis.call('SET', KEYS[1], '1', 'PX', ARGV[2])
	return {1, 1, tonumber(ARGV[2])}
end

local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	ttl = tonumber(ARGV[2])
end

local count = tonumber(current)
if count >= tonumber(ARGV[1]) then
	return {0, count, ttl}
end

count = redis.call('INCR', KEYS[1])
return {1, count, ttl}
`)

// RedisStore shares counters between instances through Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redisURL and checks the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Take(ctx context.Context, key string, max int, window time.Duration) (Window, error) {
	res, err := takeScript.Run(ctx, s.client, []string{key}, max, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Window{}, fmt.Errorf("take %s: %w", key, err)
	}
	if len(res) != 3 {
		return Window{}, fmt.Errorf("take %s: unexpected script reply %v", key, res)
	}

	return Window{
		Allowed: res[0] == 1,
		Count:   int(res[1]),
		TTL:     time.Duration(res[2]) * time.Millisecond,
	}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
