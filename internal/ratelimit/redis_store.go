package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// reserveScript prunes, counts and adds in one step so that concurrent API
// processes cannot all pass the check before any of them records.
//
//	KEYS[1] sorted set, ARGV: since, limit, at, id, ttl (ms)
var reserveScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', '(' .. ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[2]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// RedisStore keeps attempt history in one sorted set per key, scored by
// Unix microseconds, so that every API process shares the same budget.
type RedisStore struct {
	rdb    *redis.Client
	keyFor func(id string) string
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. keyFor maps an identity to its Redis
// key; ttl should be at least the limiter window so idle keys expire.
func NewRedisStore(rdb *redis.Client, keyFor func(id string) string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, keyFor: keyFor, ttl: ttl}
}

// Reserve implements Store.
func (s *RedisStore) Reserve(ctx context.Context, key, id string, at, since time.Time, limit int) (bool, error) {
	n, err := reserveScript.Run(ctx, s.rdb, []string{s.keyFor(key)},
		since.UnixMicro(), limit, at.UnixMicro(), id, s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("reserve attempt: %w", err)
	}
	return n == 1, nil
}

// Release implements Store.
func (s *RedisStore) Release(ctx context.Context, key, id string) error {
	if err := s.rdb.ZRem(ctx, s.keyFor(key), id).Err(); err != nil {
		return fmt.Errorf("release attempt: %w", err)
	}
	return nil
}
