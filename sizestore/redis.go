package sizestore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares page counts across processes and survives restarts.
// Optionally, a TTL can be applied to slot keys to prevent unbounded growth.
// If a slot expires, sequences fall back to their configured initial size.
type Redis struct {
	rdb redis.UniversalClient
	ns  string        // logical namespace; should match Options.Namespace
	ttl time.Duration // optional TTL for slot keys; 0 disables expiry
}

var _ SizeStore = (*Redis)(nil)

// NewRedis creates a Redis-backed size store without TTL.
func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	return &Redis{rdb: client, ns: namespace}
}

// NewRedisWithTTL creates a Redis-backed size store with TTL.
// If ttl <= 0, slot keys do not expire.
func NewRedisWithTTL(client redis.UniversalClient, namespace string, ttl time.Duration) *Redis {
	return &Redis{rdb: client, ns: namespace, ttl: ttl}
}

func (s *Redis) key(slot string) string { return "size:" + s.ns + ":" + slot }

func (s *Redis) Load(ctx context.Context, slot string) (int, bool, error) {
	res, err := s.rdb.Get(ctx, s.key(slot)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(res)
	if err != nil {
		return 0, false, fmt.Errorf("redis size parse: %w", err)
	}
	return n, true, nil
}

func (s *Redis) Save(ctx context.Context, slot string, size int) error {
	return s.rdb.Set(ctx, s.key(slot), strconv.Itoa(size), s.ttl).Err()
}

func (s *Redis) Forget(ctx context.Context, slot string) error {
	return s.rdb.Del(ctx, s.key(slot)).Err()
}

// Cleanup is not applicable for Redis (Redis handles expiry if TTL is set).
func (s *Redis) Cleanup(time.Duration) {}

// Close closes the underlying Redis client.
func (s *Redis) Close(ctx context.Context) error { return s.rdb.Close() }
