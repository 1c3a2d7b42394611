// Package cache is the key/value cache used for page contexts and sessions.
//
// Values are stored as JSON. A Redis-backed Store is used in production;
// the memory Store serves tests and single-process development.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/dailyfresh/config"
	"github.com/shashiranjanraj/dailyfresh/pkg/metrics"
)

// RDB is the shared Redis client, set by Connect.
var RDB *redis.Client

// ErrUnavailable is returned by a Redis store that has no client.
var ErrUnavailable = errors.New("cache: redis unavailable")

// Connect initialises RDB and pings it.
func Connect(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       config.RedisDB(),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	RDB = client
	return nil
}

// Store reads and writes JSON values. Get reports (false, nil) on a miss and
// a non-nil error only when the backend itself failed.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ─── Redis ───────────────────────────────────────────────────────────────────

type redisStore struct {
	rdb redis.Cmdable
}

func NewRedis(rdb redis.Cmdable) Store {
	return &redisStore{rdb: rdb}
}

func (s *redisStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.rdb == nil {
		return false, ErrUnavailable
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// A value we cannot decode is treated as a miss and overwritten later.
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false, nil
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.rdb == nil {
		return ErrUnavailable
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Del(ctx context.Context, keys ...string) error {
	if s.rdb == nil {
		return ErrUnavailable
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: del: %w", err)
	}
	return nil
}

// ─── Memory ──────────────────────────────────────────────────────────────────

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

type memoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemory() Store {
	return &memoryStore{items: make(map[string]memoryItem), now: time.Now}
}

func (s *memoryStore) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	s.mu.Lock()
	item, ok := s.items[key]
	if ok && !item.expiresAt.IsZero() && s.now().After(item.expiresAt) {
		delete(s.items, key)
		ok = false
	}
	s.mu.Unlock()

	if !ok || json.Unmarshal(item.data, dest) != nil {
		metrics.CacheMisses.WithLabelValues("memory").Inc()
		return false, nil
	}
	metrics.CacheHits.WithLabelValues("memory").Inc()
	return true, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	item := memoryItem{data: data}
	if ttl > 0 {
		item.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = item
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.items, k)
	}
	s.mu.Unlock()
	return nil
}
