package stores

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/dailyfresh/pkg/cache"
	"github.com/shashiranjanraj/dailyfresh/pkg/collection"
)

// HistoryStore keeps each user's most recently viewed SKUs, newest first,
// without duplicates and capped at the store's size.
type HistoryStore interface {
	Record(ctx context.Context, userID, skuID uint) error
	Recent(ctx context.Context, userID uint) ([]uint, error)
}

type redisHistory struct {
	rdb  *redis.Client
	size int
}

// NewRedisHistory keeps a list at history_<user id>.
func NewRedisHistory(rdb *redis.Client, size int) HistoryStore {
	return &redisHistory{rdb: rdb, size: size}
}

func historyKey(userID uint) string { return fmt.Sprintf("history_%d", userID) }

func (s *redisHistory) Record(ctx context.Context, userID, skuID uint) error {
	if s.rdb == nil {
		return cache.ErrUnavailable
	}
	key := historyKey(userID)
	id := strconv.FormatUint(uint64(skuID), 10)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, key, 0, id)
		pipe.LPush(ctx, key, id)
		pipe.LTrim(ctx, key, 0, int64(s.size-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("history: record %d: %w: %w", userID, cache.ErrUnavailable, err)
	}
	return nil
}

func (s *redisHistory) Recent(ctx context.Context, userID uint) ([]uint, error) {
	if s.rdb == nil {
		return nil, cache.ErrUnavailable
	}
	raw, err := s.rdb.LRange(ctx, historyKey(userID), 0, int64(s.size-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("history: recent %d: %w: %w", userID, cache.ErrUnavailable, err)
	}
	out := make([]uint, 0, len(raw))
	for _, v := range raw {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			out = append(out, uint(id))
		}
	}
	return out, nil
}

type memoryHistory struct {
	mu    sync.Mutex
	size  int
	lists map[uint][]uint
}

func NewMemoryHistory(size int) HistoryStore {
	return &memoryHistory{size: size, lists: make(map[uint][]uint)}
}

func (s *memoryHistory) Record(_ context.Context, userID, skuID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rest := collection.Filter(s.lists[userID], func(id uint) bool { return id != skuID })
	s.lists[userID] = collection.Take(append([]uint{skuID}, rest...), s.size)
	return nil
}

func (s *memoryHistory) Recent(_ context.Context, userID uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint(nil), s.lists[userID]...), nil
}
