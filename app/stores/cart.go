// Package stores holds the per-user cart and browse history. Each has a
// Redis implementation for production and a memory one for tests and
// single-process development.
package stores

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/dailyfresh/pkg/cache"
)

// Items maps a SKU id to the quantity in the cart.
type Items map[uint]int

// Units is the sum of all quantities.
func (it Items) Units() int {
	n := 0
	for _, c := range it {
		n += c
	}
	return n
}

func (it Items) clone() Items {
	out := make(Items, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

// CartStore keeps one cart per user.
//
// Mutate hands fn a copy of the current cart. If fn returns nil the edited
// copy is written back atomically with respect to other Mutate calls for
// the same user; an error from fn is returned unchanged and nothing is
// written. Backend failures wrap cache.ErrUnavailable.
type CartStore interface {
	Items(ctx context.Context, userID uint) (Items, error)
	Len(ctx context.Context, userID uint) (int, error)
	Mutate(ctx context.Context, userID uint, fn func(Items) error) (Items, error)
}

// ─── Redis ───────────────────────────────────────────────────────────────────

const cartMaxRetries = 3

// ErrConflict is returned when a cart kept changing under Mutate.
var ErrConflict = errors.New("cart: concurrent modification")

type redisCart struct {
	rdb *redis.Client
}

// NewRedisCart stores each cart as a hash at cart_<user id> mapping SKU id
// to quantity.
func NewRedisCart(rdb *redis.Client) CartStore {
	return &redisCart{rdb: rdb}
}

func cartKey(userID uint) string { return fmt.Sprintf("cart_%d", userID) }

func (s *redisCart) Items(ctx context.Context, userID uint) (Items, error) {
	if s.rdb == nil {
		return nil, cache.ErrUnavailable
	}
	raw, err := s.rdb.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cart: read %d: %w: %w", userID, cache.ErrUnavailable, err)
	}
	return decodeCart(raw), nil
}

func (s *redisCart) Len(ctx context.Context, userID uint) (int, error) {
	if s.rdb == nil {
		return 0, cache.ErrUnavailable
	}
	n, err := s.rdb.HLen(ctx, cartKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("cart: len %d: %w: %w", userID, cache.ErrUnavailable, err)
	}
	return int(n), nil
}

func (s *redisCart) Mutate(ctx context.Context, userID uint, fn func(Items) error) (Items, error) {
	if s.rdb == nil {
		return nil, cache.ErrUnavailable
	}
	key := cartKey(userID)

	var result Items
	var fnErr error
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		before := decodeCart(raw)
		after := before.clone()
		if fnErr = fn(after); fnErr != nil {
			return nil
		}

		var set []interface{}
		var del []string
		for id, n := range after {
			if before[id] != n {
				set = append(set, strconv.FormatUint(uint64(id), 10), n)
			}
		}
		for id := range before {
			if _, ok := after[id]; !ok {
				del = append(del, strconv.FormatUint(uint64(id), 10))
			}
		}
		if len(set) == 0 && len(del) == 0 {
			result = after
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(set) > 0 {
				pipe.HSet(ctx, key, set...)
			}
			if len(del) > 0 {
				pipe.HDel(ctx, key, del...)
			}
			return nil
		})
		if err == nil {
			result = after
		}
		return err
	}

	for i := 0; i < cartMaxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		switch {
		case err == nil && fnErr != nil:
			return nil, fnErr
		case err == nil:
			return result, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return nil, fmt.Errorf("cart: mutate %d: %w: %w", userID, cache.ErrUnavailable, err)
		}
	}
	return nil, fmt.Errorf("cart: mutate %d: %w", userID, ErrConflict)
}

// decodeCart skips fields that are not valid ids or counts.
func decodeCart(raw map[string]string) Items {
	out := make(Items, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		out[uint(id)] = n
	}
	return out
}

// ─── Memory ──────────────────────────────────────────────────────────────────

type memoryCart struct {
	mu    sync.Mutex
	carts map[uint]Items
}

func NewMemoryCart() CartStore {
	return &memoryCart{carts: make(map[uint]Items)}
}

func (s *memoryCart) Items(_ context.Context, userID uint) (Items, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[userID].clone(), nil
}

func (s *memoryCart) Len(_ context.Context, userID uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts[userID]), nil
}

func (s *memoryCart) Mutate(_ context.Context, userID uint, fn func(Items) error) (Items, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.carts[userID].clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.carts[userID] = next
	return next.clone(), nil
}
