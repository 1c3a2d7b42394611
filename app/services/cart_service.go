package services

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/app/repositories"
	"github.com/shashiranjanraj/dailyfresh/app/stores"
	"github.com/shashiranjanraj/dailyfresh/app/views"
	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
	"github.com/shashiranjanraj/dailyfresh/pkg/collection"
	"github.com/shashiranjanraj/dailyfresh/pkg/event"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
	"github.com/shashiranjanraj/dailyfresh/pkg/metrics"
)

// CartService edits and reads the signed-in user's cart.
type CartService struct {
	goods *repositories.GoodsRepository
	carts stores.CartStore
}

func NewCartService(goods *repositories.GoodsRepository, carts stores.CartStore) *CartService {
	return &CartService{goods: goods, carts: carts}
}

// AddItem adds count units of a SKU on top of what the cart already holds
// and returns the number of distinct SKUs in the cart.
func (s *CartService) AddItem(ctx context.Context, p *auth.Principal, rawSKU, rawCount string) (int, error) {
	items, err := s.mutate(ctx, "add", p, rawSKU, rawCount, func(it stores.Items, sku *models.GoodsSKU, count int) error {
		if err := checkStock(sku, it[sku.ID], count); err != nil {
			return err
		}
		it[sku.ID] += count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// SetItemQuantity overwrites a SKU's quantity and returns the total number
// of units in the cart.
func (s *CartService) SetItemQuantity(ctx context.Context, p *auth.Principal, rawSKU, rawCount string) (int, error) {
	items, err := s.mutate(ctx, "update", p, rawSKU, rawCount, func(it stores.Items, sku *models.GoodsSKU, count int) error {
		if err := checkStock(sku, 0, count); err != nil {
			return err
		}
		it[sku.ID] = count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return items.Units(), nil
}

// RemoveItem drops a SKU from the cart, whether or not it was there or
// still exists, and returns the total number of units left.
func (s *CartService) RemoveItem(ctx context.Context, p *auth.Principal, rawSKU string) (int, error) {
	if p == nil {
		return 0, ErrNotAuthenticated
	}
	rawSKU = strings.TrimSpace(rawSKU)
	if rawSKU == "" {
		metrics.RecordCartMutation("delete", "rejected")
		return 0, ErrIncompleteInput
	}
	id, err := strconv.ParseUint(rawSKU, 10, 64)
	if err != nil {
		metrics.RecordCartMutation("delete", "rejected")
		return 0, ErrInvalidSKU
	}

	items, err := s.carts.Mutate(ctx, p.UserID, func(it stores.Items) error {
		delete(it, uint(id))
		return nil
	})
	if err != nil {
		metrics.RecordCartMutation("delete", "error")
		return 0, unavailable(err)
	}
	s.changed(p.UserID, items, "delete")
	return items.Units(), nil
}

// ViewCart lists the cart with line amounts and totals. Entries whose SKU
// no longer exists are left out and logged.
func (s *CartService) ViewCart(ctx context.Context, p *auth.Principal) (views.Cart, error) {
	if p == nil {
		return views.Cart{}, ErrNotAuthenticated
	}
	items, err := s.carts.Items(ctx, p.UserID)
	if err != nil {
		return views.Cart{}, unavailable(err)
	}

	ids := make([]uint, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	skus, err := s.goods.FindSKUs(ctx, ids)
	if err != nil {
		return views.Cart{}, unavailable(err)
	}

	known := collection.Filter(ids, func(id uint) bool {
		if _, ok := skus[id]; ok {
			return true
		}
		logger.WithCtx(ctx).Warn("cart: skipping unknown sku", "user_id", p.UserID, "sku_id", id)
		return false
	})
	return views.NewCart(collection.Map(known, func(id uint) views.CartLine {
		return views.NewCartLine(skus[id], items[id])
	})), nil
}

// Count is the distinct-SKU count shown on the cart badge; 0 when
// anonymous.
func (s *CartService) Count(ctx context.Context, p *auth.Principal) (int, error) {
	return cartCount(ctx, s.carts, p)
}

func cartCount(ctx context.Context, carts stores.CartStore, p *auth.Principal) (int, error) {
	if p == nil {
		return 0, nil
	}
	n, err := carts.Len(ctx, p.UserID)
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

// checkStock reports whether held+count units would exceed the SKU's
// stock. Written as a subtraction so a huge count cannot wrap.
func checkStock(sku *models.GoodsSKU, held, count int) error {
	if count > sku.Stock-held {
		return ErrInsufficientStock
	}
	return nil
}

type cartEdit func(it stores.Items, sku *models.GoodsSKU, count int) error

// mutate validates the input in the order the cart endpoints report it:
// authentication, presence, count, SKU existence, then stock inside the
// compare-and-swap.
func (s *CartService) mutate(ctx context.Context, op string, p *auth.Principal, rawSKU, rawCount string, edit cartEdit) (stores.Items, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}
	rawSKU, rawCount = strings.TrimSpace(rawSKU), strings.TrimSpace(rawCount)
	if rawSKU == "" || rawCount == "" {
		metrics.RecordCartMutation(op, "rejected")
		return nil, ErrIncompleteInput
	}
	count, err := strconv.Atoi(rawCount)
	if err != nil || count < 1 {
		metrics.RecordCartMutation(op, "rejected")
		return nil, ErrInvalidCount
	}
	id, err := strconv.ParseUint(rawSKU, 10, 64)
	if err != nil {
		metrics.RecordCartMutation(op, "rejected")
		return nil, ErrInvalidSKU
	}
	sku, err := s.goods.FindSKU(ctx, uint(id))
	if err != nil {
		err = lookup(err)
		if errors.Is(err, ErrNotFound) {
			metrics.RecordCartMutation(op, "rejected")
		} else {
			metrics.RecordCartMutation(op, "error")
		}
		return nil, err
	}

	items, err := s.carts.Mutate(ctx, p.UserID, func(it stores.Items) error {
		return edit(it, sku, count)
	})
	switch {
	case errors.Is(err, ErrInsufficientStock):
		metrics.RecordCartMutation(op, "rejected")
		return nil, err
	case err != nil:
		metrics.RecordCartMutation(op, "error")
		return nil, unavailable(err)
	}
	s.changed(p.UserID, items, op)
	return items, nil
}

func (s *CartService) changed(userID uint, items stores.Items, op string) {
	metrics.RecordCartMutation(op, "ok")
	event.Fire(event.CartChanged, event.CartChange{UserID: userID, Count: len(items)})
}
