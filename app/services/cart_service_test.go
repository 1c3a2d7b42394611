package services_test

import (
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/dailyfresh/app/services"
	"github.com/shashiranjanraj/dailyfresh/app/stores"
	"github.com/shashiranjanraj/dailyfresh/pkg/event"
)

func id(n uint) string { return strconv.FormatUint(uint64(n), 10) }

func TestCartService_AddItemValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := principal(1)
	apple := id(e.catalog.AppleSmall.ID)

	tests := []struct {
		name       string
		p          bool
		sku, count string
		want       error
	}{
		{"anonymous", false, apple, "1", services.ErrNotAuthenticated},
		{"missing sku", true, "", "1", services.ErrIncompleteInput},
		{"missing count", true, apple, "", services.ErrIncompleteInput},
		{"non-numeric count", true, apple, "two", services.ErrInvalidCount},
		{"zero count", true, apple, "0", services.ErrInvalidCount},
		{"negative count", true, apple, "-3", services.ErrInvalidCount},
		{"non-numeric sku", true, "abc", "1", services.ErrInvalidSKU},
		{"unknown sku", true, "9999", "1", services.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			who := p
			if !tt.p {
				who = nil
			}
			_, err := e.Cart.AddItem(ctx, who, tt.sku, tt.count)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	n, err := e.Cart.Count(ctx, p)
	require.NoError(t, err)
	assert.Zero(t, n, "rejected adds must not touch the cart")
}

func TestCartService_AddItemAccumulatesAndChecksStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := principal(1)
	large := id(e.catalog.AppleLarge.ID) // stock 3

	n, err := e.Cart.AddItem(ctx, p, large, "2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = e.Cart.AddItem(ctx, p, large, "2")
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	n, err = e.Cart.AddItem(ctx, p, large, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = e.Cart.AddItem(ctx, p, id(e.catalog.Shrimp.ID), "5")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "add reports distinct items")

	items, err := e.carts.Items(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, stores.Items{e.catalog.AppleLarge.ID: 3, e.catalog.Shrimp.ID: 5}, items)

	_, err = e.Cart.AddItem(ctx, p, id(e.catalog.Pear.ID), "1")
	assert.ErrorIs(t, err, services.ErrInsufficientStock, "pear is out of stock")
}

func TestCartService_HugeCountCannotWrapStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := principal(1)
	large := id(e.catalog.AppleLarge.ID) // stock 3
	maxInt := strconv.Itoa(math.MaxInt)

	_, err := e.Cart.AddItem(ctx, p, large, "1")
	require.NoError(t, err)

	_, err = e.Cart.AddItem(ctx, p, large, maxInt)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)
	_, err = e.Cart.SetItemQuantity(ctx, p, large, maxInt)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	items, err := e.carts.Items(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, stores.Items{e.catalog.AppleLarge.ID: 1}, items, "rejected edits leave the quantity alone")

	cart, err := e.Cart.ViewCart(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.TotalCount)
}

func TestCartService_SetItemQuantityRejectsNonNumericSKU(t *testing.T) {
	e := newEnv(t)
	_, err := e.Cart.SetItemQuantity(context.Background(), principal(1), "abc", "1")
	assert.ErrorIs(t, err, services.ErrInvalidSKU)
	assert.NotErrorIs(t, err, services.ErrNotFound)
}

func TestCartService_SetAndRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := principal(1)
	large, shrimp := id(e.catalog.AppleLarge.ID), id(e.catalog.Shrimp.ID)

	_, err := e.Cart.AddItem(ctx, p, shrimp, "4")
	require.NoError(t, err)

	total, err := e.Cart.SetItemQuantity(ctx, p, large, "3")
	require.NoError(t, err)
	assert.Equal(t, 7, total, "update reports unit sum")

	_, err = e.Cart.SetItemQuantity(ctx, p, large, "4")
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	total, err = e.Cart.SetItemQuantity(ctx, p, shrimp, "1")
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	_, err = e.Cart.RemoveItem(ctx, p, "")
	assert.ErrorIs(t, err, services.ErrIncompleteInput)
	_, err = e.Cart.RemoveItem(ctx, p, "x")
	assert.ErrorIs(t, err, services.ErrInvalidSKU)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	_, err = e.Cart.RemoveItem(ctx, nil, shrimp)
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	total, err = e.Cart.RemoveItem(ctx, p, "9999")
	require.NoError(t, err)
	assert.Equal(t, 4, total, "removing an absent sku is a no-op")

	total, err = e.Cart.RemoveItem(ctx, p, shrimp)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	total, err = e.Cart.RemoveItem(ctx, p, shrimp)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestCartService_ViewCart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := principal(1)

	_, err := e.Cart.AddItem(ctx, p, id(e.catalog.AppleSmall.ID), "2")
	require.NoError(t, err)
	_, err = e.Cart.AddItem(ctx, p, id(e.catalog.Shrimp.ID), "1")
	require.NoError(t, err)
	_, err = e.carts.Mutate(ctx, 1, func(it stores.Items) error { it[4242] = 9; return nil })
	require.NoError(t, err)

	cart, err := e.Cart.ViewCart(ctx, p)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2, "deleted sku is skipped")
	assert.Equal(t, "Apple 500g", cart.Lines[0].SKU.Name)
	assert.True(t, decimal.RequireFromString("21").Equal(cart.Lines[0].Amount))
	assert.Equal(t, 3, cart.TotalCount)
	assert.True(t, decimal.RequireFromString("60.9").Equal(cart.TotalPrice))

	_, err = e.Cart.ViewCart(ctx, nil)
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	empty, err := e.Cart.ViewCart(ctx, principal(2))
	require.NoError(t, err)
	assert.Empty(t, empty.Lines)
	assert.True(t, empty.TotalPrice.IsZero())
}

func TestCartService_RemoveItemOnRedis(t *testing.T) {
	e := newEnv(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	svc := services.NewCartService(e.goods, stores.NewRedisCart(rdb))
	ctx := context.Background()
	p := principal(9)

	total, err := svc.RemoveItem(ctx, p, id(e.catalog.Shrimp.ID))
	require.NoError(t, err)
	assert.Zero(t, total, "empty cart")
	assert.False(t, mr.Exists("cart_9"))

	_, err = svc.AddItem(ctx, p, id(e.catalog.Shrimp.ID), "2")
	require.NoError(t, err)
	total, err = svc.RemoveItem(ctx, p, "9999")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	total, err = svc.RemoveItem(ctx, p, id(e.catalog.Shrimp.ID))
	require.NoError(t, err)
	assert.Zero(t, total)
	total, err = svc.RemoveItem(ctx, p, id(e.catalog.Shrimp.ID))
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCartService_StoreUnavailable(t *testing.T) {
	e := newEnv(t)
	svc := services.NewCartService(e.goods, stores.NewRedisCart(nil))
	ctx := context.Background()

	_, err := svc.AddItem(ctx, principal(1), id(e.catalog.Shrimp.ID), "1")
	assert.ErrorIs(t, err, services.ErrServiceUnavailable)
	_, err = svc.RemoveItem(ctx, principal(1), "1")
	assert.ErrorIs(t, err, services.ErrServiceUnavailable)
	_, err = svc.Count(ctx, principal(1))
	assert.ErrorIs(t, err, services.ErrServiceUnavailable)

	n, err := svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCartService_ChangeEventsFollowMutationOrder(t *testing.T) {
	defer event.Flush()
	e := newEnv(t)
	ctx := context.Background()
	p := principal(6)

	var got []event.CartChange
	event.Listen(event.CartChanged, func(payload interface{}) {
		got = append(got, payload.(event.CartChange))
	})

	shrimp, small := id(e.catalog.Shrimp.ID), id(e.catalog.AppleSmall.ID)
	_, err := e.Cart.AddItem(ctx, p, shrimp, "1")
	require.NoError(t, err)
	_, err = e.Cart.AddItem(ctx, p, small, "1")
	require.NoError(t, err)
	_, err = e.Cart.SetItemQuantity(ctx, p, small, "2")
	require.NoError(t, err)
	_, err = e.Cart.RemoveItem(ctx, p, shrimp)
	require.NoError(t, err)
	_, err = e.Cart.AddItem(ctx, p, small, "0")
	require.Error(t, err)

	counts := make([]int, len(got))
	for i, c := range got {
		assert.Equal(t, uint(6), c.UserID)
		counts[i] = c.Count
	}
	assert.Equal(t, []int{1, 2, 2, 1}, counts, "delivered synchronously, rejected edits fire nothing")
}
