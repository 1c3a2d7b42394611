package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/app/services"
	"github.com/shashiranjanraj/dailyfresh/app/views"
)

func TestCatalogService_HomeIsCached(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	home, err := e.Catalog.Home(ctx, nil)
	require.NoError(t, err)
	require.Len(t, home.Types, 2)
	fruit := home.Types[0]
	assert.Equal(t, "Fruit", fruit.Name)
	require.Len(t, fruit.ImageBanners, 1)
	assert.Equal(t, "Apple 500g", fruit.ImageBanners[0].SKU.Name)
	require.Len(t, fruit.TitleBanners, 1)
	assert.Equal(t, "Pear", fruit.TitleBanners[0].SKU.Name)
	require.Len(t, home.GoodsBanners, 2)
	assert.Equal(t, 0, home.GoodsBanners[0].Index)
	assert.Len(t, home.PromotionBanners, 1)
	assert.Zero(t, home.CartCount)

	var cached views.Home
	hit, err := e.cache.Get(ctx, services.HomeCacheKey, &cached)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Zero(t, cached.CartCount)

	require.NoError(t, e.db.Where("1 = 1").Delete(&models.IndexPromotionBanner{}).Error)

	_, err = e.Cart.AddItem(ctx, principal(3), id(e.catalog.Shrimp.ID), "2")
	require.NoError(t, err)
	home, err = e.Catalog.Home(ctx, principal(3))
	require.NoError(t, err)
	assert.Len(t, home.PromotionBanners, 1, "served from cache")
	assert.Equal(t, 1, home.CartCount)

	require.NoError(t, e.Catalog.ClearHome(ctx))
	home, err = e.Catalog.Home(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, home.PromotionBanners)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, interface{}) (bool, error) {
	return false, errors.New("redis down")
}

func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis down")
}

func (brokenCache) Del(context.Context, ...string) error { return errors.New("redis down") }

func TestCatalogService_HomeSurvivesCacheOutage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := services.NewCatalogService(e.goods, brokenCache{}, e.carts, e.history, services.CatalogOptions{HomeTTL: time.Hour})

	_, err := e.Cart.AddItem(ctx, principal(4), id(e.catalog.Shrimp.ID), "1")
	require.NoError(t, err)

	home, err := svc.Home(ctx, principal(4))
	require.NoError(t, err, "home is built from the database")
	assert.Len(t, home.Types, 2)
	assert.Len(t, home.PromotionBanners, 1)
	assert.Equal(t, 1, home.CartCount)

	home, err = svc.Home(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, home.CartCount)

	_, err = svc.WarmHome(ctx)
	assert.ErrorIs(t, err, services.ErrServiceUnavailable, "the scheduled warm-up reports the outage")
	assert.ErrorIs(t, svc.ClearHome(ctx), services.ErrServiceUnavailable)
}

func TestCatalogService_Detail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.catalog

	d, err := e.Catalog.Detail(ctx, nil, c.AppleSmall.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apple 500g", d.SKU.Name)
	assert.Equal(t, "Apple", d.GoodsName)
	assert.Equal(t, "Fruit", d.Category.Name)
	assert.Len(t, d.Types, 2)
	require.Len(t, d.SameSPU, 1)
	assert.Equal(t, c.AppleLarge.ID, d.SameSPU[0].ID)
	assert.Len(t, d.NewSKUs, 2)
	assert.Empty(t, d.Comments)

	recent, err := e.history.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, err = e.Catalog.Detail(ctx, principal(5), c.Shrimp.ID)
	require.NoError(t, err)
	_, err = e.Catalog.Detail(ctx, principal(5), c.Pear.ID)
	require.NoError(t, err)
	recent, err = e.history.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint{c.Pear.ID, c.Shrimp.ID}, recent)

	_, err = e.Catalog.Detail(ctx, principal(5), 9999)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCatalogService_List(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	l, err := e.Catalog.List(ctx, nil, e.catalog.Fruit.ID, "1", "price")
	require.NoError(t, err)
	assert.Equal(t, "Fruit", l.Category.Name)
	assert.Equal(t, "price", l.Sort)
	require.Len(t, l.SKUs, 3)
	assert.Equal(t, "Pear", l.SKUs[0].Name)
	assert.Equal(t, []int{1}, l.Page.Window)
	assert.Len(t, l.NewSKUs, 2)

	l, err = e.Catalog.List(ctx, nil, e.catalog.Fruit.ID, "7", "nonsense")
	require.NoError(t, err)
	assert.Equal(t, "default", l.Sort)
	assert.Equal(t, 1, l.Page.Number)

	_, err = e.Catalog.List(ctx, nil, 9999, "1", "")
	assert.ErrorIs(t, err, services.ErrNotFound)
}
