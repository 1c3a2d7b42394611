// Package testdb opens migrated in-memory SQLite databases for tests and
// seeds a small fixed catalog.
package testdb

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	_ "github.com/shashiranjanraj/dailyfresh/database/migrations"
	"github.com/shashiranjanraj/dailyfresh/pkg/database"
	"github.com/shashiranjanraj/dailyfresh/pkg/migration"
)

// Open returns a fresh database named after the test, with every
// migration applied. It is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = migration.New(db, nil).Run()
	require.NoError(t, err)
	return db
}

// Catalog holds the rows created by SeedCatalog.
type Catalog struct {
	Fruit, Seafood models.Category

	// AppleSmall and AppleLarge share one SPU.
	AppleSmall models.GoodsSKU
	AppleLarge models.GoodsSKU
	// Pear is out of stock.
	Pear   models.GoodsSKU
	Shrimp models.GoodsSKU
}

func SeedCatalog(t testing.TB, db *gorm.DB) Catalog {
	t.Helper()

	var c Catalog
	c.Fruit = models.Category{Name: "Fruit", Logo: "fruit", Image: "type/fruit.png"}
	c.Seafood = models.Category{Name: "Seafood", Logo: "seafood", Image: "type/seafood.png"}
	require.NoError(t, db.Create(&c.Fruit).Error)
	require.NoError(t, db.Create(&c.Seafood).Error)

	apple := models.Goods{Name: "Apple"}
	pear := models.Goods{Name: "Pear"}
	shrimp := models.Goods{Name: "Shrimp"}
	require.NoError(t, db.Create(&apple).Error)
	require.NoError(t, db.Create(&pear).Error)
	require.NoError(t, db.Create(&shrimp).Error)

	c.AppleSmall = sku(c.Fruit.ID, apple.ID, "Apple 500g", "10.50", 10, 5)
	c.AppleLarge = sku(c.Fruit.ID, apple.ID, "Apple 1kg", "19.90", 3, 20)
	c.Pear = sku(c.Fruit.ID, pear.ID, "Pear", "8.00", 0, 1)
	c.Shrimp = sku(c.Seafood.ID, shrimp.ID, "Shrimp", "39.90", 50, 2)
	for _, s := range []*models.GoodsSKU{&c.AppleSmall, &c.AppleLarge, &c.Pear, &c.Shrimp} {
		require.NoError(t, db.Create(s).Error)
	}

	require.NoError(t, db.Create(&[]models.IndexGoodsBanner{
		{SKUID: c.Shrimp.ID, Image: "banner/shrimp.jpg", Index: 1},
		{SKUID: c.AppleSmall.ID, Image: "banner/apple.jpg", Index: 0},
	}).Error)
	require.NoError(t, db.Create(&[]models.IndexTypeGoodsBanner{
		{CategoryID: c.Fruit.ID, SKUID: c.AppleSmall.ID, DisplayType: models.DisplayImage, Index: 0},
		{CategoryID: c.Fruit.ID, SKUID: c.Pear.ID, DisplayType: models.DisplayTitle, Index: 0},
		{CategoryID: c.Seafood.ID, SKUID: c.Shrimp.ID, DisplayType: models.DisplayImage, Index: 0},
	}).Error)
	require.NoError(t, db.Create(&models.IndexPromotionBanner{
		Name: "Summer", URL: "/list/1/1", Image: "promo/summer.jpg", Index: 0,
	}).Error)
	return c
}

func sku(catID, goodsID uint, name, price string, stock, sales int) models.GoodsSKU {
	return models.GoodsSKU{
		CategoryID: catID,
		GoodsID:    goodsID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Unit:       "box",
		Image:      "goods/" + strings.ToLower(strings.ReplaceAll(name, " ", "_")) + ".jpg",
		Stock:      stock,
		Sales:      sales,
		Status:     models.SKUOnline,
	}
}

// SeedOrder stores an order with one line per sku, all bought at the
// SKU's current price.
func SeedOrder(t testing.TB, db *gorm.DB, orderID string, userID uint, at time.Time, counts map[*models.GoodsSKU]int) models.OrderInfo {
	t.Helper()

	o := models.OrderInfo{
		OrderID:      orderID,
		UserID:       userID,
		AddressID:    1,
		PayMethod:    models.PayAlipay,
		TransitPrice: decimal.NewFromInt(10),
		OrderStatus:  models.OrderUnpaid,
		CreatedAt:    at,
	}
	total := decimal.Zero
	for s, n := range counts {
		o.Lines = append(o.Lines, models.OrderGoods{OrderID: orderID, SKUID: s.ID, Count: n, Price: s.Price})
		o.TotalCount += n
		total = total.Add(s.Price.Mul(decimal.NewFromInt(int64(n))))
	}
	o.TotalPrice = total
	require.NoError(t, db.Create(&o).Error)
	return o
}
