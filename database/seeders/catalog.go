package seeders

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
	"github.com/shashiranjanraj/dailyfresh/pkg/storage"
	"github.com/shashiranjanraj/dailyfresh/pkg/workerpool"
)

const uploadWorkers = 4

func init() {
	Register("catalog", seedCatalog)
	Register("demo_user", seedDemoUser)
}

// 1x1 transparent GIF written for every image path the demo rows use.
var placeholder = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x01, 0x44, 0x00, 0x3b,
}

type demoSKU struct {
	name, price, unit string
	stock, sales      int
}

type demoGoods struct {
	name string
	skus []demoSKU
}

type demoCategory struct {
	name, logo string
	goods      []demoGoods
}

var demoCatalog = []demoCategory{
	{"Fresh fruit", "fruit", []demoGoods{
		{"Strawberry", []demoSKU{{"Strawberry 500g", "25.80", "box", 40, 120}, {"Strawberry 1kg", "49.00", "box", 15, 40}}},
		{"Grape", []demoSKU{{"Grape", "16.80", "500g", 60, 35}}},
		{"Kiwi", []demoSKU{{"Kiwi", "12.50", "500g", 0, 80}}},
	}},
	{"Seafood", "seafood", []demoGoods{
		{"Prawn", []demoSKU{{"Prawn", "39.90", "500g", 25, 60}}},
		{"Scallop", []demoSKU{{"Scallop", "58.00", "box", 10, 12}}},
	}},
	{"Meat", "meat", []demoGoods{
		{"Beef", []demoSKU{{"Beef brisket", "68.00", "kg", 30, 22}, {"Beef steak", "88.00", "piece", 12, 9}}},
	}},
	{"Eggs", "egg", []demoGoods{
		{"Egg", []demoSKU{{"Free-range eggs", "18.00", "dozen", 100, 300}}},
	}},
	{"Vegetables", "vegetables", []demoGoods{
		{"Cabbage", []demoSKU{{"Cabbage", "3.50", "piece", 80, 45}}},
		{"Tomato", []demoSKU{{"Tomato", "6.80", "500g", 70, 150}}},
	}},
	{"Frozen", "ice", []demoGoods{
		{"Dumpling", []demoSKU{{"Pork dumplings", "22.00", "bag", 50, 66}}},
	}},
}

// seedCatalog creates the demo categories, goods and home page banners.
// It does nothing when categories already exist.
func seedCatalog(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Category{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		logger.Info("seed: catalog already present, skipping", "categories", n)
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var images []string
		slide := 0
		for ci, dc := range demoCatalog {
			cat := models.Category{Name: dc.name, Logo: dc.logo, Image: "type/" + dc.logo + ".png"}
			if err := tx.Create(&cat).Error; err != nil {
				return err
			}
			images = append(images, cat.Image)

			for _, dg := range dc.goods {
				g := models.Goods{Name: dg.name, Detail: "<p>" + dg.name + " delivered fresh.</p>"}
				if err := tx.Create(&g).Error; err != nil {
					return err
				}
				for si, ds := range dg.skus {
					sku := models.GoodsSKU{
						CategoryID: cat.ID,
						GoodsID:    g.ID,
						Name:       ds.name,
						Desc:       ds.name + " from local farms",
						Price:      decimal.RequireFromString(ds.price),
						Unit:       ds.unit,
						Image:      fmt.Sprintf("goods/%s_%d_%d.jpg", dc.logo, g.ID, si),
						Stock:      ds.stock,
						Sales:      ds.sales,
						Status:     models.SKUOnline,
					}
					if err := tx.Create(&sku).Error; err != nil {
						return err
					}
					images = append(images, sku.Image)

					display := models.DisplayImage
					if si > 0 {
						display = models.DisplayTitle
					}
					if err := tx.Create(&models.IndexTypeGoodsBanner{
						CategoryID: cat.ID, SKUID: sku.ID, DisplayType: display, Index: si,
					}).Error; err != nil {
						return err
					}

					if si == 0 && slide < 4 && ci%2 == 0 {
						b := models.IndexGoodsBanner{SKUID: sku.ID, Image: fmt.Sprintf("banner/slide%d.jpg", slide), Index: slide}
						if err := tx.Create(&b).Error; err != nil {
							return err
						}
						images = append(images, b.Image)
						slide++
					}
				}
			}
		}

		promos := []models.IndexPromotionBanner{
			{Name: "Fruit week", URL: "/list/1/1", Image: "banner/promo_fruit.jpg", Index: 0},
			{Name: "Seafood sale", URL: "/list/2/1", Image: "banner/promo_seafood.jpg", Index: 1},
		}
		if err := tx.Create(&promos).Error; err != nil {
			return err
		}
		for _, p := range promos {
			images = append(images, p.Image)
		}

		return putPlaceholders(ctx, images)
	})
}

// putPlaceholders writes the placeholder image for every path not already
// on the configured disk, a few uploads at a time. Without a disk it does
// nothing.
func putPlaceholders(ctx context.Context, paths []string) error {
	if storage.Current() == nil {
		return nil
	}

	var (
		mu       sync.Mutex
		firstErr error
	)
	pool := workerpool.New(uploadWorkers)
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		pool.SubmitOrRun(func() {
			if storage.Exists(ctx, p) {
				return
			}
			if err := storage.Put(ctx, p, bytes.NewReader(placeholder)); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("store %s: %w", p, err)
				}
				mu.Unlock()
			}
		})
	}
	pool.Shutdown()
	return firstErr
}
