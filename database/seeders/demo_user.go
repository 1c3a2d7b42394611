package seeders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
)

const (
	DemoUsername = "demo"
	DemoPassword = "demo1234"
)

// seedDemoUser creates an active account with a default address and a
// couple of past orders over the seeded catalog.
func seedDemoUser(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", DemoUsername).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		logger.Info("seed: demo user already present, skipping")
		return nil
	}

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u := models.User{Username: DemoUsername, Email: "demo@example.com", Password: hash, IsActive: true}
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		addr := models.Address{
			UserID: u.ID, Receiver: "Demo", Addr: "1 Market Street", ZipCode: "100000",
			Phone: "13800000000", IsDefault: true,
		}
		if err := tx.Create(&addr).Error; err != nil {
			return err
		}

		var skus []models.GoodsSKU
		if err := tx.Order("id").Limit(3).Find(&skus).Error; err != nil {
			return err
		}
		if len(skus) == 0 {
			return nil
		}

		now := time.Now()
		statuses := []int8{models.OrderCompleted, models.OrderUnpaid}
		for i, st := range statuses {
			at := now.Add(-time.Duration(len(statuses)-i) * 24 * time.Hour)
			o := models.OrderInfo{
				OrderID:      at.Format("20060102150405") + fmt.Sprint(u.ID),
				UserID:       u.ID,
				AddressID:    addr.ID,
				PayMethod:    models.PayAlipay,
				TransitPrice: decimal.NewFromInt(10),
				OrderStatus:  st,
				CreatedAt:    at,
			}
			total := decimal.Zero
			for j, s := range skus[:min(len(skus), i+2)] {
				count := j + 1
				o.Lines = append(o.Lines, models.OrderGoods{
					OrderID: o.OrderID, SKUID: s.ID, Count: count, Price: s.Price,
					Comment: commentFor(st),
				})
				o.TotalCount += count
				total = total.Add(s.Price.Mul(decimal.NewFromInt(int64(count))))
			}
			o.TotalPrice = total
			if err := tx.Create(&o).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func commentFor(status int8) string {
	if status == models.OrderCompleted {
		return "Very fresh, will buy again."
	}
	return ""
}
