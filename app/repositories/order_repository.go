package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/pkg/orm"
	"github.com/shashiranjanraj/dailyfresh/pkg/paginate"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// PageByUser returns one page of the user's orders, newest first, with
// lines and their SKUs loaded.
func (r *OrderRepository) PageByUser(ctx context.Context, userID uint, rawPage string, perPage int) ([]models.OrderInfo, paginate.Page, error) {
	var orders []models.OrderInfo
	page, err := orm.Use(r.db).WithContext(ctx).
		Model(&models.OrderInfo{}).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Lines.SKU").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Paginate(rawPage, perPage, &orders)
	if err != nil {
		return nil, paginate.Page{}, fmt.Errorf("orders: page for %d: %w", userID, err)
	}
	return orders, page, nil
}
