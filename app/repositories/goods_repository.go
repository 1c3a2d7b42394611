package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/pkg/collection"
	"github.com/shashiranjanraj/dailyfresh/pkg/orm"
	"github.com/shashiranjanraj/dailyfresh/pkg/paginate"
)

// Sort orders accepted by ListSKUs.
const (
	SortDefault = "default"
	SortPrice   = "price"
	SortHot     = "hot"
)

// GoodsRepository reads the catalog.
type GoodsRepository struct {
	db *gorm.DB
}

func NewGoodsRepository(db *gorm.DB) *GoodsRepository {
	return &GoodsRepository{db: db}
}

func (r *GoodsRepository) q(ctx context.Context) *orm.Query {
	return orm.Use(r.db).WithContext(ctx)
}

// FindSKU returns the SKU with its category and SPU, or orm.ErrNotFound.
func (r *GoodsRepository) FindSKU(ctx context.Context, id uint) (*models.GoodsSKU, error) {
	var sku models.GoodsSKU
	err := r.q(ctx).Preload("Category").Preload("Goods").Where("id = ?", id).First(&sku)
	if err != nil {
		return nil, fmt.Errorf("goods: find sku %d: %w", id, err)
	}
	return &sku, nil
}

// FindSKUs loads the given ids; ids that do not exist are simply absent
// from the map.
func (r *GoodsRepository) FindSKUs(ctx context.Context, ids []uint) (map[uint]models.GoodsSKU, error) {
	if len(ids) == 0 {
		return map[uint]models.GoodsSKU{}, nil
	}
	var skus []models.GoodsSKU
	if err := r.q(ctx).Where("id IN ?", ids).Get(&skus); err != nil {
		return nil, fmt.Errorf("goods: find skus: %w", err)
	}
	return collection.KeyBy(skus, func(s models.GoodsSKU) uint { return s.ID }), nil
}

func (r *GoodsRepository) Categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.q(ctx).Order("id").Get(&cats); err != nil {
		return nil, fmt.Errorf("goods: categories: %w", err)
	}
	return cats, nil
}

func (r *GoodsRepository) FindCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.q(ctx).Where("id = ?", id).First(&c); err != nil {
		return nil, fmt.Errorf("goods: find category %d: %w", id, err)
	}
	return &c, nil
}

func (r *GoodsRepository) GoodsBanners(ctx context.Context) ([]models.IndexGoodsBanner, error) {
	var banners []models.IndexGoodsBanner
	if err := r.q(ctx).Preload("SKU").Order("sort_index").Get(&banners); err != nil {
		return nil, fmt.Errorf("goods: carousel banners: %w", err)
	}
	return banners, nil
}

func (r *GoodsRepository) PromotionBanners(ctx context.Context) ([]models.IndexPromotionBanner, error) {
	var banners []models.IndexPromotionBanner
	if err := r.q(ctx).Order("sort_index").Get(&banners); err != nil {
		return nil, fmt.Errorf("goods: promotion banners: %w", err)
	}
	return banners, nil
}

// TypeBanners returns a category's home-page row entries of one display type.
func (r *GoodsRepository) TypeBanners(ctx context.Context, categoryID uint, displayType int8) ([]models.IndexTypeGoodsBanner, error) {
	var banners []models.IndexTypeGoodsBanner
	err := r.q(ctx).Preload("SKU").
		Where("category_id = ? AND display_type = ?", categoryID, displayType).
		Order("sort_index").
		Get(&banners)
	if err != nil {
		return nil, fmt.Errorf("goods: type banners for %d: %w", categoryID, err)
	}
	return banners, nil
}

// NewestSKUs returns the most recently created SKUs of a category.
func (r *GoodsRepository) NewestSKUs(ctx context.Context, categoryID uint, limit int) ([]models.GoodsSKU, error) {
	var skus []models.GoodsSKU
	err := r.q(ctx).Where("category_id = ?", categoryID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Get(&skus)
	if err != nil {
		return nil, fmt.Errorf("goods: newest skus for %d: %w", categoryID, err)
	}
	return skus, nil
}

// SiblingSKUs returns the other SKUs of the same SPU.
func (r *GoodsRepository) SiblingSKUs(ctx context.Context, goodsID, excludeID uint) ([]models.GoodsSKU, error) {
	var skus []models.GoodsSKU
	err := r.q(ctx).Where("goods_id = ? AND id <> ?", goodsID, excludeID).Order("id").Get(&skus)
	if err != nil {
		return nil, fmt.Errorf("goods: sibling skus of %d: %w", goodsID, err)
	}
	return skus, nil
}

// Comments returns order lines for the SKU that carry a review comment,
// newest first.
func (r *GoodsRepository) Comments(ctx context.Context, skuID uint) ([]models.OrderGoods, error) {
	var lines []models.OrderGoods
	err := r.q(ctx).Where("sku_id = ? AND comment <> ''", skuID).Order("updated_at DESC").Get(&lines)
	if err != nil {
		return nil, fmt.Errorf("goods: comments for %d: %w", skuID, err)
	}
	return lines, nil
}

// ListSKUs pages through a category. Unknown sort values use SortDefault.
func (r *GoodsRepository) ListSKUs(ctx context.Context, categoryID uint, sort, rawPage string, perPage int) ([]models.GoodsSKU, paginate.Page, error) {
	q := r.q(ctx).Model(&models.GoodsSKU{}).Where("category_id = ?", categoryID)
	switch sort {
	case SortPrice:
		q = q.Order("price").Order("id")
	case SortHot:
		q = q.Order("sales DESC").Order("id DESC")
	default:
		q = q.Order("id DESC")
	}

	var skus []models.GoodsSKU
	page, err := q.Paginate(rawPage, perPage, &skus)
	if err != nil {
		return nil, paginate.Page{}, fmt.Errorf("goods: list category %d: %w", categoryID, err)
	}
	return skus, page, nil
}
