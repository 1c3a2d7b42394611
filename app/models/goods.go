package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SKU status values.
const (
	SKUOffline int8 = 0
	SKUOnline  int8 = 1
)

// Banner display types for IndexTypeGoodsBanner.
const (
	DisplayTitle int8 = 0
	DisplayImage int8 = 1
)

// Category is a goods type such as fruit or seafood.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:20;not null" json:"name"`
	Logo      string    `gorm:"size:20" json:"logo"`
	Image     string    `gorm:"size:255" json:"image"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Goods is an SPU: the product that groups several SKUs.
type Goods struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:20;not null" json:"name"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// GoodsSKU is the purchasable unit; carts and orders reference it.
type GoodsSKU struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CategoryID uint            `gorm:"not null;index" json:"category_id"`
	GoodsID    uint            `gorm:"not null;index" json:"goods_id"`
	Name       string          `gorm:"size:20;not null" json:"name"`
	Desc       string          `gorm:"size:256" json:"desc"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Unit       string          `gorm:"size:20" json:"unit"`
	Image      string          `gorm:"size:255" json:"image"`
	Stock      int             `gorm:"not null;default:1" json:"stock"`
	Sales      int             `gorm:"not null;default:0" json:"sales"`
	Status     int8            `gorm:"not null;default:1" json:"status"`
	CreatedAt  time.Time       `json:"-"`
	UpdatedAt  time.Time       `json:"-"`

	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
	Goods    Goods    `gorm:"foreignKey:GoodsID" json:"-"`
}

func (GoodsSKU) TableName() string { return "goods_skus" }

// IndexGoodsBanner is a home-page carousel slide.
type IndexGoodsBanner struct {
	ID    uint     `gorm:"primaryKey" json:"id"`
	SKUID uint     `gorm:"not null;index" json:"sku_id"`
	Image string   `gorm:"size:255" json:"image"`
	Index int      `gorm:"column:sort_index;not null;default:0" json:"index"`
	SKU   GoodsSKU `gorm:"foreignKey:SKUID" json:"-"`
}

// IndexTypeGoodsBanner places a SKU in a category row on the home page,
// either as a text link or an image tile.
type IndexTypeGoodsBanner struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	CategoryID  uint     `gorm:"not null;index" json:"category_id"`
	SKUID       uint     `gorm:"not null;index" json:"sku_id"`
	DisplayType int8     `gorm:"not null;default:1" json:"display_type"`
	Index       int      `gorm:"column:sort_index;not null;default:0" json:"index"`
	SKU         GoodsSKU `gorm:"foreignKey:SKUID" json:"-"`
}

// IndexPromotionBanner is a promotional tile linking elsewhere.
type IndexPromotionBanner struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:20;not null" json:"name"`
	URL   string `gorm:"size:256" json:"url"`
	Image string `gorm:"size:255" json:"image"`
	Index int    `gorm:"column:sort_index;not null;default:0" json:"index"`
}
