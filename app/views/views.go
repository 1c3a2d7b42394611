// Package views turns models into the JSON page contexts returned by the
// controllers. Derived values such as line amounts and status labels are
// computed here and never stored on the models.
package views

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/pkg/collection"
	"github.com/shashiranjanraj/dailyfresh/pkg/paginate"
	"github.com/shashiranjanraj/dailyfresh/pkg/storage"
)

type Category struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Logo  string `json:"logo"`
	Image string `json:"image"`
}

func NewCategory(c models.Category) Category {
	return Category{ID: c.ID, Name: c.Name, Logo: c.Logo, Image: storage.URL(c.Image)}
}

func NewCategories(cs []models.Category) []Category {
	return collection.Map(cs, NewCategory)
}

type SKU struct {
	ID         uint            `json:"id"`
	CategoryID uint            `json:"category_id"`
	GoodsID    uint            `json:"goods_id"`
	Name       string          `json:"name"`
	Desc       string          `json:"desc"`
	Price      decimal.Decimal `json:"price"`
	Unit       string          `json:"unit"`
	Image      string          `json:"image"`
	Stock      int             `json:"stock"`
	Sales      int             `json:"sales"`
}

func NewSKU(s models.GoodsSKU) SKU {
	return SKU{
		ID:         s.ID,
		CategoryID: s.CategoryID,
		GoodsID:    s.GoodsID,
		Name:       s.Name,
		Desc:       s.Desc,
		Price:      s.Price,
		Unit:       s.Unit,
		Image:      storage.URL(s.Image),
		Stock:      s.Stock,
		Sales:      s.Sales,
	}
}

func NewSKUs(ss []models.GoodsSKU) []SKU {
	return collection.Map(ss, NewSKU)
}

// ─── Home ────────────────────────────────────────────────────────────────────

type Banner struct {
	ID    uint   `json:"id"`
	Image string `json:"image"`
	Index int    `json:"index"`
	SKU   SKU    `json:"sku"`
}

type PromotionBanner struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Image string `json:"image"`
	Index int    `json:"index"`
}

// CategoryRow is one category section of the home page.
type CategoryRow struct {
	Category
	ImageBanners []Banner `json:"image_banners"`
	TitleBanners []Banner `json:"title_banners"`
}

// Home is cached as a whole; CartCount is filled in per request.
type Home struct {
	Types            []CategoryRow     `json:"types"`
	GoodsBanners     []Banner          `json:"goods_banners"`
	PromotionBanners []PromotionBanner `json:"promotion_banners"`
	CartCount        int               `json:"cart_count"`
}

func NewGoodsBanners(bs []models.IndexGoodsBanner) []Banner {
	return collection.Map(bs, func(b models.IndexGoodsBanner) Banner {
		return Banner{ID: b.ID, Image: storage.URL(b.Image), Index: b.Index, SKU: NewSKU(b.SKU)}
	})
}

func NewTypeBanners(bs []models.IndexTypeGoodsBanner) []Banner {
	return collection.Map(bs, func(b models.IndexTypeGoodsBanner) Banner {
		return Banner{ID: b.ID, Image: storage.URL(b.SKU.Image), Index: b.Index, SKU: NewSKU(b.SKU)}
	})
}

func NewPromotionBanners(bs []models.IndexPromotionBanner) []PromotionBanner {
	return collection.Map(bs, func(b models.IndexPromotionBanner) PromotionBanner {
		return PromotionBanner{ID: b.ID, Name: b.Name, URL: b.URL, Image: storage.URL(b.Image), Index: b.Index}
	})
}

// ─── Detail / list ───────────────────────────────────────────────────────────

type Comment struct {
	Comment   string    `json:"comment"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Detail struct {
	SKU       SKU        `json:"sku"`
	GoodsName string     `json:"goods_name"`
	GoodsInfo string     `json:"goods_detail"`
	Category  Category   `json:"category"`
	Types     []Category `json:"types"`
	Comments  []Comment  `json:"comments"`
	NewSKUs   []SKU      `json:"new_skus"`
	SameSPU   []SKU      `json:"same_spu_skus"`
	CartCount int        `json:"cart_count"`
}

func NewComments(lines []models.OrderGoods) []Comment {
	return collection.Map(lines, func(l models.OrderGoods) Comment {
		return Comment{Comment: l.Comment, UpdatedAt: l.UpdatedAt}
	})
}

type List struct {
	Category  Category      `json:"type"`
	Types     []Category    `json:"types"`
	SKUs      []SKU         `json:"skus"`
	Page      paginate.Page `json:"page"`
	NewSKUs   []SKU         `json:"new_skus"`
	Sort      string        `json:"sort"`
	CartCount int           `json:"cart_count"`
}

// ─── Cart ────────────────────────────────────────────────────────────────────

type CartLine struct {
	SKU    SKU             `json:"sku"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type Cart struct {
	Lines      []CartLine      `json:"skus"`
	TotalCount int             `json:"total_count"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func NewCartLine(s models.GoodsSKU, count int) CartLine {
	return CartLine{SKU: NewSKU(s), Count: count, Amount: lineAmount(s.Price, count)}
}

// NewCart totals the lines.
func NewCart(lines []CartLine) Cart {
	if lines == nil {
		lines = []CartLine{}
	}
	return Cart{
		Lines:      lines,
		TotalCount: collection.Reduce(lines, 0, func(n int, l CartLine) int { return n + l.Count }),
		TotalPrice: collection.Reduce(lines, decimal.Zero, func(sum decimal.Decimal, l CartLine) decimal.Decimal {
			return sum.Add(l.Amount)
		}),
	}
}

func lineAmount(price decimal.Decimal, count int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(count)))
}

// ─── Account ─────────────────────────────────────────────────────────────────

type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewUser(u models.User) User {
	return User{ID: u.ID, Username: u.Username, Email: u.Email}
}

type Address struct {
	ID        uint   `json:"id"`
	Receiver  string `json:"receiver"`
	Addr      string `json:"addr"`
	ZipCode   string `json:"zip_code"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"is_default"`
}

func NewAddress(a models.Address) Address {
	return Address{ID: a.ID, Receiver: a.Receiver, Addr: a.Addr, ZipCode: a.ZipCode, Phone: a.Phone, IsDefault: a.IsDefault}
}

func NewAddresses(as []models.Address) []Address {
	return collection.Map(as, NewAddress)
}

type UserInfo struct {
	User    User     `json:"user"`
	Address *Address `json:"address"`
	History []SKU    `json:"goods_li"`
}

// AddressPage is the address book context: the default address plus the
// full list.
type AddressPage struct {
	Address   *Address  `json:"address"`
	Addresses []Address `json:"addresses"`
}
