package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status values.
const (
	OrderUnpaid int8 = iota + 1
	OrderAwaitingShipment
	OrderAwaitingReceipt
	OrderAwaitingReview
	OrderCompleted
)

// Pay methods.
const (
	PayCashOnDelivery int8 = iota + 1
	PayWeChat
	PayAlipay
	PayUnionPay
)

// OrderInfo is an order header. Its primary key is the order number.
type OrderInfo struct {
	OrderID      string          `gorm:"primaryKey;size:128" json:"order_id"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	AddressID    uint            `gorm:"not null" json:"address_id"`
	PayMethod    int8            `gorm:"not null;default:3" json:"pay_method"`
	TotalCount   int             `gorm:"not null;default:1" json:"total_count"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	TransitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"transit_price"`
	OrderStatus  int8            `gorm:"not null;default:1" json:"order_status"`
	TradeNo      string          `gorm:"size:128" json:"trade_no"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time       `json:"-"`

	Lines []OrderGoods `gorm:"foreignKey:OrderID;references:OrderID" json:"-"`
}

// OrderGoods is one line of an order, priced at purchase time.
type OrderGoods struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   string          `gorm:"size:128;not null;index" json:"order_id"`
	SKUID     uint            `gorm:"not null;index" json:"sku_id"`
	Count     int             `gorm:"not null;default:1" json:"count"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Comment   string          `gorm:"size:256" json:"comment"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`

	SKU GoodsSKU `gorm:"foreignKey:SKUID" json:"-"`
}

func (OrderGoods) TableName() string { return "order_goods" }
