package views

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/pkg/collection"
	"github.com/shashiranjanraj/dailyfresh/pkg/paginate"
)

var orderStatusNames = map[int8]string{
	models.OrderUnpaid:           "unpaid",
	models.OrderAwaitingShipment: "awaiting shipment",
	models.OrderAwaitingReceipt:  "awaiting receipt",
	models.OrderAwaitingReview:   "awaiting review",
	models.OrderCompleted:        "completed",
}

var payMethodNames = map[int8]string{
	models.PayCashOnDelivery: "cash on delivery",
	models.PayWeChat:         "WeChat Pay",
	models.PayAlipay:         "Alipay",
	models.PayUnionPay:       "UnionPay",
}

// OrderStatusName returns "" for unknown codes.
func OrderStatusName(code int8) string { return orderStatusNames[code] }

func PayMethodName(code int8) string { return payMethodNames[code] }

type OrderLine struct {
	SKU    SKU             `json:"sku"`
	Count  int             `json:"count"`
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
}

type Order struct {
	OrderID       string          `json:"order_id"`
	CreatedAt     time.Time       `json:"create_time"`
	OrderStatus   int8            `json:"order_status"`
	StatusName    string          `json:"status_name"`
	PayMethod     int8            `json:"pay_method"`
	PayMethodName string          `json:"pay_method_name"`
	TotalCount    int             `json:"total_count"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TransitPrice  decimal.Decimal `json:"transit_price"`
	Lines         []OrderLine     `json:"order_skus"`
}

func NewOrder(o models.OrderInfo) Order {
	return Order{
		OrderID:       o.OrderID,
		CreatedAt:     o.CreatedAt,
		OrderStatus:   o.OrderStatus,
		StatusName:    OrderStatusName(o.OrderStatus),
		PayMethod:     o.PayMethod,
		PayMethodName: PayMethodName(o.PayMethod),
		TotalCount:    o.TotalCount,
		TotalPrice:    o.TotalPrice,
		TransitPrice:  o.TransitPrice,
		Lines: collection.Map(o.Lines, func(l models.OrderGoods) OrderLine {
			return OrderLine{SKU: NewSKU(l.SKU), Count: l.Count, Price: l.Price, Amount: lineAmount(l.Price, l.Count)}
		}),
	}
}

type Orders struct {
	Orders []Order       `json:"order_page"`
	Page   paginate.Page `json:"page"`
}

func NewOrders(orders []models.OrderInfo, page paginate.Page) Orders {
	return Orders{Orders: collection.Map(orders, NewOrder), Page: page}
}
