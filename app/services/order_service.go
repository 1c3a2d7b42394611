package services

import (
	"context"

	"github.com/shashiranjanraj/dailyfresh/app/repositories"
	"github.com/shashiranjanraj/dailyfresh/app/views"
	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
)

type OrderService struct {
	orders   *repositories.OrderRepository
	pageSize int
}

func NewOrderService(orders *repositories.OrderRepository, pageSize int) *OrderService {
	if pageSize < 1 {
		pageSize = 1
	}
	return &OrderService{orders: orders, pageSize: pageSize}
}

// List returns one page of the caller's orders, newest first. A page that
// is not a number or out of range shows page 1.
func (s *OrderService) List(ctx context.Context, p *auth.Principal, rawPage string) (views.Orders, error) {
	if p == nil {
		return views.Orders{}, ErrNotAuthenticated
	}
	orders, page, err := s.orders.PageByUser(ctx, p.UserID, rawPage, s.pageSize)
	if err != nil {
		return views.Orders{}, unavailable(err)
	}
	return views.NewOrders(orders, page), nil
}
