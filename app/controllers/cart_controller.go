package controllers

import (
	"errors"

	"github.com/shashiranjanraj/dailyfresh/app/services"
	"github.com/shashiranjanraj/dailyfresh/pkg/ctx"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
	"github.com/shashiranjanraj/dailyfresh/pkg/ws"
)

// Cart mutations answer 200 with {"res": code, ...}; the codes are part of
// the storefront's client contract.
const (
	resNotLoggedIn = 0
	resIncomplete  = 1
	resBadInput    = 2
	resNoSKU       = 3
	resNoStock     = 4
	resAdded       = 5
	resDeleted     = 3
)

type CartController struct {
	cart *services.CartService
	hub  *ws.Hub
}

func NewCartController(cart *services.CartService, hub *ws.Hub) *CartController {
	return &CartController{cart: cart, hub: hub}
}

// Add → POST /cart/add (sku_id, count)
func (h *CartController) Add(c *ctx.Context) {
	n, err := h.cart.AddItem(c.Context(), c.Principal(), c.PostForm("sku_id"), c.PostForm("count"))
	if err != nil {
		h.mutationError(c, err)
		return
	}
	c.Result(resAdded, n, "Added successfully")
}

// Update → POST /cart/update (sku_id, count)
func (h *CartController) Update(c *ctx.Context) {
	n, err := h.cart.SetItemQuantity(c.Context(), c.Principal(), c.PostForm("sku_id"), c.PostForm("count"))
	if err != nil {
		h.mutationError(c, err)
		return
	}
	c.Result(resAdded, n, "Updated successfully")
}

// Delete → POST /cart/delete (sku_id)
func (h *CartController) Delete(c *ctx.Context) {
	n, err := h.cart.RemoveItem(c.Context(), c.Principal(), c.PostForm("sku_id"))
	switch {
	case err == nil:
		c.Result(resDeleted, n, "Deleted successfully")
	case errors.Is(err, services.ErrNotAuthenticated):
		c.Result(resNotLoggedIn, -1, "Please log in first")
	case errors.Is(err, services.ErrIncompleteInput):
		c.Result(resIncomplete, -1, "Invalid goods id")
	case errors.Is(err, services.ErrInvalidInput):
		c.Result(resBadInput, -1, "Goods do not exist")
	default:
		serverError(c, err)
	}
}

// Show → GET /cart
func (h *CartController) Show(c *ctx.Context) {
	cart, err := h.cart.ViewCart(c.Context(), c.Principal())
	render(c, cart, err)
}

// Feed → GET /ws/cart
//
// Upgrades to a websocket that receives the cart badge count, first on
// connect and then after every change.
func (h *CartController) Feed(c *ctx.Context) {
	p := c.Principal()
	if p == nil {
		render(c, nil, services.ErrNotAuthenticated)
		return
	}
	n, err := h.cart.Count(c.Context(), p)
	if err != nil {
		render(c, nil, err)
		return
	}
	if err := h.hub.Serve(c.W, c.R, p.UserID, ws.CartCountMessage(n)); err != nil {
		logger.WithCtx(c.Context()).Warn("cart feed upgrade failed", "error", err)
	}
}

func (h *CartController) mutationError(c *ctx.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		c.Result(resNotLoggedIn, -1, "Please log in first")
	case errors.Is(err, services.ErrIncompleteInput):
		c.Result(resIncomplete, -1, "Incomplete data")
	case errors.Is(err, services.ErrInvalidSKU):
		c.Result(resBadInput, -1, "Invalid goods id")
	case errors.Is(err, services.ErrInvalidInput):
		c.Result(resBadInput, -1, "Invalid goods quantity")
	case errors.Is(err, services.ErrNotFound):
		c.Result(resNoSKU, -1, "Goods do not exist")
	case errors.Is(err, services.ErrInsufficientStock):
		c.Result(resNoStock, -1, "Insufficient stock")
	default:
		serverError(c, err)
	}
}
