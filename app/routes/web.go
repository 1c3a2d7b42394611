// Package routes maps the storefront URLs onto controllers.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/dailyfresh/app/controllers"
	"github.com/shashiranjanraj/dailyfresh/pkg/ctx"
	"github.com/shashiranjanraj/dailyfresh/pkg/middleware"
	"github.com/shashiranjanraj/dailyfresh/pkg/router"
)

type Handlers struct {
	Goods   *controllers.GoodsController
	Cart    *controllers.CartController
	User    *controllers.UserController
	GraphQL http.HandlerFunc
}

// Web returns the route registration callback for the application kernel.
func Web(h Handlers) func(*router.Router) {
	return func(r *router.Router) {
		r.Get("/", "goods.index", ctx.Wrap(h.Goods.Index))
		r.Get("/index", "goods.index.alias", ctx.Wrap(h.Goods.Index))
		r.Get("/goods/{sku_id}", "goods.detail", ctx.Wrap(h.Goods.Detail))
		r.Get("/list/{type_id}/{page}", "goods.list", ctx.Wrap(h.Goods.List))

		// Cart mutations report "not logged in" as result code 0, so only
		// the page needs the guard.
		r.Post("/cart/add", "cart.add", ctx.Wrap(h.Cart.Add))
		r.Post("/cart/update", "cart.update", ctx.Wrap(h.Cart.Update))
		r.Post("/cart/delete", "cart.delete", ctx.Wrap(h.Cart.Delete))
		r.Get("/cart", "cart.show", ctx.Wrap(h.Cart.Show), middleware.RequireAuth)
		r.Get("/ws/cart", "ws.cart", ctx.Wrap(h.Cart.Feed), middleware.RequireAuth)

		r.Get("/user/register", "user.register.form", ctx.Wrap(h.User.RegisterForm))
		r.Post("/user/register", "user.register", ctx.Wrap(h.User.Register))
		r.Get("/user/active/{token}", "user.active", ctx.Wrap(h.User.Activate))
		r.Get("/user/login", "user.login.form", ctx.Wrap(h.User.LoginForm))
		r.Post("/user/login", "user.login", ctx.Wrap(h.User.Login))
		r.Get("/user/logout", "user.logout", ctx.Wrap(h.User.Logout))

		account := r.Group("/user", middleware.RequireAuth)
		account.Get("/", "user.info", ctx.Wrap(h.User.Info))
		account.Get("/order/{page}", "user.order", ctx.Wrap(h.User.Orders))
		account.Get("/address", "user.address", ctx.Wrap(h.User.Addresses))
		account.Post("/address", "user.address.add", ctx.Wrap(h.User.AddAddress))

		if h.GraphQL != nil {
			r.HandleFunc("/graphql", "graphql", h.GraphQL)
		}
	}
}
