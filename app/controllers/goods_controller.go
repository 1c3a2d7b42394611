package controllers

import (
	"github.com/shashiranjanraj/dailyfresh/app/services"
	"github.com/shashiranjanraj/dailyfresh/pkg/ctx"
)

type GoodsController struct {
	catalog *services.CatalogService
}

func NewGoodsController(catalog *services.CatalogService) *GoodsController {
	return &GoodsController{catalog: catalog}
}

// Index → GET /
func (h *GoodsController) Index(c *ctx.Context) {
	home, err := h.catalog.Home(c.Context(), c.Principal())
	render(c, home, err)
}

// Detail → GET /goods/{sku_id}
func (h *GoodsController) Detail(c *ctx.Context) {
	id, ok := paramID(c, "sku_id")
	if !ok {
		c.NotFound()
		return
	}
	d, err := h.catalog.Detail(c.Context(), c.Principal(), id)
	render(c, d, err)
}

// List → GET /list/{type_id}/{page}?sort=
func (h *GoodsController) List(c *ctx.Context) {
	id, ok := paramID(c, "type_id")
	if !ok {
		c.NotFound()
		return
	}
	l, err := h.catalog.List(c.Context(), c.Principal(), id, c.Param("page"), c.Query("sort"))
	render(c, l, err)
}
