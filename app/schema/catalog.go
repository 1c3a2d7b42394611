// Package schema is the read-only GraphQL view of the catalog.
//
//	{ categories { id name } }
//	{ sku(id: 3) { name price stock } }
//	{ list(typeId: 1, page: 2, sort: "price") { skus { id price } page { number num_pages } } }
package schema

import (
	"context"
	"errors"
	"strconv"

	gql "github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/dailyfresh/app/services"
	"github.com/shashiranjanraj/dailyfresh/app/views"
	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
	"github.com/shashiranjanraj/dailyfresh/pkg/graphql"
)

// Catalog is the part of CatalogService the schema reads.
type Catalog interface {
	Categories(ctx context.Context) ([]views.Category, error)
	SKUs(ctx context.Context, ids []uint) ([]views.SKU, error)
	List(ctx context.Context, p *auth.Principal, categoryID uint, rawPage, sort string) (views.List, error)
}

var categoryType = gql.NewObject(gql.ObjectConfig{
	Name: "Category",
	Fields: gql.Fields{
		"id":    &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"name":  &gql.Field{Type: gql.String},
		"logo":  &gql.Field{Type: gql.String},
		"image": &gql.Field{Type: gql.String},
	},
})

var skuType = gql.NewObject(gql.ObjectConfig{
	Name: "SKU",
	Fields: gql.Fields{
		"id":          &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"category_id": &gql.Field{Type: gql.Int},
		"goods_id":    &gql.Field{Type: gql.Int},
		"name":        &gql.Field{Type: gql.String},
		"desc":        &gql.Field{Type: gql.String},
		// Money stays a decimal string so clients never see float rounding.
		"price": &gql.Field{
			Type: gql.String,
			Resolve: func(p gql.ResolveParams) (interface{}, error) {
				return p.Source.(views.SKU).Price.StringFixed(2), nil
			},
		},
		"unit":  &gql.Field{Type: gql.String},
		"image": &gql.Field{Type: gql.String},
		"stock": &gql.Field{Type: gql.Int},
		"sales": &gql.Field{Type: gql.Int},
	},
})

var pageType = gql.NewObject(gql.ObjectConfig{
	Name: "Page",
	Fields: gql.Fields{
		"number":       &gql.Field{Type: gql.Int},
		"num_pages":    &gql.Field{Type: gql.Int},
		"has_previous": &gql.Field{Type: gql.Boolean},
		"has_next":     &gql.Field{Type: gql.Boolean},
		"window":       &gql.Field{Type: gql.NewList(gql.Int)},
	},
})

var listType = gql.NewObject(gql.ObjectConfig{
	Name: "CategoryPage",
	Fields: gql.Fields{
		"type":     &gql.Field{Type: categoryType},
		"skus":     &gql.Field{Type: gql.NewList(skuType)},
		"page":     &gql.Field{Type: pageType},
		"new_skus": &gql.Field{Type: gql.NewList(skuType)},
		"sort":     &gql.Field{Type: gql.String},
	},
})

// New builds the schema over c. Failures surface as GraphQL errors; store
// outages are reported with a generic message.
func New(c Catalog) (gql.Schema, error) {
	query := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"categories": &gql.Field{
				Type: gql.NewList(categoryType),
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					cats, err := c.Categories(p.Context)
					return cats, public(err)
				},
			},
			"sku": &gql.Field{
				Type: skuType,
				Args: gql.FieldConfigArgument{"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.Int)}},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					if id < 1 {
						return nil, nil
					}
					skus, err := c.SKUs(p.Context, []uint{uint(id)})
					if err != nil || len(skus) == 0 {
						return nil, public(err)
					}
					return skus[0], nil
				},
			},
			"skus": &gql.Field{
				Type: gql.NewList(skuType),
				Args: gql.FieldConfigArgument{"ids": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.NewList(gql.NewNonNull(gql.Int)))}},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					raw, _ := p.Args["ids"].([]interface{})
					ids := make([]uint, 0, len(raw))
					for _, v := range raw {
						if n, ok := v.(int); ok && n > 0 {
							ids = append(ids, uint(n))
						}
					}
					skus, err := c.SKUs(p.Context, ids)
					return skus, public(err)
				},
			},
			"list": &gql.Field{
				Type: listType,
				Args: gql.FieldConfigArgument{
					"typeId": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.Int)},
					"page":   &gql.ArgumentConfig{Type: gql.Int, DefaultValue: 1},
					"sort":   &gql.ArgumentConfig{Type: gql.String, DefaultValue: "default"},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					typeID, _ := p.Args["typeId"].(int)
					page, _ := p.Args["page"].(int)
					sort, _ := p.Args["sort"].(string)
					if typeID < 1 {
						return nil, nil
					}
					l, err := c.List(p.Context, nil, uint(typeID), strconv.Itoa(page), sort)
					if errors.Is(err, services.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, public(err)
					}
					return l, nil
				},
			},
		},
	})
	return graphql.NewSchema(query)
}

func public(err error) error {
	if err == nil {
		return nil
	}
	return errors.New("service unavailable")
}
