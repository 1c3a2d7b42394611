package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/dailyfresh/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestNamedRoutesAndURL(t *testing.T) {
	r := router.New()
	r.Get("/goods/{sku_id}", "goods.detail", ok)
	r.Get("/list/{type_id}/{page}", "goods.list", ok)

	u, err := r.URL("goods.list", map[string]string{"type_id": "3", "page": "2"})
	require.NoError(t, err)
	assert.Equal(t, "/list/3/2", u)

	_, err = r.URL("goods.detail", nil)
	assert.Error(t, err)

	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestGroupAppliesPrefixAndMiddleware(t *testing.T) {
	r := router.New()
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	g := r.Group("/user", deny)
	g.Get("/order/{page}", "user.order", ok)
	r.Get("/user/login", "user.login.form", ok)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/order/1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	path, found := r.Path("user.order")
	assert.True(t, found)
	assert.Equal(t, "/user/order/{page}", path)
}

func TestRoutesSorted(t *testing.T) {
	r := router.New()
	r.Post("/cart/add", "cart.add", ok)
	r.Get("/cart", "cart.show", ok)
	r.HandleFunc("/graphql", "graphql", ok)

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, router.RouteInfo{Method: http.MethodGet, Path: "/cart", Name: "cart.show"}, routes[0])
	assert.Equal(t, "/cart/add", routes[1].Path)
	assert.Equal(t, "*", routes[2].Method)
}
