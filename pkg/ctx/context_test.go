package ctx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
	appctx "github.com/shashiranjanraj/dailyfresh/pkg/ctx"
)

func TestWrapAndSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{"ok": true})
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"data":{"ok":true}}`, rec.Body.String())
}

func TestParam(t *testing.T) {
	r := chi.NewRouter()
	var got string
	r.Get("/goods/{sku_id}", appctx.Wrap(func(c *appctx.Context) {
		got = c.Param("sku_id")
		c.Success(nil)
	}))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/goods/17", nil))
	assert.Equal(t, "17", got)
}

func TestSetAndGet(t *testing.T) {
	appctx.Wrap(func(c *appctx.Context) {
		c.Set("cart_count", uint(4))
		assert.Equal(t, uint(4), c.GetUint("cart_count"))
		assert.Equal(t, uint(0), c.GetUint("missing"))
	})(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestBindForm(t *testing.T) {
	form := url.Values{"sku_id": {"3"}, "count": {"2"}}
	req := httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	appctx.Wrap(func(c *appctx.Context) {
		var in struct {
			SKUID string `form:"sku_id"`
			Count string `form:"count"`
		}
		require.NoError(t, c.BindForm(&in))
		assert.Equal(t, "3", in.SKUID)
		assert.Equal(t, "2", in.Count)
	})(httptest.NewRecorder(), req)
}

func TestBindJSONInvalid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Name string `json:"name" validate:"required"`
		}
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestResultBody(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Result(5, 3, "added")
	})(rec, httptest.NewRequest(http.MethodPost, "/cart/add", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"res":5,"total_count":3,"message":"added"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Result(0, -1, "please log in")
	})(rec, httptest.NewRequest(http.MethodPost, "/cart/add", nil))
	assert.JSONEq(t, `{"res":0,"errmsg":"please log in"}`, rec.Body.String())
}

func TestPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	appctx.Wrap(func(c *appctx.Context) {
		assert.Nil(t, c.Principal())
	})(httptest.NewRecorder(), req)

	req = req.WithContext(auth.WithPrincipal(context.Background(), &auth.Principal{UserID: 2}))
	appctx.Wrap(func(c *appctx.Context) {
		require.NotNil(t, c.Principal())
		assert.Equal(t, uint(2), c.Principal().UserID)
	})(httptest.NewRecorder(), req)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	assert.Equal(t, "1.2.3.4", appctx.ClientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", appctx.ClientIP(req))
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.NotFound("Resource missing")
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
