// Package ctx gives handlers a single *Context instead of (w, r):
//
//	func Detail(c *ctx.Context) {
//	    id := c.Param("sku_id")
//	    c.Success(view)
//	}
//
//	r.Get("/goods/{sku_id}", "goods.detail", ctx.Wrap(Detail))
package ctx

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
	"github.com/shashiranjanraj/dailyfresh/pkg/bind"
	"github.com/shashiranjanraj/dailyfresh/pkg/response"
	"github.com/shashiranjanraj/dailyfresh/pkg/session"
	"github.com/shashiranjanraj/dailyfresh/pkg/validate"
)

type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc for the router.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	mu     sync.RWMutex
	store  map[string]any
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{store: make(map[string]any)} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	for k := range c.store {
		delete(c.store, k)
	}
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request ─────────────────────────────────────────────────────────────────

func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

func (c *Context) PostForm(key string) string {
	return c.R.PostFormValue(key)
}

func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

func (c *Context) Cookie(name string) (string, error) {
	cookie, err := c.R.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func (c *Context) Method() string { return c.R.Method }
func (c *Context) Path() string   { return c.R.URL.Path }

// ClientIP prefers X-Forwarded-For, then X-Real-Ip, then RemoteAddr.
func (c *Context) ClientIP() string {
	return ClientIP(c.R)
}

func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (c *Context) Context() context.Context { return c.R.Context() }

// Principal is the authenticated user, or nil for anonymous callers.
func (c *Context) Principal() *auth.Principal {
	return auth.FromContext(c.R.Context())
}

func (c *Context) Session() *session.Session {
	return session.FromCtx(c.R)
}

// ─── Per-request store ───────────────────────────────────────────────────────

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

func (c *Context) MustGet(key string) any {
	v, ok := c.Get(key)
	if !ok {
		panic(fmt.Sprintf("ctx: key %q not found in store", key))
	}
	return v
}

func (c *Context) GetUint(key string) uint {
	v, _ := c.Get(key)
	u, _ := v.(uint)
	return u
}

// ─── Binding ─────────────────────────────────────────────────────────────────

// BindJSON decodes and validates the body. On failure it has already
// written a 400 or 422 and returns false.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError("", errs)
		return false
	}
	return true
}

// BindForm decodes form fields into dest without validating.
func (c *Context) BindForm(dest any) error {
	return bind.Form(c.R, dest)
}

// ─── Response ────────────────────────────────────────────────────────────────

func (c *Context) SetHeader(key, value string) {
	c.W.Header().Set(key, value)
}

func (c *Context) SetCookie(name, value string, maxAge int, path string, httpOnly bool) {
	http.SetCookie(c.W, &http.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		Path:     path,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *Context) DeleteCookie(name, path string) {
	c.SetCookie(name, "", -1, path, true)
}

func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

func (c *Context) Success(data any) {
	c.status = http.StatusOK
	response.Success(c.W, data)
}

func (c *Context) Message(message string, data any) {
	c.status = http.StatusOK
	response.Message(c.W, message, data)
}

func (c *Context) Created(data any) {
	c.status = http.StatusCreated
	response.Created(c.W, data)
}

func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

func (c *Context) ErrorWithData(code int, message string, data any) {
	c.status = code
	response.ErrorWithData(c.W, code, message, data)
}

func (c *Context) ValidationError(message string, errs map[string]string) {
	c.status = http.StatusUnprocessableEntity
	response.ValidationError(c.W, message, errs)
}

// Result writes a cart result-code body; total < 0 omits total_count.
func (c *Context) Result(res, total int, msg string) {
	c.status = http.StatusOK
	response.Result(c.W, res, total, msg)
}

func (c *Context) Unauthorized(message ...string) {
	msg := "Unauthorized"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusUnauthorized, msg)
}

func (c *Context) NotFound(message ...string) {
	msg := "Not found"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusNotFound, msg)
}

func (c *Context) ServiceUnavailable() {
	c.status = http.StatusInternalServerError
	response.ServiceUnavailable(c.W)
}

func (c *Context) WrittenStatus() int { return c.status }
