package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/dailyfresh/app/services"
	"github.com/shashiranjanraj/dailyfresh/pkg/crypt"
	"github.com/shashiranjanraj/dailyfresh/pkg/ctx"
	"github.com/shashiranjanraj/dailyfresh/pkg/middleware"
)

const (
	rememberCookie = "username"
	rememberMaxAge = 7 * 24 * 3600
)

type UserController struct {
	accounts  *services.AccountService
	addresses *services.AddressService
	orders    *services.OrderService
}

func NewUserController(accounts *services.AccountService, addresses *services.AddressService, orders *services.OrderService) *UserController {
	return &UserController{accounts: accounts, addresses: addresses, orders: orders}
}

// RegisterForm → GET /user/register
func (h *UserController) RegisterForm(c *ctx.Context) {
	c.Success(map[string]any{
		"action": "/user/register",
		"fields": []string{"user_name", "pwd", "cpwd", "email", "allow"},
	})
}

// Register → POST /user/register
func (h *UserController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if err := c.BindForm(&in); err != nil {
		c.Error(http.StatusBadRequest, "Malformed form data")
		return
	}
	u, err := h.accounts.Register(c.Context(), in)
	if err != nil {
		if !fail(c, err) {
			serverError(c, err)
		}
		return
	}
	c.Created(map[string]any{"id": u.ID, "username": u.Username, "redirect": "/"})
}

// Activate → GET /user/active/{token}
func (h *UserController) Activate(c *ctx.Context) {
	err := h.accounts.Activate(c.Context(), c.Param("token"))
	switch {
	case err == nil:
		c.Message("Account activated", map[string]string{"redirect": middleware.LoginPath})
	case errors.Is(err, services.ErrTokenExpired):
		c.Error(http.StatusGone, "Activation link expired")
	case errors.Is(err, services.ErrTokenInvalid):
		c.Error(http.StatusBadRequest, "Activation link invalid")
	default:
		serverError(c, err)
	}
}

// LoginForm → GET /user/login
//
// Pre-fills the username from the remember-me cookie.
func (h *UserController) LoginForm(c *ctx.Context) {
	username, checked := "", ""
	if raw, err := c.Cookie(rememberCookie); err == nil && raw != "" {
		if name, err := crypt.Decrypt(raw); err == nil {
			username, checked = name, "checked"
		}
	}
	c.Success(map[string]string{"username": username, "checked": checked})
}

// Login → POST /user/login?next=
func (h *UserController) Login(c *ctx.Context) {
	var in services.LoginInput
	if err := c.BindForm(&in); err != nil {
		c.Error(http.StatusBadRequest, "Malformed form data")
		return
	}

	res, err := h.accounts.Login(c.Context(), in)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrBadCredentials):
		c.Error(http.StatusUnauthorized, "Wrong username or password")
		return
	case errors.Is(err, services.ErrAccountNotActive):
		c.Error(http.StatusForbidden, "Account not activated")
		return
	default:
		if !fail(c, err) {
			serverError(c, err)
		}
		return
	}

	sess := c.Session()
	sess.Regenerate()
	sess.Set(middleware.SessionUserID, res.User.ID)
	sess.Set(middleware.SessionUsername, res.User.Username)
	if err := sess.Save(c.Context(), c.W); err != nil {
		serverError(c, err)
		return
	}

	if in.Remember == "on" {
		enc, err := crypt.Encrypt(res.User.Username)
		if err != nil {
			serverError(c, err)
			return
		}
		c.SetCookie(rememberCookie, enc, rememberMaxAge, "/", true)
	} else {
		c.DeleteCookie(rememberCookie, "/")
	}

	c.Message("Login successful", map[string]any{
		"next":  safeNext(c.Query("next")),
		"token": res.Token,
		"user":  res.User,
	})
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}

// Logout → GET /user/logout
func (h *UserController) Logout(c *ctx.Context) {
	sess := c.Session()
	sess.Invalidate()
	if err := sess.Save(c.Context(), c.W); err != nil {
		serverError(c, err)
		return
	}
	c.Message("Logged out", map[string]string{"redirect": "/"})
}

// Info → GET /user
func (h *UserController) Info(c *ctx.Context) {
	info, err := h.accounts.UserInfo(c.Context(), c.Principal())
	render(c, info, err)
}

// Orders → GET /user/order/{page}
func (h *UserController) Orders(c *ctx.Context) {
	orders, err := h.orders.List(c.Context(), c.Principal(), c.Param("page"))
	render(c, orders, err)
}

// Addresses → GET /user/address
func (h *UserController) Addresses(c *ctx.Context) {
	page, err := h.addresses.Page(c.Context(), c.Principal())
	render(c, page, err)
}

// AddAddress → POST /user/address
func (h *UserController) AddAddress(c *ctx.Context) {
	var in services.AddressInput
	if err := c.BindForm(&in); err != nil {
		c.Error(http.StatusBadRequest, "Malformed form data")
		return
	}
	addr, err := h.addresses.Create(c.Context(), c.Principal(), in)
	if err != nil {
		if !fail(c, err) {
			serverError(c, err)
		}
		return
	}
	c.Created(addr)
}
