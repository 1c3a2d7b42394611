// Package controllers adapts HTTP requests to the services and renders
// their results as JSON envelopes.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/dailyfresh/app/services"
	"github.com/shashiranjanraj/dailyfresh/pkg/ctx"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
	"github.com/shashiranjanraj/dailyfresh/pkg/middleware"
)

// fail renders the errors every page endpoint shares. It reports false
// when err is not one of them, leaving the response to the caller.
func fail(c *ctx.Context, err error) bool {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.ValidationError(verr.Message, verr.Fields)
	case errors.Is(err, services.ErrNotAuthenticated):
		c.ErrorWithData(http.StatusUnauthorized, "Please log in first",
			map[string]string{"login_url": middleware.LoginURL(c.R)})
	case errors.Is(err, services.ErrNotFound):
		c.NotFound()
	case errors.Is(err, services.ErrInvalidInput):
		c.Error(http.StatusBadRequest, err.Error())
	default:
		return false
	}
	return true
}

// render writes data, or the envelope for err.
func render(c *ctx.Context, data any, err error) {
	if err == nil {
		c.Success(data)
		return
	}
	if !fail(c, err) {
		serverError(c, err)
	}
}

// serverError logs err with the request id and answers 500.
func serverError(c *ctx.Context, err error) {
	logger.WithCtx(c.Context()).Error("request failed", "path", c.Path(), "error", err)
	c.ServiceUnavailable()
}

func paramID(c *ctx.Context, key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
