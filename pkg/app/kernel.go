package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/shashiranjanraj/dailyfresh/pkg/cache"
	"github.com/shashiranjanraj/dailyfresh/pkg/metrics"
	"github.com/shashiranjanraj/dailyfresh/pkg/middleware"
	"github.com/shashiranjanraj/dailyfresh/pkg/reqid"
	"github.com/shashiranjanraj/dailyfresh/pkg/response"
	"github.com/shashiranjanraj/dailyfresh/pkg/router"
	"github.com/shashiranjanraj/dailyfresh/pkg/session"
)

const probeTimeout = 2 * time.Second

// build wires the global stack, outermost first:
//
//	metrics → recovery → request id → logger → CORS → rate limit → session → auth
func (a *Application) build() *router.Router {
	sessions := a.sessions
	if sessions == nil {
		sessions = cache.NewMemory()
	}

	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	if a.rateLimit > 0 {
		r.Use(middleware.RateLimit(a.rateLimit))
	}
	r.Use(session.Middleware(sessions, session.DefaultOptions()))
	r.Use(middleware.Authenticate)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", a.health)

	for _, s := range a.statics {
		prefix := "/" + strings.Trim(s.prefix, "/")
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(s.dir)))
		r.Get(prefix+"/*", "static"+strings.ReplaceAll(prefix, "/", "."), fs.ServeHTTP)
	}

	for _, fn := range a.routesFns {
		fn(r)
	}
	return r
}

// health runs every probe; any failure answers 503 with the failing names.
func (a *Application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	checks := make(map[string]string, len(a.probes))
	healthy := true
	for _, name := range a.probeOrder {
		if err := a.probes[name](ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	if !healthy {
		response.ErrorWithData(w, http.StatusServiceUnavailable, "Unhealthy", checks)
		return
	}
	response.Success(w, checks)
}
