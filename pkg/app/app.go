// Package app assembles the HTTP handler: the global middleware stack,
// the operational endpoints and the routes supplied by the application.
//
//	h := app.New().
//	    Sessions(store).
//	    Probe("database", database.Ping).
//	    Routes(routes.Web(handlers)).
//	    Handler()
package app

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/dailyfresh/pkg/cache"
	"github.com/shashiranjanraj/dailyfresh/pkg/router"
)

// Probe reports nil when a dependency is reachable.
type Probe func(ctx context.Context) error

type static struct {
	prefix string
	dir    string
}

type Application struct {
	routesFns  []func(*router.Router)
	sessions   cache.Store
	probes     map[string]Probe
	probeOrder []string
	rateLimit  int
	statics    []static
}

func New() *Application {
	return &Application{probes: make(map[string]Probe)}
}

// Routes adds a registration callback; callbacks run in order.
func (a *Application) Routes(fn func(*router.Router)) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// Sessions sets the session backend. Without one sessions live in memory.
func (a *Application) Sessions(store cache.Store) *Application {
	a.sessions = store
	return a
}

// Probe adds a dependency check to /healthz.
func (a *Application) Probe(name string, p Probe) *Application {
	if _, ok := a.probes[name]; !ok {
		a.probeOrder = append(a.probeOrder, name)
	}
	a.probes[name] = p
	return a
}

// Probes returns the registered checks, for the gRPC health service.
func (a *Application) Probes() map[string]Probe {
	out := make(map[string]Probe, len(a.probes))
	for k, v := range a.probes {
		out[k] = v
	}
	return out
}

// RateLimit caps requests per client IP per minute; 0 disables it.
func (a *Application) RateLimit(perMinute int) *Application {
	a.rateLimit = perMinute
	return a
}

// Static serves the files under dir at prefix.
func (a *Application) Static(prefix, dir string) *Application {
	a.statics = append(a.statics, static{prefix: prefix, dir: dir})
	return a
}

func (a *Application) Handler() http.Handler {
	return a.build().Handler()
}

// RouteTable lists every route, for route:list.
func (a *Application) RouteTable() []router.RouteInfo {
	return a.build().Routes()
}
