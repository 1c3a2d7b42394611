// Package bootstrap builds the storefront object graph from configuration:
// connections, stores, services, controllers and the HTTP application.
package bootstrap

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/dailyfresh/app/controllers"
	_ "github.com/shashiranjanraj/dailyfresh/app/jobs"
	"github.com/shashiranjanraj/dailyfresh/app/repositories"
	"github.com/shashiranjanraj/dailyfresh/app/routes"
	"github.com/shashiranjanraj/dailyfresh/app/schema"
	"github.com/shashiranjanraj/dailyfresh/app/services"
	"github.com/shashiranjanraj/dailyfresh/app/stores"
	"github.com/shashiranjanraj/dailyfresh/config"
	"github.com/shashiranjanraj/dailyfresh/pkg/app"
	"github.com/shashiranjanraj/dailyfresh/pkg/cache"
	"github.com/shashiranjanraj/dailyfresh/pkg/database"
	"github.com/shashiranjanraj/dailyfresh/pkg/event"
	"github.com/shashiranjanraj/dailyfresh/pkg/graphql"
	dfgrpc "github.com/shashiranjanraj/dailyfresh/pkg/grpc"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
	"github.com/shashiranjanraj/dailyfresh/pkg/queue"
	"github.com/shashiranjanraj/dailyfresh/pkg/schedule"
	"github.com/shashiranjanraj/dailyfresh/pkg/storage"
	"github.com/shashiranjanraj/dailyfresh/pkg/ws"
)

const (
	driverRedis  = "redis"
	driverMemory = "memory"

	// HomeWarmTask is the scheduler entry that rebuilds the home page cache.
	HomeWarmTask = "home.warm"
)

type Options struct {
	CartStore     string
	HistoryStore  string
	HomeTTL       time.Duration
	ListPageSize  int
	OrderPageSize int
	HistorySize   int
	ActivationTTL time.Duration
	RateLimit     int
}

func OptionsFromConfig() Options {
	return Options{
		CartStore:     config.CartStore(),
		HistoryStore:  config.HistoryStore(),
		HomeTTL:       config.IndexCacheTTL(),
		ListPageSize:  config.ListPageSize(),
		OrderPageSize: config.OrderPageSize(),
		HistorySize:   config.HistorySize(),
		ActivationTTL: config.ActivationTTL(),
		RateLimit:     config.RateLimitPerMinute(),
	}
}

func (o Options) needsRedis() bool {
	return o.CartStore == driverRedis || o.HistoryStore == driverRedis
}

type Container struct {
	DB    *gorm.DB
	Redis *redis.Client // nil when nothing is configured to use Redis
	Cache cache.Store
	Queue *queue.Manager
	Hub   *ws.Hub
	opts  Options

	Carts   stores.CartStore
	History stores.HistoryStore

	Catalog   *services.CatalogService
	Cart      *services.CartService
	Accounts  *services.AccountService
	Addresses *services.AddressService
	Orders    *services.OrderService
}

// New wires the services over db and rdb. rdb may be nil when both stores
// are in memory; the page cache and sessions then live in memory too.
func New(db *gorm.DB, rdb *redis.Client, q *queue.Manager, opts Options) (*Container, error) {
	c := &Container{DB: db, Redis: rdb, Queue: q, Hub: ws.NewHub(), opts: opts}

	if rdb != nil {
		c.Cache = cache.NewRedis(rdb)
	} else {
		c.Cache = cache.NewMemory()
	}

	switch opts.CartStore {
	case driverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("bootstrap: cart store %q needs redis", opts.CartStore)
		}
		c.Carts = stores.NewRedisCart(rdb)
	case driverMemory:
		c.Carts = stores.NewMemoryCart()
	default:
		return nil, fmt.Errorf("bootstrap: unknown cart store %q", opts.CartStore)
	}

	switch opts.HistoryStore {
	case driverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("bootstrap: history store %q needs redis", opts.HistoryStore)
		}
		c.History = stores.NewRedisHistory(rdb, opts.HistorySize)
	case driverMemory:
		c.History = stores.NewMemoryHistory(opts.HistorySize)
	default:
		return nil, fmt.Errorf("bootstrap: unknown history store %q", opts.HistoryStore)
	}

	goods := repositories.NewGoodsRepository(db)
	users := repositories.NewUserRepository(db)
	addresses := repositories.NewAddressRepository(db)

	c.Catalog = services.NewCatalogService(goods, c.Cache, c.Carts, c.History, services.CatalogOptions{
		HomeTTL:      opts.HomeTTL,
		ListPageSize: opts.ListPageSize,
	})
	c.Cart = services.NewCartService(goods, c.Carts)
	c.Accounts = services.NewAccountService(users, addresses, goods, c.History, q, opts.ActivationTTL)
	c.Addresses = services.NewAddressService(addresses)
	c.Orders = services.NewOrderService(repositories.NewOrderRepository(db), opts.OrderPageSize)

	event.Listen(event.CartChanged, c.Hub.OnCartChanged)
	return c, nil
}

// Boot loads configuration and opens every connection the configuration
// asks for. cleanup releases them.
func Boot(ctx context.Context) (c *Container, cleanup func(), err error) {
	if err := config.Load(); err != nil {
		return nil, nil, fmt.Errorf("bootstrap: config: %w", err)
	}
	if uri := config.LogMongoURI(); uri != "" {
		if err := logger.EnableMongo(uri); err != nil {
			logger.Warn("bootstrap: mongo log sink disabled", "error", err)
		}
	}

	if err := database.Connect(); err != nil {
		return nil, nil, err
	}

	opts := OptionsFromConfig()
	var rdb *redis.Client
	if opts.needsRedis() || config.QueueDriver() == driverRedis {
		if err := cache.Connect(ctx); err != nil {
			return nil, nil, err
		}
		rdb = cache.RDB
	}

	if err := storage.Connect(ctx); err != nil {
		return nil, nil, err
	}

	q := queue.Default()
	switch config.QueueDriver() {
	case driverRedis:
		q.SetDriver(queue.NewRedisDriver(rdb))
	case driverMemory:
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown queue driver %q", config.QueueDriver())
	}
	q.UseDB(database.DB)

	c, err = New(database.DB, rdb, q, opts)
	if err != nil {
		return nil, nil, err
	}

	cleanup = func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if sqlDB, err := database.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		logger.Close()
	}
	return c, cleanup, nil
}

// Probes are the dependency checks behind /healthz and gRPC health.
func (c *Container) Probes() map[string]dfgrpc.Probe {
	probes := map[string]dfgrpc.Probe{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.Redis != nil {
		probes["redis"] = func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }
	}
	return probes
}

// Application is the HTTP application with every storefront route.
func (c *Container) Application() (*app.Application, error) {
	s, err := schema.New(c.Catalog)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: graphql schema: %w", err)
	}

	a := app.New().
		Sessions(c.Cache).
		RateLimit(c.opts.RateLimit).
		Routes(routes.Web(routes.Handlers{
			Goods:   controllers.NewGoodsController(c.Catalog),
			Cart:    controllers.NewCartController(c.Cart, c.Hub),
			User:    controllers.NewUserController(c.Accounts, c.Addresses, c.Orders),
			GraphQL: graphql.Handler(s),
		}))
	for name, p := range c.Probes() {
		a.Probe(name, app.Probe(p))
	}

	if local, ok := storage.Current().(*storage.LocalDisk); ok {
		prefix := "/storage"
		if u, err := url.Parse(config.StorageURL()); err == nil && u.Path != "" {
			prefix = u.Path
		}
		a.Static(prefix, local.Root())
	}
	return a, nil
}

// Scheduler registers the periodic tasks.
func (c *Container) Scheduler() (*schedule.Scheduler, error) {
	s := schedule.New()
	err := s.Hourly(HomeWarmTask, func(ctx context.Context) error {
		_, err := c.Catalog.WarmHome(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
