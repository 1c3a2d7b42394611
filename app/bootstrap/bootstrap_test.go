package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/dailyfresh/app/bootstrap"
	"github.com/shashiranjanraj/dailyfresh/app/services"
	"github.com/shashiranjanraj/dailyfresh/internal/testdb"
	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
	"github.com/shashiranjanraj/dailyfresh/pkg/queue"
)

func opts(store string) bootstrap.Options {
	return bootstrap.Options{
		CartStore:     store,
		HistoryStore:  store,
		HomeTTL:       time.Minute,
		ListPageSize:  2,
		OrderPageSize: 1,
		HistorySize:   5,
		ActivationTTL: time.Hour,
	}
}

func TestNewInMemory(t *testing.T) {
	db := testdb.Open(t)
	cat := testdb.SeedCatalog(t, db)

	c, err := bootstrap.New(db, nil, queue.NewManager(queue.NewMemoryDriver()), opts("memory"))
	require.NoError(t, err)
	assert.Nil(t, c.Redis)

	ctx := context.Background()
	p := &auth.Principal{UserID: 1, Username: "a"}
	n, err := c.Cart.AddItem(ctx, p, "1", "2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	home, err := c.Catalog.Home(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, home.CartCount)
	assert.Len(t, home.Types, 2)

	probes := c.Probes()
	assert.Contains(t, probes, "database")
	assert.NotContains(t, probes, "redis")
	assert.NoError(t, probes["database"](ctx))

	_, err = c.Catalog.Detail(ctx, p, cat.Pear.ID)
	require.NoError(t, err)
	recent, err := c.History.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{cat.Pear.ID}, recent)
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := testdb.Open(t)
	testdb.SeedCatalog(t, db)

	c, err := bootstrap.New(db, rdb, queue.NewManager(queue.NewMemoryDriver()), opts("redis"))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Cart.AddItem(ctx, &auth.Principal{UserID: 7}, "1", "1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("cart_7"))

	_, err = c.Catalog.Home(ctx, nil)
	require.NoError(t, err)
	assert.True(t, mr.Exists(services.HomeCacheKey), "home page cached in redis")

	probes := c.Probes()
	require.Contains(t, probes, "redis")
	assert.NoError(t, probes["redis"](ctx))
	mr.Close()
	assert.Error(t, probes["redis"](ctx))
}

func TestNewRejectsBadStores(t *testing.T) {
	db := testdb.Open(t)
	q := queue.NewManager(queue.NewMemoryDriver())

	_, err := bootstrap.New(db, nil, q, opts("redis"))
	assert.ErrorContains(t, err, "needs redis")

	_, err = bootstrap.New(db, nil, q, opts("etcd"))
	assert.ErrorContains(t, err, "unknown cart store")

	o := opts("memory")
	o.HistoryStore = "disk"
	_, err = bootstrap.New(db, nil, q, o)
	assert.ErrorContains(t, err, "unknown history store")
}

func TestSchedulerWarmsHome(t *testing.T) {
	db := testdb.Open(t)
	testdb.SeedCatalog(t, db)
	c, err := bootstrap.New(db, nil, queue.NewManager(queue.NewMemoryDriver()), opts("memory"))
	require.NoError(t, err)

	s, err := c.Scheduler()
	require.NoError(t, err)
	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, bootstrap.HomeWarmTask, entries[0].Name)
	assert.NoError(t, s.RunNow(context.Background(), bootstrap.HomeWarmTask))
}

func TestApplicationRoutes(t *testing.T) {
	db := testdb.Open(t)
	c, err := bootstrap.New(db, nil, queue.NewManager(queue.NewMemoryDriver()), opts("memory"))
	require.NoError(t, err)

	a, err := c.Application()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, r := range a.RouteTable() {
		names[r.Name] = true
	}
	for _, want := range []string{"goods.index", "goods.detail", "goods.list", "cart.add", "cart.show",
		"user.register", "user.active", "user.login", "user.info", "user.order", "user.address", "graphql", "ws.cart", "health"} {
		assert.True(t, names[want], want)
	}
}
