package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/dailyfresh/app/repositories"
	"github.com/shashiranjanraj/dailyfresh/app/services"
	"github.com/shashiranjanraj/dailyfresh/app/stores"
	"github.com/shashiranjanraj/dailyfresh/internal/testdb"
	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
	"github.com/shashiranjanraj/dailyfresh/pkg/cache"
	"github.com/shashiranjanraj/dailyfresh/pkg/queue"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []queue.Job
}

func (q *recordingQueue) Dispatch(_ context.Context, job queue.Job) error {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
	return nil
}

type env struct {
	db      *gorm.DB
	catalog testdb.Catalog
	cache   cache.Store
	carts   stores.CartStore
	history stores.HistoryStore
	queue   *recordingQueue

	goods     *repositories.GoodsRepository
	users     *repositories.UserRepository
	addresses *repositories.AddressRepository

	Cart    *services.CartService
	Catalog *services.CatalogService
	Account *services.AccountService
	Address *services.AddressService
	Orders  *services.OrderService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testdb.Open(t)
	e := &env{
		db:        db,
		catalog:   testdb.SeedCatalog(t, db),
		cache:     cache.NewMemory(),
		carts:     stores.NewMemoryCart(),
		history:   stores.NewMemoryHistory(5),
		queue:     &recordingQueue{},
		goods:     repositories.NewGoodsRepository(db),
		users:     repositories.NewUserRepository(db),
		addresses: repositories.NewAddressRepository(db),
	}
	e.Cart = services.NewCartService(e.goods, e.carts)
	e.Catalog = services.NewCatalogService(e.goods, e.cache, e.carts, e.history, services.CatalogOptions{
		HomeTTL:      time.Hour,
		ListPageSize: 10,
	})
	e.Account = services.NewAccountService(e.users, e.addresses, e.goods, e.history, e.queue, time.Hour)
	e.Address = services.NewAddressService(e.addresses)
	e.Orders = services.NewOrderService(repositories.NewOrderRepository(db), 1)
	return e
}

func principal(id uint) *auth.Principal {
	return &auth.Principal{UserID: id, Username: "user"}
}
