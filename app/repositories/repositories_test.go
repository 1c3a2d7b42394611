package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/app/repositories"
	"github.com/shashiranjanraj/dailyfresh/internal/testdb"
	"github.com/shashiranjanraj/dailyfresh/pkg/database"
	"github.com/shashiranjanraj/dailyfresh/pkg/orm"
)

func TestGoodsRepository_FindSKU(t *testing.T) {
	db := testdb.Open(t)
	c := testdb.SeedCatalog(t, db)
	repo := repositories.NewGoodsRepository(db)
	ctx := context.Background()

	sku, err := repo.FindSKU(ctx, c.AppleLarge.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apple 1kg", sku.Name)
	assert.Equal(t, "Fruit", sku.Category.Name)
	assert.Equal(t, "Apple", sku.Goods.Name)
	assert.Equal(t, "19.9", sku.Price.String())

	_, err = repo.FindSKU(ctx, 9999)
	assert.True(t, orm.IsNotFound(err))

	found, err := repo.FindSKUs(ctx, []uint{c.Pear.ID, 9999})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Contains(t, found, c.Pear.ID)
}

func TestGoodsRepository_HomeRows(t *testing.T) {
	db := testdb.Open(t)
	c := testdb.SeedCatalog(t, db)
	repo := repositories.NewGoodsRepository(db)
	ctx := context.Background()

	banners, err := repo.GoodsBanners(ctx)
	require.NoError(t, err)
	require.Len(t, banners, 2)
	assert.Equal(t, c.AppleSmall.ID, banners[0].SKUID)
	assert.Equal(t, "Apple 500g", banners[0].SKU.Name)

	images, err := repo.TypeBanners(ctx, c.Fruit.ID, models.DisplayImage)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, c.AppleSmall.ID, images[0].SKU.ID)

	titles, err := repo.TypeBanners(ctx, c.Fruit.ID, models.DisplayTitle)
	require.NoError(t, err)
	require.Len(t, titles, 1)
	assert.Equal(t, "Pear", titles[0].SKU.Name)

	promos, err := repo.PromotionBanners(ctx)
	require.NoError(t, err)
	assert.Len(t, promos, 1)
}

func TestGoodsRepository_ListSKUs(t *testing.T) {
	db := testdb.Open(t)
	c := testdb.SeedCatalog(t, db)
	repo := repositories.NewGoodsRepository(db)
	ctx := context.Background()

	names := func(skus []models.GoodsSKU) []string {
		out := make([]string, len(skus))
		for i, s := range skus {
			out[i] = s.Name
		}
		return out
	}

	tests := []struct {
		sort string
		want []string
	}{
		{repositories.SortPrice, []string{"Pear", "Apple 500g", "Apple 1kg"}},
		{repositories.SortHot, []string{"Apple 1kg", "Apple 500g", "Pear"}},
		{repositories.SortDefault, []string{"Pear", "Apple 1kg", "Apple 500g"}},
		{"bogus", []string{"Pear", "Apple 1kg", "Apple 500g"}},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			skus, page, err := repo.ListSKUs(ctx, c.Fruit.ID, tt.sort, "1", 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(skus))
			assert.Equal(t, 1, page.NumPages)
		})
	}

	skus, page, err := repo.ListSKUs(ctx, c.Fruit.ID, repositories.SortPrice, "2", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple 500g"}, names(skus))
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 3, page.NumPages)

	_, page, err = repo.ListSKUs(ctx, c.Fruit.ID, repositories.SortPrice, "abc", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
}

func TestGoodsRepository_DetailQueries(t *testing.T) {
	db := testdb.Open(t)
	c := testdb.SeedCatalog(t, db)
	repo := repositories.NewGoodsRepository(db)
	ctx := context.Background()

	siblings, err := repo.SiblingSKUs(ctx, c.AppleSmall.GoodsID, c.AppleSmall.ID)
	require.NoError(t, err)
	require.Len(t, siblings, 1)
	assert.Equal(t, c.AppleLarge.ID, siblings[0].ID)

	newest, err := repo.NewestSKUs(ctx, c.Fruit.ID, 2)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, c.Pear.ID, newest[0].ID)

	o := testdb.SeedOrder(t, db, "20240101000001", 1, time.Now(), map[*models.GoodsSKU]int{&c.Shrimp: 1})
	require.NoError(t, db.Model(&models.OrderGoods{}).Where("order_id = ?", o.OrderID).Update("comment", "fresh").Error)
	testdb.SeedOrder(t, db, "20240101000002", 1, time.Now(), map[*models.GoodsSKU]int{&c.Shrimp: 2})

	comments, err := repo.Comments(ctx, c.Shrimp.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "fresh", comments[0].Comment)
}

func TestUserRepository(t *testing.T) {
	db := testdb.Open(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	require.NotZero(t, u.ID)

	exists, err := repo.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.UsernameExists(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Error(t, repo.Create(ctx, &models.User{Username: "alice", Email: "x@example.com", Password: "hash"}))

	ok, err := repo.Activate(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Activate(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second activation must not match")

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	_, err = repo.FindByID(ctx, 4242)
	assert.True(t, orm.IsNotFound(err))
}

func TestAddressRepository_FirstIsDefault(t *testing.T) {
	db := testdb.Open(t)
	repo := repositories.NewAddressRepository(db)
	ctx := context.Background()

	none, err := repo.Default(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, none)

	first := &models.Address{UserID: 1, Receiver: "Li", Addr: "1 Road", Phone: "13800000000"}
	second := &models.Address{UserID: 1, Receiver: "Wang", Addr: "2 Road", Phone: "13900000000"}
	other := &models.Address{UserID: 2, Receiver: "Zhao", Addr: "3 Road", Phone: "13700000000"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, other))

	assert.True(t, first.IsDefault)
	assert.False(t, second.IsDefault)
	assert.True(t, other.IsDefault)

	def, err := repo.Default(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, first.ID, def.ID)

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestOrderRepository_PageByUser(t *testing.T) {
	db := testdb.Open(t)
	c := testdb.SeedCatalog(t, db)
	repo := repositories.NewOrderRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	testdb.SeedOrder(t, db, "A1", 7, base, map[*models.GoodsSKU]int{&c.AppleSmall: 2})
	testdb.SeedOrder(t, db, "A2", 7, base.Add(time.Hour), map[*models.GoodsSKU]int{&c.Shrimp: 1, &c.Pear: 3})
	testdb.SeedOrder(t, db, "B1", 8, base, map[*models.GoodsSKU]int{&c.Shrimp: 1})

	orders, page, err := repo.PageByUser(ctx, 7, "1", 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "A2", orders[0].OrderID)
	assert.Len(t, orders[0].Lines, 2)
	for _, l := range orders[0].Lines {
		assert.NotEmpty(t, l.SKU.Name)
	}
	assert.Equal(t, 2, page.NumPages)
	assert.True(t, page.HasNext)

	orders, page, err = repo.PageByUser(ctx, 7, "99", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, "A2", orders[0].OrderID)

	orders, page, err = repo.PageByUser(ctx, 99, "1", 1)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 1, page.NumPages)
}

func TestGoodsRepository_StoreFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := database.OpenDialector(postgres.New(postgres.Config{Conn: sqlDB}))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "goods_skus"`).WillReturnError(errors.New("connection refused"))

	_, err = repositories.NewGoodsRepository(db).FindSKU(context.Background(), 1)
	require.Error(t, err)
	assert.False(t, orm.IsNotFound(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
