package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/pkg/migration"
	"github.com/shashiranjanraj/dailyfresh/pkg/queue"
)

func init() {
	migration.Register("20240301000000_create_users_tables", tables{
		&models.User{}, &models.Address{},
	})
	migration.Register("20240301000001_create_goods_tables", tables{
		&models.Category{}, &models.Goods{}, &models.GoodsSKU{},
		&models.IndexGoodsBanner{}, &models.IndexTypeGoodsBanner{}, &models.IndexPromotionBanner{},
	})
	migration.Register("20240301000002_create_order_tables", tables{
		&models.OrderInfo{}, &models.OrderGoods{},
	})
	migration.Register("20240301000003_create_failed_jobs_table", tables{
		&queue.FailedJobRecord{},
	})
}

// tables migrates a group of models together and drops them in reverse.
type tables []interface{}

func (t tables) Up(db *gorm.DB) error {
	return db.AutoMigrate(t...)
}

func (t tables) Down(db *gorm.DB) error {
	for i := len(t) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(t[i]); err != nil {
			return err
		}
	}
	return nil
}
