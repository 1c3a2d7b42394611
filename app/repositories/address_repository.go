package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/pkg/orm"
)

type AddressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) ListByUser(ctx context.Context, userID uint) ([]models.Address, error) {
	var addrs []models.Address
	err := orm.Use(r.db).WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC").Order("id").
		Get(&addrs)
	if err != nil {
		return nil, fmt.Errorf("addresses: list for %d: %w", userID, err)
	}
	return addrs, nil
}

// Default returns the user's default address, or (nil, nil) if none.
func (r *AddressRepository) Default(ctx context.Context, userID uint) (*models.Address, error) {
	var a models.Address
	err := orm.Use(r.db).WithContext(ctx).Where("user_id = ? AND is_default = ?", userID, true).First(&a)
	if orm.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("addresses: default for %d: %w", userID, err)
	}
	return &a, nil
}

// Create stores a and marks it default only when the user has no default
// yet. Both steps run in one transaction.
func (r *AddressRepository) Create(ctx context.Context, a *models.Address) error {
	err := orm.Use(r.db).WithContext(ctx).Transaction(func(tx *orm.Query) error {
		n, err := tx.Model(&models.Address{}).Where("user_id = ? AND is_default = ?", a.UserID, true).Count()
		if err != nil {
			return err
		}
		a.IsDefault = n == 0
		return tx.Create(a)
	})
	if err != nil {
		return fmt.Errorf("addresses: create for %d: %w", a.UserID, err)
	}
	return nil
}
