package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/pkg/orm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := orm.Use(r.db).WithContext(ctx).Where("id = ?", id).First(&u); err != nil {
		return nil, fmt.Errorf("users: find %d: %w", id, err)
	}
	return &u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := orm.Use(r.db).WithContext(ctx).Where("username = ?", username).First(&u); err != nil {
		return nil, fmt.Errorf("users: find %q: %w", username, err)
	}
	return &u, nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	n, err := orm.Use(r.db).WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count()
	if err != nil {
		return false, fmt.Errorf("users: exists %q: %w", username, err)
	}
	return n > 0, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if err := orm.Use(r.db).WithContext(ctx).Create(u); err != nil {
		return fmt.Errorf("users: create %q: %w", u.Username, err)
	}
	return nil
}

// Activate flips is_active for a pending account. It reports false when
// the account does not exist or was already active.
func (r *UserRepository) Activate(ctx context.Context, id uint) (bool, error) {
	n, err := orm.Use(r.db).WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_active = ?", id, false).
		Update("is_active", true)
	if err != nil {
		return false, fmt.Errorf("users: activate %d: %w", id, err)
	}
	return n == 1, nil
}
