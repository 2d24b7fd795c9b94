package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "car-catalog/pkg/common/errors"
	"car-catalog/pkg/core/user/model"
	"car-catalog/pkg/core/user/repository/dao"
)

type GormUserRepository struct {
	db *gorm.DB
}

var _ dao.UserRepository = (*GormUserRepository)(nil)

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) model(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.User{})
}

// Create new user with transaction
func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if apperrors.IsDuplicateError(err) {
				return apperrors.ErrDuplicateEntry
			}
			return fmt.Errorf("%w: user creation failed", apperrors.WrapGormError(err))
		}
		return nil
	})
}

// FindByEmail exact match, emails are compared as stored
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := r.model(ctx).
		Select("id", "name", "email", "password_hash", "created_at").
		Where("email = ?", email).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.User{}, apperrors.ErrRecordNotFound
	case err != nil:
		return model.User{}, fmt.Errorf("%w: user lookup failed", apperrors.WrapGormError(err))
	default:
		return user, nil
	}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	var user model.User
	err := r.model(ctx).
		Select("id", "name", "email", "created_at").
		Where("id = ?", id).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.User{}, apperrors.ErrRecordNotFound
	case err != nil:
		return model.User{}, fmt.Errorf("%w: user query failed", apperrors.WrapGormError(err))
	default:
		return user, nil
	}
}

// IsEmailExists check email existence
func (r *GormUserRepository) IsEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.model(ctx).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("%w: failed to check email", apperrors.WrapGormError(err))
	}
	return count > 0, nil
}
