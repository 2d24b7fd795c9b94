package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "car-catalog/pkg/common/errors"
	"car-catalog/pkg/core/car/model"
	"car-catalog/pkg/core/car/repository/dao"
)

type GormCarRepository struct {
	db *gorm.DB
}

var _ dao.CarRepository = (*GormCarRepository)(nil)

func NewGormCarRepository(db *gorm.DB) *GormCarRepository {
	return &GormCarRepository{db: db}
}

func (r *GormCarRepository) Create(ctx context.Context, car *model.Car) error {
	if err := r.db.WithContext(ctx).Create(car).Error; err != nil {
		return fmt.Errorf("%w: car creation failed", apperrors.WrapGormError(err))
	}
	return nil
}

// ListByOwner newest first, id as tie breaker so the order is stable
func (r *GormCarRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Car, error) {
	cars := make([]model.Car, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&cars).Error
	if err != nil {
		return nil, fmt.Errorf("%w: car listing failed", apperrors.WrapGormError(err))
	}
	return cars, nil
}

func (r *GormCarRepository) FindByID(ctx context.Context, id string) (model.Car, error) {
	var car model.Car
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&car).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.Car{}, apperrors.ErrRecordNotFound
	case err != nil:
		return model.Car{}, fmt.Errorf("%w: car query failed", apperrors.WrapGormError(err))
	default:
		return car, nil
	}
}

// DeleteByID hard delete; a concurrent delete surfaces as ErrRecordNotFound
func (r *GormCarRepository) DeleteByID(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Car{})
	if result.Error != nil {
		return fmt.Errorf("%w: car deletion failed", apperrors.WrapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}
