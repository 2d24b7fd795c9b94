package dao

import (
	"context"

	"car-catalog/pkg/core/car/model"
)

// CarRepository 车辆记录存储
type CarRepository interface {
	Create(ctx context.Context, car *model.Car) error
	// ListByOwner 按创建时间倒序
	ListByOwner(ctx context.Context, ownerID string) ([]model.Car, error)
	FindByID(ctx context.Context, id string) (model.Car, error)
	DeleteByID(ctx context.Context, id string) error
}
