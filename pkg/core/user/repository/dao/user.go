package dao

import (
	"context"

	"car-catalog/pkg/core/user/model"
)

// UserRepository 凭据存储
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	IsEmailExists(ctx context.Context, email string) (bool, error)
}
