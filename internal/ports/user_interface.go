package ports

import (
	"context"

	"miche-video-server/internal/model"
)

// UserRepository : узкий контракт внешнего user-management.
// Ядру аутентификации нужны только поиск, создание и смена хэша пароля
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
	UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error
}
