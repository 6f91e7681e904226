package ports

import (
	"context"

	"miche-video-server/internal/model"
)

type AuthenticationService interface {
	Register(ctx context.Context, email, password string) (*model.TokensPair, *model.User, error)
	Login(ctx context.Context, email, password string) (*model.TokensPair, *model.User, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userUUID string) error
	ChangePassword(ctx context.Context, userUUID, currentPassword, newPassword string) error
}
