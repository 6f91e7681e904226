package ports

import (
	"context"

	"miche-video-server/internal/model"
	"miche-video-server/internal/security"
)

type JWTServiceInterface interface {
	GenerateAccessToken(userUUID, email string) (string, error)
	GenerateRefreshToken() (plain string, hash string, err error)
	HashRefreshToken(plain string) string
	ValidateAccessToken(tokenStr string) (*security.Claims, error)
}

type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *model.Session) error
	FindActiveByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUser(ctx context.Context, userUUID string) error
}
