package ports

import (
	"context"

	"miche-video-server/internal/model"
)

type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ConsumeReset(ctx context.Context, token, newPassword string) error
}

type ResetRepositoryInterface interface {
	// IssueToken в одной транзакции помечает прежние активные токены пользователя
	// как superseded и вставляет новый
	IssueToken(ctx context.Context, token *model.PasswordResetToken) error

	// ConsumeToken в одной транзакции гасит токен, обновляет хэш пароля
	// и отзывает все сессии пользователя. Возвращает UUID пользователя
	ConsumeToken(ctx context.Context, tokenHash, newPasswordHash string) (string, error)
}

// ResetNotifier : доставка письма со ссылкой сброса — внешний сервис
type ResetNotifier interface {
	SendResetToken(ctx context.Context, email, token string) error
}
