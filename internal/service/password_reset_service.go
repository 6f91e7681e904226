package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"miche-video-server/config"
	"miche-video-server/internal/model"
	"miche-video-server/internal/ports"
	"miche-video-server/internal/security"
	"miche-video-server/internal/util"
)

type PasswordResetService struct {
	resetRepo   ports.ResetRepositoryInterface
	userRepo    ports.UserRepository
	jwtService  ports.JWTServiceInterface
	rateLimiter ports.LoginRateLimiter
	notifier    ports.ResetNotifier
	clock       ports.Clock
	cfg         *config.ResetConfig
}

func NewPasswordResetService(
	resetRepo ports.ResetRepositoryInterface,
	userRepo ports.UserRepository,
	jwtService ports.JWTServiceInterface,
	rateLimiter ports.LoginRateLimiter,
	notifier ports.ResetNotifier,
	clock ports.Clock,
	cfg *config.ResetConfig,
) *PasswordResetService {
	return &PasswordResetService{
		resetRepo:   resetRepo,
		userRepo:    userRepo,
		jwtService:  jwtService,
		rateLimiter: rateLimiter,
		notifier:    notifier,
		clock:       clock,
		cfg:         cfg,
	}
}

func resetKey(email string) string {
	return "reset:" + email
}

// RequestReset выпускает токен сброса и отдаёт его во внешнюю рассылку.
// Для несуществующего email молча выходим без ошибки: ответ хендлера
// одинаков в обоих случаях, чтобы нельзя было перебирать аккаунты.
// Повторный запрос гасит прежний активный токен
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	blocked, retryAfter, err := s.rateLimiter.IsBlocked(ctx, resetKey(email))
	if err != nil {
		return fmt.Errorf("[ResetService] ошибка проверки лимита: %w", err)
	}
	if blocked {
		return &model.RateLimitError{RetryAfter: retryAfter}
	}
	// каждый запрос сброса учитывается как расход лимита
	if _, err := s.rateLimiter.RecordFailure(ctx, resetKey(email)); err != nil {
		log.Printf("[ResetService] не удалось учесть запрос сброса: %v", err)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("[ResetService] ошибка поиска пользователя: %w", err)
	}

	plain, tokenHash, err := s.jwtService.GenerateRefreshToken()
	if err != nil {
		return fmt.Errorf("[ResetService] ошибка генерации токена сброса: %w", err)
	}

	ttl, err := time.ParseDuration(s.cfg.TokenTTL)
	if err != nil {
		return util.LogError("[ResetService] ошибка парсинга reset token_ttl", err)
	}

	now := s.clock.Now()
	token := &model.PasswordResetToken{
		UUID:      uuid.New().String(),
		UserUUID:  user.UUID,
		TokenHash: tokenHash,
		CreatedAt: now,
		ExpireAt:  now.Add(ttl),
	}

	if err := s.resetRepo.IssueToken(ctx, token); err != nil {
		return fmt.Errorf("[ResetService] ошибка выпуска токена сброса: %w", err)
	}

	go func() {
		if err := s.notifier.SendResetToken(context.Background(), user.Email, plain); err != nil {
			log.Printf("[ResetService] ошибка отправки письма сброса: %v", err)
		}
	}()

	return nil
}

// ConsumeReset применяет токен сброса: новый пароль, погашенный токен
// и отозванные сессии фиксируются одной транзакцией репозитория.
// Любое повторное использование токена — ErrInvalidResetToken
func (s *PasswordResetService) ConsumeReset(ctx context.Context, token, newPassword string) error {
	if details := ValidatePassword(newPassword); len(details) > 0 {
		return &model.ValidationError{Details: details}
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("[ResetService] не удалось создать хэш пароля: %w", err)
	}

	tokenHash := s.jwtService.HashRefreshToken(token)

	userUUID, err := s.resetRepo.ConsumeToken(ctx, tokenHash, hash)
	if err != nil {
		if errors.Is(err, model.ErrInvalidResetToken) {
			return model.ErrInvalidResetToken
		}
		return fmt.Errorf("[ResetService] ошибка гашения токена сброса: %w", err)
	}

	log.Printf("[ResetService] пароль пользователя %s сброшен, сессии отозваны", userUUID)
	return nil
}
