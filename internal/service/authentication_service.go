package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"miche-video-server/config"
	"miche-video-server/internal/model"
	"miche-video-server/internal/ports"
	"miche-video-server/internal/security"
	"miche-video-server/internal/util"
)

type AuthenticationService struct {
	sessionRepo ports.SessionRepositoryInterface
	userRepo    ports.UserRepository
	jwtService  ports.JWTServiceInterface
	rateLimiter ports.LoginRateLimiter
	clock       ports.Clock
	cfg         *config.AppConfig
}

func NewAuthenticationService(
	sessionRepo ports.SessionRepositoryInterface,
	userRepo ports.UserRepository,
	jwtService ports.JWTServiceInterface,
	rateLimiter ports.LoginRateLimiter,
	clock ports.Clock,
	cfg *config.AppConfig,
) *AuthenticationService {
	return &AuthenticationService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		jwtService:  jwtService,
		rateLimiter: rateLimiter,
		clock:       clock,
		cfg:         cfg,
	}
}

// NormalizeEmail : email сравнивается без учёта регистра и внешних пробелов
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func loginKey(email string) string {
	return "login:" + email
}

// Register создаёт пользователя и сразу открывает для него сессию
func (s *AuthenticationService) Register(ctx context.Context, email, password string) (*model.TokensPair, *model.User, error) {
	email = NormalizeEmail(email)
	if details := ValidatePassword(password); len(details) > 0 {
		return nil, nil, &model.ValidationError{Details: details}
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("[AuthService] не удалось создать хэш пароля: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, &model.User{
		UUID:         uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailExists) {
			return nil, nil, model.ErrEmailExists
		}
		return nil, nil, fmt.Errorf("[AuthService] ошибка создания пользователя: %w", err)
	}

	tokens, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return tokens, user, nil
}

// Login аутентифицирует пользователя.
// Лимитер опрашивается до любой работы с учётными данными, а bcrypt-проверка
// выполняется и для несуществующего email (против фиктивного хэша), чтобы
// время неудачного ответа не выдавало, есть ли такой аккаунт
func (s *AuthenticationService) Login(ctx context.Context, email, password string) (*model.TokensPair, *model.User, error) {
	email = NormalizeEmail(email)

	blocked, retryAfter, err := s.rateLimiter.IsBlocked(ctx, loginKey(email))
	if err != nil {
		return nil, nil, fmt.Errorf("[AuthService] ошибка проверки лимита: %w", err)
	}
	if blocked {
		return nil, nil, &model.RateLimitError{RetryAfter: retryAfter}
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			security.CheckDummyPassword(password)
			s.recordFailure(ctx, email)
			return nil, nil, model.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		s.recordFailure(ctx, email)
		return nil, nil, model.ErrInvalidCredentials
	}

	if err := s.rateLimiter.RecordSuccess(ctx, loginKey(email)); err != nil {
		log.Printf("[AuthService] не удалось сбросить счётчик попыток: %v", err)
	}

	tokens, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return tokens, user, nil
}

func (s *AuthenticationService) recordFailure(ctx context.Context, email string) {
	if _, err := s.rateLimiter.RecordFailure(ctx, loginKey(email)); err != nil {
		log.Printf("[AuthService] не удалось учесть неудачную попытку: %v", err)
	}
}

func (s *AuthenticationService) openSession(ctx context.Context, user *model.User) (*model.TokensPair, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.UUID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка генерации access токена: %w", err)
	}

	refreshToken, tokenHash, err := s.jwtService.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка генерации refresh токена: %w", err)
	}

	ttl, err := time.ParseDuration(s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, util.LogError("[AuthService] ошибка парсинга refresh_token_ttl", err)
	}

	now := s.clock.Now()
	session := &model.Session{
		UUID:      uuid.New().String(),
		UserUUID:  user.UUID,
		TokenHash: tokenHash,
		CreatedAt: now,
		ExpireAt:  now.Add(ttl),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка сохранения сессии: %w", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh выпускает новый access токен по действующему refresh токену.
// Refresh токен не ротируется: пока сессия не отозвана и не просрочена,
// им можно пользоваться многократно
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	tokenHash := s.jwtService.HashRefreshToken(refreshToken)

	session, err := s.sessionRepo.FindActiveByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) ||
			errors.Is(err, model.ErrSessionRevoked) ||
			errors.Is(err, model.ErrSessionExpired) {
			return "", model.ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("[AuthService] ошибка поиска сессии: %w", err)
	}

	user, err := s.userRepo.FindByUUID(ctx, session.UserUUID)
	if err != nil {
		return "", fmt.Errorf("[AuthService] ошибка поиска пользователя сессии: %w", err)
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.UUID, user.Email)
	if err != nil {
		return "", fmt.Errorf("[AuthService] ошибка генерации access токена: %w", err)
	}

	return accessToken, nil
}

// Logout отзывает сессию по refresh токену.
// Повторный logout того же токена даёт тот же результат, что и неизвестный токен
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := s.jwtService.HashRefreshToken(refreshToken)

	if err := s.sessionRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return model.ErrInvalidRefreshToken
		}
		return fmt.Errorf("[AuthService] ошибка отзыва сессии: %w", err)
	}

	return nil
}

// LogoutAll отзывает все сессии пользователя
func (s *AuthenticationService) LogoutAll(ctx context.Context, userUUID string) error {
	if err := s.sessionRepo.RevokeAllByUser(ctx, userUUID); err != nil {
		return fmt.Errorf("[AuthService] ошибка отзыва сессий: %w", err)
	}
	return nil
}

// ChangePassword меняет пароль и отзывает все сессии пользователя,
// включая ту, из которой пришёл сам запрос
func (s *AuthenticationService) ChangePassword(ctx context.Context, userUUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByUUID(ctx, userUUID)
	if err != nil {
		return fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}

	if !security.CheckPassword(currentPassword, user.PasswordHash) {
		return model.ErrInvalidPassword
	}

	if newPassword == currentPassword {
		return model.ErrSamePassword
	}

	if details := ValidatePassword(newPassword); len(details) > 0 {
		return &model.ValidationError{Details: details}
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("[AuthService] не удалось создать хэш пароля: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userUUID, hash); err != nil {
		return fmt.Errorf("[AuthService] ошибка обновления пароля: %w", err)
	}

	if err := s.sessionRepo.RevokeAllByUser(ctx, userUUID); err != nil {
		return fmt.Errorf("[AuthService] ошибка отзыва сессий: %w", err)
	}

	return nil
}

// ValidatePassword : проверка стойкости пароля.
// Каждое нарушение — отдельный пункт, чтобы клиент мог показать ошибки по полям
func ValidatePassword(password string) []string {
	var details []string

	if len(password) < 8 {
		details = append(details, "пароль должен содержать минимум 8 символов")
	}

	var upperCount, lowerCount, digitCount, specialCount int
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			specialCount++
		}
	}

	if upperCount == 0 {
		details = append(details, "пароль должен содержать хотя бы одну заглавную букву")
	}
	if lowerCount == 0 {
		details = append(details, "пароль должен содержать хотя бы одну строчную букву")
	}
	if digitCount == 0 {
		details = append(details, "пароль должен содержать хотя бы одну цифру")
	}
	if specialCount == 0 {
		details = append(details, "пароль должен содержать хотя бы один специальный символ")
	}

	return details
}
