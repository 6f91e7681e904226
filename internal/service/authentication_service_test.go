package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"miche-video-server/config"
	"miche-video-server/internal/model"
	"miche-video-server/internal/security"
	"miche-video-server/internal/service"
)

// ===== MOCKS =====

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	args := m.Called(ctx, uuid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error {
	args := m.Called(ctx, uuid, newPasswordHash)
	return args.Error(0)
}

// MockSessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FindActiveByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	args := m.Called(ctx, tokenHash)
	if s, ok := args.Get(0).(*model.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockSessionRepository) RevokeAllByUser(ctx context.Context, userUUID string) error {
	args := m.Called(ctx, userUUID)
	return args.Error(0)
}

// MockJWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateAccessToken(userUUID, email string) (string, error) {
	args := m.Called(userUUID, email)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) GenerateRefreshToken() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockJWTService) HashRefreshToken(plain string) string {
	args := m.Called(plain)
	return args.String(0)
}

func (m *MockJWTService) ValidateAccessToken(tokenStr string) (*security.Claims, error) {
	args := m.Called(tokenStr)
	if claims, ok := args.Get(0).(*security.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRateLimiter
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) IsBlocked(ctx context.Context, key string) (bool, time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(time.Duration), args.Error(2)
}

func (m *MockRateLimiter) RecordFailure(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRateLimiter) RecordSuccess(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// ===== HELPERS =====

func newTestAuthService() (*service.AuthenticationService, *MockSessionRepository, *MockUserRepository, *MockJWTService, *MockRateLimiter) {
	mockSessionRepo := new(MockSessionRepository)
	mockUserRepo := new(MockUserRepository)
	mockJWTService := new(MockJWTService)
	mockRateLimiter := new(MockRateLimiter)

	svc := service.NewAuthenticationService(
		mockSessionRepo,
		mockUserRepo,
		mockJWTService,
		mockRateLimiter,
		fixedClock{time.Now().UTC()},
		&config.AppConfig{
			JWT: config.JWTConfig{
				SecretKey:       "secret",
				AccessTokenTTL:  "15m",
				RefreshTokenTTL: "720h",
			},
		},
	)

	return svc, mockSessionRepo, mockUserRepo, mockJWTService, mockRateLimiter
}

// ===== TESTS =====

func TestLogin_Success(t *testing.T) {
	svc, mockSessionRepo, mockUserRepo, mockJWTService, mockRateLimiter := newTestAuthService()
	ctx := context.Background()

	hash, _ := security.HashPassword("CorrectP@ss1")
	user := &model.User{UUID: "u1", Email: "u@example.com", PasswordHash: hash}

	mockRateLimiter.On("IsBlocked", ctx, "login:u@example.com").Return(false, time.Duration(0), nil)
	mockUserRepo.On("FindByEmail", ctx, "u@example.com").Return(user, nil)
	mockRateLimiter.On("RecordSuccess", ctx, "login:u@example.com").Return(nil)
	mockJWTService.On("GenerateAccessToken", "u1", "u@example.com").Return("acc", nil)
	mockJWTService.On("GenerateRefreshToken").Return("plain-refresh", "token-hash", nil)
	mockSessionRepo.On("Create", ctx, mock.MatchedBy(func(s *model.Session) bool {
		return s.UserUUID == "u1" && s.TokenHash == "token-hash" && s.ExpireAt.After(s.CreatedAt)
	})).Return(nil)

	// email нормализуется: регистр и пробелы не влияют
	tokens, gotUser, err := svc.Login(ctx, "  U@Example.COM ", "CorrectP@ss1")

	require.NoError(t, err)
	assert.Equal(t, "acc", tokens.AccessToken)
	assert.Equal(t, "plain-refresh", tokens.RefreshToken)
	assert.Equal(t, user, gotUser)

	mockSessionRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockJWTService.AssertExpectations(t)
	mockRateLimiter.AssertExpectations(t)
}

// неверный пароль и несуществующий email дают одну и ту же обобщённую ошибку
func TestLogin_GenericErrorHidesAccountExistence(t *testing.T) {
	ctx := context.Background()

	svc, _, mockUserRepo, _, mockRateLimiter := newTestAuthService()
	hash, _ := security.HashPassword("CorrectP@ss1")
	mockRateLimiter.On("IsBlocked", ctx, "login:u@example.com").Return(false, time.Duration(0), nil)
	mockUserRepo.On("FindByEmail", ctx, "u@example.com").
		Return(&model.User{UUID: "u1", Email: "u@example.com", PasswordHash: hash}, nil)
	mockRateLimiter.On("RecordFailure", ctx, "login:u@example.com").Return(int64(1), nil)

	_, _, errWrongPassword := svc.Login(ctx, "u@example.com", "WrongP@ss1")

	svc2, _, mockUserRepo2, _, mockRateLimiter2 := newTestAuthService()
	mockRateLimiter2.On("IsBlocked", ctx, "login:ghost@example.com").Return(false, time.Duration(0), nil)
	mockUserRepo2.On("FindByEmail", ctx, "ghost@example.com").Return(nil, model.ErrUserNotFound)
	mockRateLimiter2.On("RecordFailure", ctx, "login:ghost@example.com").Return(int64(1), nil)

	_, _, errUnknownEmail := svc2.Login(ctx, "ghost@example.com", "WrongP@ss1")

	assert.ErrorIs(t, errWrongPassword, model.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownEmail, model.ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())

	mockRateLimiter.AssertExpectations(t)
	mockRateLimiter2.AssertExpectations(t)
}

// время неудачного логина не должно зависеть от существования аккаунта:
// для неизвестного email bcrypt всё равно выполняется против фиктивного хэша.
// Сравниваем суммарное время серий отказов по обоим путям
func TestLogin_FailureTimingIndependentOfAccountExistence(t *testing.T) {
	if testing.Short() {
		t.Skip("замер времени bcrypt пропущен в -short")
	}

	ctx := context.Background()
	hash, _ := security.HashPassword("CorrectP@ss1")

	svcKnown, _, mockUserRepo, _, mockRateLimiter := newTestAuthService()
	mockRateLimiter.On("IsBlocked", ctx, "login:u@example.com").Return(false, time.Duration(0), nil)
	mockUserRepo.On("FindByEmail", ctx, "u@example.com").
		Return(&model.User{UUID: "u1", Email: "u@example.com", PasswordHash: hash}, nil)
	mockRateLimiter.On("RecordFailure", ctx, "login:u@example.com").Return(int64(1), nil)

	svcUnknown, _, mockUserRepo2, _, mockRateLimiter2 := newTestAuthService()
	mockRateLimiter2.On("IsBlocked", ctx, "login:ghost@example.com").Return(false, time.Duration(0), nil)
	mockUserRepo2.On("FindByEmail", ctx, "ghost@example.com").Return(nil, model.ErrUserNotFound)
	mockRateLimiter2.On("RecordFailure", ctx, "login:ghost@example.com").Return(int64(1), nil)

	const trials = 10
	var knownTotal, unknownTotal time.Duration
	// пути чередуются, чтобы дрейф нагрузки машины не лёг целиком на один из них
	for i := 0; i < trials; i++ {
		start := time.Now()
		_, _, err := svcKnown.Login(ctx, "u@example.com", "WrongP@ss1")
		knownTotal += time.Since(start)
		require.ErrorIs(t, err, model.ErrInvalidCredentials)

		start = time.Now()
		_, _, err = svcUnknown.Login(ctx, "ghost@example.com", "WrongP@ss1")
		unknownTotal += time.Since(start)
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	}

	slow, fast := knownTotal, unknownTotal
	if fast > slow {
		slow, fast = fast, slow
	}
	assert.Less(t, float64(slow)/float64(fast), 1.5,
		"время отказа для существующего (%v) и несуществующего (%v) email расходится", knownTotal, unknownTotal)
}

// заблокированный ключ не доходит до проверки учётных данных
func TestLogin_Blocked(t *testing.T) {
	svc, _, mockUserRepo, _, mockRateLimiter := newTestAuthService()
	ctx := context.Background()

	mockRateLimiter.On("IsBlocked", ctx, "login:u@example.com").Return(true, 42*time.Second, nil)

	_, _, err := svc.Login(ctx, "u@example.com", "CorrectP@ss1")

	var rateLimitErr *model.RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Equal(t, 42*time.Second, rateLimitErr.RetryAfter)
	mockUserRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

// refresh токен не ротируется: N обновлений одним токеном дают N новых access токенов
func TestRefresh_NoRotation(t *testing.T) {
	svc, mockSessionRepo, mockUserRepo, mockJWTService, _ := newTestAuthService()
	ctx := context.Background()

	session := &model.Session{UUID: "s1", UserUUID: "u1", TokenHash: "token-hash"}
	user := &model.User{UUID: "u1", Email: "u@example.com"}

	mockJWTService.On("HashRefreshToken", "plain-refresh").Return("token-hash")
	mockSessionRepo.On("FindActiveByTokenHash", ctx, "token-hash").Return(session, nil).Times(3)
	mockUserRepo.On("FindByUUID", ctx, "u1").Return(user, nil).Times(3)
	mockJWTService.On("GenerateAccessToken", "u1", "u@example.com").Return("acc1", nil).Once()
	mockJWTService.On("GenerateAccessToken", "u1", "u@example.com").Return("acc2", nil).Once()
	mockJWTService.On("GenerateAccessToken", "u1", "u@example.com").Return("acc3", nil).Once()

	var tokens []string
	for i := 0; i < 3; i++ {
		accessToken, err := svc.Refresh(ctx, "plain-refresh")
		require.NoError(t, err)
		tokens = append(tokens, accessToken)
	}

	assert.Equal(t, []string{"acc1", "acc2", "acc3"}, tokens)
	mockSessionRepo.AssertNotCalled(t, "RevokeByTokenHash", mock.Anything, mock.Anything)
	mockSessionRepo.AssertExpectations(t)
}

func TestRefresh_RevokedExpiredAndUnknownAreInvalid(t *testing.T) {
	ctx := context.Background()

	for _, storeErr := range []error{model.ErrSessionNotFound, model.ErrSessionRevoked, model.ErrSessionExpired} {
		svc, mockSessionRepo, _, mockJWTService, _ := newTestAuthService()
		mockJWTService.On("HashRefreshToken", "plain-refresh").Return("token-hash")
		mockSessionRepo.On("FindActiveByTokenHash", ctx, "token-hash").Return(nil, storeErr)

		_, err := svc.Refresh(ctx, "plain-refresh")
		assert.ErrorIs(t, err, model.ErrInvalidRefreshToken, "store error: %v", storeErr)
	}
}

// повторный logout того же токена неотличим от неизвестного токена
func TestLogout_RepeatedIsInvalid(t *testing.T) {
	svc, mockSessionRepo, _, mockJWTService, _ := newTestAuthService()
	ctx := context.Background()

	mockJWTService.On("HashRefreshToken", "plain-refresh").Return("token-hash")
	mockSessionRepo.On("RevokeByTokenHash", ctx, "token-hash").Return(nil).Once()
	mockSessionRepo.On("RevokeByTokenHash", ctx, "token-hash").Return(model.ErrSessionNotFound).Once()

	require.NoError(t, svc.Logout(ctx, "plain-refresh"))

	err := svc.Logout(ctx, "plain-refresh")
	assert.ErrorIs(t, err, model.ErrInvalidRefreshToken)
	mockSessionRepo.AssertExpectations(t)
}

func TestLogoutAll(t *testing.T) {
	svc, mockSessionRepo, _, _, _ := newTestAuthService()
	ctx := context.Background()

	mockSessionRepo.On("RevokeAllByUser", ctx, "u1").Return(nil)

	require.NoError(t, svc.LogoutAll(ctx, "u1"))
	mockSessionRepo.AssertExpectations(t)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc, _, mockUserRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	hash, _ := security.HashPassword("CorrectP@ss1")
	mockUserRepo.On("FindByUUID", ctx, "u1").Return(&model.User{UUID: "u1", PasswordHash: hash}, nil)

	err := svc.ChangePassword(ctx, "u1", "WrongP@ss1", "An0ther!Pass")
	assert.ErrorIs(t, err, model.ErrInvalidPassword)
}

func TestChangePassword_SamePassword(t *testing.T) {
	svc, _, mockUserRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	hash, _ := security.HashPassword("CorrectP@ss1")
	mockUserRepo.On("FindByUUID", ctx, "u1").Return(&model.User{UUID: "u1", PasswordHash: hash}, nil)

	err := svc.ChangePassword(ctx, "u1", "CorrectP@ss1", "CorrectP@ss1")
	assert.ErrorIs(t, err, model.ErrSamePassword)
}

func TestChangePassword_WeakPasswordDetails(t *testing.T) {
	svc, _, mockUserRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	hash, _ := security.HashPassword("CorrectP@ss1")
	mockUserRepo.On("FindByUUID", ctx, "u1").Return(&model.User{UUID: "u1", PasswordHash: hash}, nil)

	err := svc.ChangePassword(ctx, "u1", "CorrectP@ss1", "short")

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	// каждый отсутствующий класс символов — отдельный пункт
	assert.Len(t, validationErr.Details, 4)
}

// смена пароля отзывает все сессии пользователя, включая текущую
func TestChangePassword_RevokesAllSessions(t *testing.T) {
	svc, mockSessionRepo, mockUserRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	hash, _ := security.HashPassword("CorrectP@ss1")
	mockUserRepo.On("FindByUUID", ctx, "u1").Return(&model.User{UUID: "u1", PasswordHash: hash}, nil)
	mockUserRepo.On("UpdatePassword", ctx, "u1", mock.AnythingOfType("string")).Return(nil)
	mockSessionRepo.On("RevokeAllByUser", ctx, "u1").Return(nil)

	require.NoError(t, svc.ChangePassword(ctx, "u1", "CorrectP@ss1", "An0ther!Pass"))

	mockUserRepo.AssertExpectations(t)
	mockSessionRepo.AssertExpectations(t)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _, mockUserRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "u@example.com", "weak")

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	mockUserRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegister_EmailExists(t *testing.T) {
	svc, _, mockUserRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	mockUserRepo.On("CreateUser", ctx, mock.Anything).Return(nil, model.ErrEmailExists)

	_, _, err := svc.Register(ctx, "u@example.com", "CorrectP@ss1")
	assert.ErrorIs(t, err, model.ErrEmailExists)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		details  int
	}{
		{"валидный пароль", "CorrectP@ss1", 0},
		{"нет заглавных", "correctp@ss1", 1},
		{"нет строчных", "CORRECTP@SS1", 1},
		{"нет цифр", "CorrectP@ss", 1},
		{"нет спецсимволов", "CorrectPass1", 1},
		{"короткий и пустой по классам", "a", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, service.ValidatePassword(tt.password), tt.details)
		})
	}
}
