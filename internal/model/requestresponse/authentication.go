package requestresponse

import "miche-video-server/internal/model"

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Email    string `json:"email" example:"u@example.com"`
	Password string `json:"password" example:"CorrectP@ss1"`
}

// LoginResponse : ответ на успешную аутентификацию
type LoginResponse struct {
	AccessToken  string      `json:"accessToken" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string      `json:"refreshToken" example:"vcSi0369y1I62wOpxZFpgZ"`
	User         *model.User `json:"user"`
}

// RegisterRequest : тело запроса на регистрацию
type RegisterRequest struct {
	Email    string `json:"email" example:"u@example.com"`
	Password string `json:"password" example:"CorrectP@ss1"`
}

// RefreshRequest : запрос на выпуск нового access токена
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" example:"vcSi0369y1I62wOpxZFpgZ"`
}

// RefreshResponse : новый access токен; refresh токен не ротируется
type RefreshResponse struct {
	AccessToken string `json:"accessToken" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
}

// LogoutRequest : запрос на завершение сессии
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" example:"vcSi0369y1I62wOpxZFpgZ"`
}

// ChangePasswordRequest : запрос на смену пароля авторизованным пользователем
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" example:"CorrectP@ss1"`
	NewPassword     string `json:"newPassword" example:"An0ther!Pass"`
}

// RequestPasswordResetRequest : запрос на выпуск токена сброса пароля
type RequestPasswordResetRequest struct {
	Email string `json:"email" example:"u@example.com"`
}

// ResetPasswordRequest : запрос на сброс пароля по токену
type ResetPasswordRequest struct {
	Token       string `json:"token" example:"vcSi0369y1I62wOpxZFpgZ"`
	NewPassword string `json:"newPassword" example:"An0ther!Pass"`
}

// ErrorResponse : единый конверт ошибки.
// Details заполняется только для validation_error,
// RetryAfter (в секундах) — только для rate_limit_exceeded
type ErrorResponse struct {
	Error      string   `json:"error" example:"invalid_credentials"`
	Message    string   `json:"message,omitempty" example:"неверный логин или пароль"`
	Details    []string `json:"details,omitempty"`
	RetryAfter int64    `json:"retryAfter,omitempty" example:"42"`
}
