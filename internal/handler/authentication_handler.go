package handler

import (
	"net/http"

	"miche-video-server/internal/model/requestresponse"
	"miche-video-server/internal/ports"
	"miche-video-server/internal/security"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
	ports.PasswordResetService
}

func NewAuthenticationHandler(
	authenticationService ports.AuthenticationService,
	passwordResetService ports.PasswordResetService,
) *AuthenticationHandler {
	return &AuthenticationHandler{
		authenticationService,
		passwordResetService,
	}
}

// Register godoc
// @Summary Регистрация нового пользователя
// @Description Создаёт пользователя и сразу открывает для него сессию
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 200 {object} requestresponse.LoginResponse
// @Failure 400 {object} requestresponse.ErrorResponse "validation_error"
// @Failure 409 {object} requestresponse.ErrorResponse "email_already_exists"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/register [post]
func (h *AuthenticationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" {
		sendErrorResponse(w, http.StatusBadRequest, codeValidationError, "email и password обязательны")
		return
	}

	tokens, user, err := h.AuthenticationService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, requestresponse.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	})
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Выдаёт пару access/refresh токенов по email и паролю
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.LoginResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} requestresponse.ErrorResponse "invalid_credentials"
// @Failure 429 {object} requestresponse.ErrorResponse "rate_limit_exceeded, в ответе retryAfter"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" {
		sendErrorResponse(w, http.StatusBadRequest, codeValidationError, "email и password обязательны")
		return
	}

	tokens, user, err := h.AuthenticationService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, requestresponse.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	})
}

// Refresh godoc
// @Summary Обновление access токена
// @Description Выпускает новый access токен по действующему refresh токену. Refresh токен не ротируется
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshRequest true "Тело запроса"
// @Success 200 {object} requestresponse.RefreshResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Токен не указан"
// @Failure 401 {object} requestresponse.ErrorResponse "invalid_refresh_token"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.RefreshToken == "" {
		sendErrorResponse(w, http.StatusBadRequest, codeValidationError, "refreshToken обязателен")
		return
	}

	accessToken, err := h.AuthenticationService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, requestresponse.RefreshResponse{AccessToken: accessToken})
}

// Logout godoc
// @Summary Завершение сессии
// @Description Отзывает refresh токен. Повторный logout того же токена вернёт 401
// @Tags Authentication
// @Accept json
// @Param body body requestresponse.LogoutRequest true "Тело запроса"
// @Success 204 "Сессия завершена"
// @Failure 400 {object} requestresponse.ErrorResponse "Токен не указан"
// @Failure 401 {object} requestresponse.ErrorResponse "invalid_refresh_token"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LogoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.RefreshToken == "" {
		sendErrorResponse(w, http.StatusBadRequest, codeValidationError, "refreshToken обязателен")
		return
	}

	if err := h.AuthenticationService.Logout(r.Context(), req.RefreshToken); err != nil {
		sendServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll godoc
// @Summary Завершение всех сессий пользователя
// @Description Отзывает все refresh токены текущего пользователя на всех устройствах
// @Tags Authentication
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 204 "Все сессии завершены"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/logout-all [post]
func (h *AuthenticationHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, codeUnauthorized, "не авторизован")
		return
	}

	if err := h.AuthenticationService.LogoutAll(r.Context(), claims.UserUUID); err != nil {
		sendServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword godoc
// @Summary Смена пароля
// @Description Меняет пароль и отзывает все сессии пользователя, включая текущую
// @Tags Authentication
// @Accept json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param body body requestresponse.ChangePasswordRequest true "Тело запроса"
// @Success 200 "Пароль изменён"
// @Failure 400 {object} requestresponse.ErrorResponse "validation_error или same_password"
// @Failure 401 {object} requestresponse.ErrorResponse "invalid_password"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/change-password [patch]
func (h *AuthenticationHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, codeUnauthorized, "не авторизован")
		return
	}

	var req requestresponse.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		sendErrorResponse(w, http.StatusBadRequest, codeValidationError, "currentPassword и newPassword обязательны")
		return
	}

	if err := h.AuthenticationService.ChangePassword(r.Context(), claims.UserUUID, req.CurrentPassword, req.NewPassword); err != nil {
		sendServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// RequestPasswordReset godoc
// @Summary Запрос сброса пароля
// @Description Всегда отвечает 200, существует email или нет, чтобы нельзя было перебирать аккаунты
// @Tags Authentication
// @Accept json
// @Param body body requestresponse.RequestPasswordResetRequest true "Тело запроса"
// @Success 200 "Если аккаунт существует, письмо отправлено"
// @Failure 400 {object} requestresponse.ErrorResponse "email не указан"
// @Failure 429 {object} requestresponse.ErrorResponse "rate_limit_exceeded"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/request-password-reset [post]
func (h *AuthenticationHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RequestPasswordResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" {
		sendErrorResponse(w, http.StatusBadRequest, codeValidationError, "email обязателен")
		return
	}

	if err := h.PasswordResetService.RequestReset(r.Context(), req.Email); err != nil {
		sendServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ResetPassword godoc
// @Summary Сброс пароля по токену
// @Description Одноразовый токен из письма: применяет новый пароль и отзывает все сессии
// @Tags Authentication
// @Accept json
// @Param body body requestresponse.ResetPasswordRequest true "Тело запроса"
// @Success 200 "Пароль сброшен"
// @Failure 400 {object} requestresponse.ErrorResponse "invalid_or_expired_token или validation_error"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/reset-password [post]
func (h *AuthenticationHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Token == "" || req.NewPassword == "" {
		sendErrorResponse(w, http.StatusBadRequest, codeValidationError, "token и newPassword обязательны")
		return
	}

	if err := h.PasswordResetService.ConsumeReset(r.Context(), req.Token, req.NewPassword); err != nil {
		sendServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
