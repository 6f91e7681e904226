package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"miche-video-server/internal/model"
	"miche-video-server/internal/model/requestresponse"
)

// Машиночитаемые коды ошибок API
const (
	codeValidationError     = "validation_error"
	codeInvalidCredentials  = "invalid_credentials"
	codeInvalidRefreshToken = "invalid_refresh_token"
	codeInvalidPassword     = "invalid_password"
	codeSamePassword        = "same_password"
	codeEmailExists         = "email_already_exists"
	codeRateLimitExceeded   = "rate_limit_exceeded"
	codeInvalidResetToken   = "invalid_or_expired_token"
	codeUnauthorized        = "unauthorized"
	codeInternalError       = "internal_error"
)

func sendJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("ошибка кодирования ответа: %v", err)
	}
}

func sendErrorResponse(w http.ResponseWriter, statusCode int, code, message string) {
	sendJSON(w, statusCode, requestresponse.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, codeValidationError, "некорректный JSON")
		return err
	}
	return nil
}

// sendServiceError переводит доменные ошибки в статусы и коды API.
// Инфраструктурные ошибки не маскируются под клиентские — уходят как 500
func sendServiceError(w http.ResponseWriter, err error) {
	var rateLimitErr *model.RateLimitError
	var validationErr *model.ValidationError

	switch {
	case errors.As(err, &rateLimitErr):
		sendJSON(w, http.StatusTooManyRequests, requestresponse.ErrorResponse{
			Error:      codeRateLimitExceeded,
			Message:    "превышен лимит попыток",
			RetryAfter: int64(rateLimitErr.RetryAfter.Seconds()),
		})
	case errors.As(err, &validationErr):
		sendJSON(w, http.StatusBadRequest, requestresponse.ErrorResponse{
			Error:   codeValidationError,
			Message: "пароль не соответствует требованиям",
			Details: validationErr.Details,
		})
	case errors.Is(err, model.ErrInvalidCredentials):
		sendErrorResponse(w, http.StatusUnauthorized, codeInvalidCredentials, model.ErrInvalidCredentials.Error())
	case errors.Is(err, model.ErrInvalidRefreshToken):
		sendErrorResponse(w, http.StatusUnauthorized, codeInvalidRefreshToken, model.ErrInvalidRefreshToken.Error())
	case errors.Is(err, model.ErrInvalidPassword):
		sendErrorResponse(w, http.StatusUnauthorized, codeInvalidPassword, model.ErrInvalidPassword.Error())
	case errors.Is(err, model.ErrSamePassword):
		sendErrorResponse(w, http.StatusBadRequest, codeSamePassword, model.ErrSamePassword.Error())
	case errors.Is(err, model.ErrEmailExists):
		sendErrorResponse(w, http.StatusConflict, codeEmailExists, model.ErrEmailExists.Error())
	case errors.Is(err, model.ErrInvalidResetToken):
		sendErrorResponse(w, http.StatusBadRequest, codeInvalidResetToken, model.ErrInvalidResetToken.Error())
	default:
		log.Println(err)
		sendErrorResponse(w, http.StatusInternalServerError, codeInternalError, "внутренняя ошибка сервера")
	}
}
