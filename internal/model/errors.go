package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Сентинельные ошибки доменного слоя. Хендлеры сопоставляют их со статусами
// через errors.Is; наружу уходят только обобщённые сообщения
var (
	// ErrInvalidCredentials — единый ответ на неверный email и на неверный пароль,
	// чтобы по ответу нельзя было понять, существует ли аккаунт
	ErrInvalidCredentials = errors.New("неверный логин или пароль")

	ErrInvalidRefreshToken = errors.New("невалидный refresh токен")

	ErrSessionNotFound = errors.New("сессия не найдена")
	ErrSessionRevoked  = errors.New("сессия отозвана")
	ErrSessionExpired  = errors.New("сессия просрочена")

	ErrUserNotFound = errors.New("пользователь не найден")
	ErrEmailExists  = errors.New("пользователь с таким email уже существует")

	ErrInvalidPassword = errors.New("неверный текущий пароль")
	ErrSamePassword    = errors.New("новый пароль совпадает с текущим")

	ErrInvalidResetToken = errors.New("невалидный или просроченный токен сброса")
)

// RateLimitError : лимит неудачных попыток исчерпан.
// RetryAfter — сколько осталось до конца окна
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("превышен лимит попыток, повторите через %s", e.RetryAfter)
}

// ValidationError : ошибка валидации входных данных с попунктным списком причин
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "ошибка валидации: " + strings.Join(e.Details, "; ")
}
