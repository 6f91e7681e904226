package model

import "time"

// Session : серверная запись о выданном refresh-токене.
// Сам refresh-токен никогда не сохраняется — только его SHA-256 хэш,
// по которому и выполняется поиск. Отзыв — через revoked_at (tombstone),
// а не через удаление строки: повторный logout должен отличаться от
// "токена никогда не было" только на уровне логов, но не мог отозвать чужую сессию
type Session struct {
	UUID      string     `db:"uuid"`
	UserUUID  string     `db:"user_uuid"`
	TokenHash string     `db:"token_hash"`
	CreatedAt time.Time  `db:"created_at"`
	ExpireAt  time.Time  `db:"expire_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}

// Active : сессией можно пользоваться, пока она не отозвана и не просрочена
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpireAt)
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"accessToken"`

	// Refresh токен (для получения новых access токенов)
	// example: vcSi0369y1I62wOpxZFpgZ...
	RefreshToken string `json:"refreshToken"`
}
