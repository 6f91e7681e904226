package model

import "time"

// PasswordResetToken : одноразовый токен сброса пароля.
// У пользователя может быть не больше одного активного токена:
// выпуск нового помечает предыдущие через superseded_at.
// Для проверки superseded эквивалентен просроченному
type PasswordResetToken struct {
	UUID         string     `db:"uuid"`
	UserUUID     string     `db:"user_uuid"`
	TokenHash    string     `db:"token_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	ExpireAt     time.Time  `db:"expire_at"`
	ConsumedAt   *time.Time `db:"consumed_at"`
	SupersededAt *time.Time `db:"superseded_at"`
}
