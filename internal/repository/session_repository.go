package repository

import (
	"context"
	"database/sql"
	"errors"

	"miche-video-server/config"
	"miche-video-server/internal/model"
	"miche-video-server/internal/ports"
	"miche-video-server/internal/util"
)

type SessionRepository struct {
	*config.Database
	clock ports.Clock
}

func NewSessionRepository(database *config.Database, clock ports.Clock) *SessionRepository {
	return &SessionRepository{database, clock}
}

// Create сохраняет сессию. В token_hash кладётся SHA-256 от refresh токена,
// сам токен сюда никогда не попадает
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `INSERT INTO sessions (uuid, user_uuid, token_hash, created_at, expire_at)
				VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.DB.ExecContext(ctx, query,
		session.UUID,
		session.UserUUID,
		session.TokenHash,
		session.CreatedAt,
		session.ExpireAt,
	)

	if err != nil {
		return util.LogError("[SessionRepo] ошибка вставки сессии в БД", err)
	}

	return nil
}

// FindActiveByTokenHash ищет сессию по хэшу refresh токена.
// Отозванная и просроченная сессии различаются от несуществующей
// только сентинелом — наружу все три уходят как невалидный токен.
// Строку не мутирует: повторный refresh тем же токеном разрешён
func (r *SessionRepository) FindActiveByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	query := `SELECT uuid, user_uuid, token_hash, created_at, expire_at, revoked_at FROM sessions WHERE token_hash = $1`

	session := &model.Session{}

	err := r.DB.QueryRowContext(ctx, query, tokenHash).Scan(
		&session.UUID,
		&session.UserUUID,
		&session.TokenHash,
		&session.CreatedAt,
		&session.ExpireAt,
		&session.RevokedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, util.LogError("[SessionRepo] ошибка при выполнении запроса", err)
	}

	if session.RevokedAt != nil {
		return nil, model.ErrSessionRevoked
	}
	if !session.Active(r.clock.Now()) {
		return nil, model.ErrSessionExpired
	}

	return session, nil
}

// RevokeByTokenHash отзывает сессию (tombstone через revoked_at).
// Уже отозванная или несуществующая сессия даёт ErrSessionNotFound:
// повторный logout того же токена для клиента неотличим от неизвестного токена
func (r *SessionRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	query := `UPDATE sessions SET revoked_at = NOW() WHERE token_hash = $1 AND revoked_at IS NULL`

	result, err := r.DB.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return util.LogError("[SessionRepo] не удалось отозвать сессию", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[SessionRepo] не удалось проверить, отозвана ли сессия", err)
	}
	if rowsAffected == 0 {
		return model.ErrSessionNotFound
	}

	return nil
}

// RevokeAllByUser отзывает все активные сессии пользователя одним UPDATE.
// Один оператор даёт согласованный срез: вставка сессии либо коммитится до него
// и попадает под отзыв, либо это уже новый логин после смены пароля
func (r *SessionRepository) RevokeAllByUser(ctx context.Context, userUUID string) error {
	query := `UPDATE sessions SET revoked_at = NOW() WHERE user_uuid = $1 AND revoked_at IS NULL`

	if _, err := r.DB.ExecContext(ctx, query, userUUID); err != nil {
		return util.LogError("[SessionRepo] не удалось отозвать сессии пользователя", err)
	}

	return nil
}
