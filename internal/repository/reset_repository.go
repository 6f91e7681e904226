package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"miche-video-server/config"
	"miche-video-server/internal/model"
	"miche-video-server/internal/util"
)

type ResetRepository struct {
	*config.Database
}

func NewResetRepository(database *config.Database) *ResetRepository {
	return &ResetRepository{database}
}

// IssueToken выпускает новый токен сброса. В одной транзакции прежние активные
// токены пользователя помечаются superseded_at — активным остаётся ровно один
func (r *ResetRepository) IssueToken(ctx context.Context, token *model.PasswordResetToken) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return util.LogError("[ResetRepo] не удалось открыть транзакцию", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("[ResetRepo] ошибка отката транзакции: %v", err)
		}
	}()

	supersede := `UPDATE password_reset_tokens SET superseded_at = NOW()
					WHERE user_uuid = $1 AND consumed_at IS NULL AND superseded_at IS NULL`
	if _, err := tx.ExecContext(ctx, supersede, token.UserUUID); err != nil {
		return util.LogError("[ResetRepo] не удалось погасить прежние токены", err)
	}

	insert := `INSERT INTO password_reset_tokens (uuid, user_uuid, token_hash, created_at, expire_at)
				VALUES ($1, $2, $3, $4, $5)`
	_, err = tx.ExecContext(ctx, insert,
		token.UUID,
		token.UserUUID,
		token.TokenHash,
		token.CreatedAt,
		token.ExpireAt,
	)
	if err != nil {
		return util.LogError("[ResetRepo] ошибка вставки токена сброса", err)
	}

	if err := tx.Commit(); err != nil {
		return util.LogError("[ResetRepo] не удалось закоммитить транзакцию", err)
	}

	return nil
}

// ConsumeToken гасит токен сброса и применяет новый пароль.
// Всё в одной транзакции: снаружи нельзя увидеть погашенный токен
// при ещё живых старых сессиях, и наоборот. Условие в UPDATE делает
// операцию одноразовой — второй вызов с тем же токеном не заденет ни одной строки
func (r *ResetRepository) ConsumeToken(ctx context.Context, tokenHash, newPasswordHash string) (string, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return "", util.LogError("[ResetRepo] не удалось открыть транзакцию", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("[ResetRepo] ошибка отката транзакции: %v", err)
		}
	}()

	consume := `UPDATE password_reset_tokens SET consumed_at = NOW()
				WHERE token_hash = $1
				  AND consumed_at IS NULL
				  AND superseded_at IS NULL
				  AND expire_at > NOW()
				RETURNING user_uuid`

	var userUUID string
	if err := tx.QueryRowContext(ctx, consume, tokenHash).Scan(&userUUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.ErrInvalidResetToken
		}
		return "", util.LogError("[ResetRepo] ошибка гашения токена сброса", err)
	}

	updatePassword := `UPDATE users SET password_hash = $2 WHERE uuid = $1`
	if _, err := tx.ExecContext(ctx, updatePassword, userUUID, newPasswordHash); err != nil {
		return "", util.LogError("[ResetRepo] не удалось обновить пароль", err)
	}

	revokeSessions := `UPDATE sessions SET revoked_at = NOW() WHERE user_uuid = $1 AND revoked_at IS NULL`
	if _, err := tx.ExecContext(ctx, revokeSessions, userUUID); err != nil {
		return "", util.LogError("[ResetRepo] не удалось отозвать сессии", err)
	}

	if err := tx.Commit(); err != nil {
		return "", util.LogError("[ResetRepo] не удалось закоммитить транзакцию", err)
	}

	return userUUID, nil
}
