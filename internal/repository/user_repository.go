package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"miche-video-server/config"
	"miche-video-server/internal/model"
	"miche-video-server/internal/util"
)

const uniqueViolation = "23505"

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, email, password_hash)
	VALUES ($1, $2, $3)
	RETURNING uuid, email, created_at
	`

	createdUser := &model.User{PasswordHash: user.PasswordHash}
	err := r.DB.QueryRowxContext(ctx, query, user.UUID, user.Email, user.PasswordHash).
		Scan(&createdUser.UUID, &createdUser.Email, &createdUser.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, model.ErrEmailExists
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByEmail : ищет пользователя по email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, created_at FROM users WHERE email = $1`
	var user model.User
	err := r.DB.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по email", err)
	}
	return &user, nil
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, created_at FROM users WHERE uuid = $1`
	var user model.User
	err := r.DB.GetContext(ctx, &user, query, uuid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// UpdatePassword : меняет хэш пароля пользователя
func (r *UserRepository) UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE uuid = $1`
	_, err := r.DB.ExecContext(ctx, query, uuid, newPasswordHash)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить пароль", err)
	}
	return nil
}
