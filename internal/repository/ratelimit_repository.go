package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"miche-video-server/config"
	"miche-video-server/internal/util"
)

// LoginRateLimiter : счётчики неудачных попыток в Redis с фиксированным окном.
// INCR атомарен, поэтому конкурентные неудачные попытки не теряются,
// а хранилище общее для всех инстансов сервера
type LoginRateLimiter struct {
	client    *config.RedisClient
	threshold int
	window    time.Duration
}

func NewLoginRateLimiter(client *config.RedisClient, cfg *config.RateLimitConfig) (*LoginRateLimiter, error) {
	window, err := time.ParseDuration(cfg.Window)
	if err != nil {
		return nil, util.LogError("ошибка парсинга rate limit window", err)
	}

	return &LoginRateLimiter{
		client:    client,
		threshold: cfg.Threshold,
		window:    window,
	}, nil
}

func (r *LoginRateLimiter) key(key string) string {
	return fmt.Sprintf("ratelimit:%s", key)
}

// RecordFailure атомарно увеличивает счётчик; первая неудача открывает окно
func (r *LoginRateLimiter) RecordFailure(ctx context.Context, key string) (int64, error) {
	count, err := r.client.Client.Incr(ctx, r.key(key)).Result()
	if err != nil {
		return 0, util.LogError("[RateLimiter] ошибка инкремента в Redis", err)
	}

	if count == 1 {
		if err := r.client.Client.Expire(ctx, r.key(key), r.window).Err(); err != nil {
			return count, util.LogError("[RateLimiter] не удалось выставить TTL окна", err)
		}
	}

	return count, nil
}

// RecordSuccess сбрасывает счётчик ключа
func (r *LoginRateLimiter) RecordSuccess(ctx context.Context, key string) error {
	if err := r.client.Client.Del(ctx, r.key(key)).Err(); err != nil {
		return util.LogError("[RateLimiter] ошибка сброса счётчика", err)
	}
	return nil
}

// IsBlocked : порог достигнут в текущем окне. Остаток TTL ключа
// отдаётся как подсказка retryAfter
func (r *LoginRateLimiter) IsBlocked(ctx context.Context, key string) (bool, time.Duration, error) {
	count, err := r.client.Client.Get(ctx, r.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, 0, nil
	} else if err != nil {
		return false, 0, util.LogError("[RateLimiter] ошибка чтения счётчика", err)
	}

	if count < int64(r.threshold) {
		return false, 0, nil
	}

	retryAfter, err := r.client.Client.TTL(ctx, r.key(key)).Result()
	if err != nil {
		return true, 0, util.LogError("[RateLimiter] ошибка чтения TTL", err)
	}
	if retryAfter < 0 {
		// ключа без TTL быть не должно, но блокировку это не снимает
		retryAfter = r.window
	}

	return true, retryAfter, nil
}
