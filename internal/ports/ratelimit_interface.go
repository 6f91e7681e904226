package ports

import (
	"context"
	"time"
)

// LoginRateLimiter : счётчики неудачных попыток по ключу (email, опционально + источник).
// Инкремент обязан быть атомарным в общем хранилище, а не read-modify-write в памяти процесса
type LoginRateLimiter interface {
	// IsBlocked возвращает true, если порог в текущем окне уже достигнут,
	// и сколько осталось ждать до конца окна
	IsBlocked(ctx context.Context, key string) (bool, time.Duration, error)
	RecordFailure(ctx context.Context, key string) (int64, error)
	RecordSuccess(ctx context.Context, key string) error
}
