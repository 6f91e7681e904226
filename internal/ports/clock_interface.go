package ports

import "time"

// Clock : источник времени для проверок срока действия и replay-защиты.
// В продакшене — системные часы, в тестах — фиксированные
type Clock interface {
	Now() time.Time
}
