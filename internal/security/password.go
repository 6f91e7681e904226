package security

import (
	"golang.org/x/crypto/bcrypt"

	"miche-video-server/internal/util"
)

// dummyPasswordHash — валидный bcrypt-хэш заведомо неизвестного пароля.
// Проверяется, когда пользователь с указанным email не найден, чтобы
// время ответа на неудачный логин не зависело от существования аккаунта
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", util.LogError("ошибка хэширования пароля", err)
	}
	return string(hash), nil
}

// CheckPassword : сравнение через bcrypt, устойчивое к timing-атакам
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckDummyPassword выполняет полную bcrypt-проверку против фиктивного хэша.
// Результат всегда false, важен только затраченный на сравнение путь
func CheckDummyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password)) == nil
}
