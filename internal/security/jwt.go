package security

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"miche-video-server/config"
	"miche-video-server/internal/util"
)

// clock : локальный контракт источника времени.
// ports импортирует security ради Claims, обратной зависимости быть не может
type clock interface {
	Now() time.Time
}

type contextKey string

const (
	UserContextKey contextKey = "user"

	// tokenTypeAccess записывается в claim token_type, чтобы access токен
	// нельзя было перепутать с каким-либо другим подписанным токеном
	tokenTypeAccess = "access"
)

type Claims struct {
	UserUUID  string `json:"user_uuid"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type JWTService struct {
	*config.JWTConfig
	clock clock
}

func NewJWTService(cfg *config.JWTConfig, clk clock) *JWTService {
	return &JWTService{cfg, clk}
}

// GenerateAccessToken выпускает короткоживущий подписанный access токен.
// Без побочных эффектов: валидность проверяется только криптографически
func (service *JWTService) GenerateAccessToken(userUUID, email string) (string, error) {
	timeDuration, err := time.ParseDuration(service.AccessTokenTTL)
	if err != nil {
		return "", util.LogError("ошибка парсинга access_token_ttl", err)
	}

	now := service.clock.Now()
	claims := Claims{
		UserUUID:  userUUID,
		Email:     email,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(timeDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "miche-video-server",
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	accessToken, err := jwtToken.SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", util.LogError("ошибка подписи токена", err)
	}

	return accessToken, nil
}

// GenerateRefreshToken выпускает непрозрачный refresh токен: 32 случайных байта.
// Клиенту отдаётся plain, в БД сохраняется только hash
func (service *JWTService) GenerateRefreshToken() (string, string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", "", util.LogError("ошибка генерации refresh токена", err)
	}

	plain := base64.RawURLEncoding.EncodeToString(tokenBytes)
	return plain, service.HashRefreshToken(plain), nil
}

// HashRefreshToken : SHA-256 от токена. Детерминированный хэш нужен,
// чтобы сессию можно было искать по нему без полного перебора
func (service *JWTService) HashRefreshToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// ValidateAccessToken проверяет подпись, срок действия и тип токена.
// Refresh токен, переданный вместо access, не распарсится как JWT и будет отклонён
func (service *JWTService) ValidateAccessToken(jwtTokenStr string) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return []byte(service.SecretKey), nil
	}, jwt.WithTimeFunc(service.clock.Now))

	if err != nil || !jwtToken.Valid {
		return nil, util.LogError("невалидный токен", err)
	}

	if claims.TokenType != tokenTypeAccess {
		return nil, fmt.Errorf("невалидный токен: неверный тип")
	}

	return claims, nil
}

func JWTMiddleware(jwtService *JWTService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authorizationHeader := request.Header.Get("Authorization")
			if !strings.HasPrefix(authorizationHeader, "Bearer ") {
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authorizationHeader, "Bearer ")

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				log.Printf("невалидный токен: %v", err)
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			req := request.WithContext(context.WithValue(request.Context(), UserContextKey, claims))
			next.ServeHTTP(writer, req)
		})
	}
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}
