package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"

	"miche-video-server/config"
	"miche-video-server/internal/handler"
	"miche-video-server/internal/notifier"
	"miche-video-server/internal/repository"
	"miche-video-server/internal/security"
	"miche-video-server/internal/service"
	"miche-video-server/internal/util"
)

// @title MICHE VIDEO — auth server
// @version 1.0
// @description Аутентификация, сессии и приём платёжных webhook

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	clock := util.SystemClock{}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db, clock)
	resetRepo := repository.NewResetRepository(db)
	rateLimiter, err := repository.NewLoginRateLimiter(redisClient, &cfg.RateLimit)
	if err != nil {
		log.Fatalf("Ошибка создания rate limiter: %v", err)
	}

	jwtService := security.NewJWTService(&cfg.JWT, clock)
	webhookVerifier, err := security.NewWebhookVerifier(&cfg.Webhook, clock)
	if err != nil {
		log.Fatalf("Ошибка создания webhook verifier: %v", err)
	}

	resetNotifier := notifier.NewHTTPNotifier(cfg.Reset.NotifierURL)

	authService := service.NewAuthenticationService(sessionRepo, userRepo, jwtService, rateLimiter, clock, cfg)
	resetService := service.NewPasswordResetService(resetRepo, userRepo, jwtService, rateLimiter, resetNotifier, clock, &cfg.Reset)

	authHandler := handler.NewAuthenticationHandler(authService, resetService)
	webhookHandler := handler.NewWebhookHandler(webhookVerifier)

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupAuthRoutes(router, authHandler, jwtService)
	router.Post("/api/webhook/payment", webhookHandler.PaymentWebhook)

	runServer(ctx, srv)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, jwtService *security.JWTService) {
	r.Post("/api/register", h.Register)

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)
			r.Post("/logout", h.Logout)
			r.Post("/request-password-reset", h.RequestPasswordReset)
			r.Post("/reset-password", h.ResetPassword)
		})
		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware(jwtService))
			r.Post("/logout-all", h.LogoutAll)
			r.Patch("/change-password", h.ChangePassword)
		})
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
