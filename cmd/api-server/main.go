package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/mailer"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/handler"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := dto.RegisterValidators(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	sender, closeSender := confirmationSender(cfg, logger)
	defer closeSender()

	store := repository.NewStore(db)
	ratings := service.NewRatingAggregator(store, logger)
	authService := service.NewAuthService(store, service.NewConfirmationCodes(cfg.ConfirmationCodeCost), sender, cfg, logger)

	router := handler.NewRouter(handler.Services{
		Auth:    authService,
		Catalog: service.NewCatalogService(store, logger),
		Titles:  service.NewTitleService(store, ratings, logger),
		Reviews: service.NewReviewService(store, ratings, logger),
		Comment: service.NewCommentService(store, logger),
		Users:   service.NewUserService(store, ratings, logger),
	}, handler.RouterOptions{
		Users:          store.Users(),
		AuthLimiter:    middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, 10*time.Minute),
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_http_server", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown_failed", "error", err.Error())
		}
		logger.Info("server_stopped_gracefully")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}
}

// newLogger builds the JSON handler in production and a text handler otherwise.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.IsProduction() || strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// confirmationSender queues codes on Redis when configured and logs them
// otherwise. Validate refuses production configs without Redis.
func confirmationSender(cfg *config.Config, logger *slog.Logger) (service.ConfirmationSender, func()) {
	if !cfg.RedisEnabled() {
		logger.Warn("redis_not_configured", "fallback", "log")
		return mailer.NewLogSender(logger), func() {}
	}

	rdb, err := mailer.NewRedisClient(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	logger.Info("confirmation_queue_ready", "queue", cfg.ConfirmationQueue)
	return mailer.NewRedisQueue(rdb, cfg.ConfirmationQueue, logger), func() { _ = rdb.Close() }
}
