package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/formbridge/formbridge-api/internal/config"
	"github.com/formbridge/formbridge-api/internal/domain/submission"
	"github.com/formbridge/formbridge-api/internal/middleware"
	"github.com/formbridge/formbridge-api/internal/pkg/database"
	"github.com/formbridge/formbridge-api/internal/pkg/logger"
	"github.com/formbridge/formbridge-api/internal/pkg/notify"
	"github.com/formbridge/formbridge-api/internal/pkg/ratelimit"
	"github.com/formbridge/formbridge-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Development: cfg.IsDevelopment()})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting FormBridge API")

	// The store is provisioned on the first write, not at boot: the
	// backend may not be reachable yet and a cold start must not crash.
	lazyDB := database.NewLazy(func(ctx context.Context) (*sqlx.DB, error) {
		db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := submission.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Msg("Database schema initialized")
		return db, nil
	})
	defer lazyDB.Close()

	// ---------- Rate limiter ----------
	policy := ratelimit.Config{
		MaxRequests: cfg.RateLimitMax,
		Window:      cfg.RateLimitWindow,
	}

	var limiter ratelimit.Limiter
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if redisClient != nil {
		defer database.CloseRedis(redisClient)
		limiter = ratelimit.NewRedis(redisClient, policy)
		log.Info().Msg("Using Redis rate limit backend")
	} else {
		limiter = ratelimit.NewMemory(policy)
		log.Info().Msg("Using in-memory rate limit backend")
	}

	// ---------- Notifier ----------
	notifier := notify.NewTelegram(notify.TelegramConfig{
		Token:  cfg.TelegramToken,
		ChatID: cfg.TelegramChatID,
	})
	if !notifier.Enabled() {
		log.Warn().Msg("Telegram credentials not configured, notifications will be skipped")
	}

	// ---------- Wiring ----------
	repo := submission.NewRepository(lazyDB)
	svc := submission.NewService(repo)
	handler := submission.NewHandler(svc, limiter, notifier, policy)

	adminAuth := middleware.AdminToken(cfg.AdminToken)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Mount("/submissions", handler.Routes(adminAuth))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// In-flight submissions (including their notification step) get to
	// finish before the process exits.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
