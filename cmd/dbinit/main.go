// One-shot schema provisioning: connects, applies the submissions schema
// and exits. The API server does the same lazily on first write; this
// command exists for deployments that prefer to provision up front.
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/formbridge/formbridge-api/internal/config"
	"github.com/formbridge/formbridge-api/internal/domain/submission"
	"github.com/formbridge/formbridge-api/internal/pkg/database"
	"github.com/formbridge/formbridge-api/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Development: cfg.IsDevelopment()})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database initialization failed")
	}
	defer database.ClosePostgres(db)

	if err := submission.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Database initialization failed")
	}

	log.Info().Msg("Database initialization complete")
}
