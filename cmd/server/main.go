package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/roknskapar/pdf-processor/internal/api"
	"github.com/roknskapar/pdf-processor/internal/infrastructure/config"
	"github.com/roknskapar/pdf-processor/internal/infrastructure/db/postgres"
	"github.com/roknskapar/pdf-processor/internal/infrastructure/llm/gemini"
	"github.com/roknskapar/pdf-processor/internal/infrastructure/registry"
	"github.com/roknskapar/pdf-processor/pkg/logger"
)

func main() {
	// Load .env in development; ignore when the file is absent.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	db, err := postgres.Connect(cfg.Database.DSN, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to postgres")
	}

	extractor, err := gemini.NewClient(gemini.Config{
		APIKey:           cfg.Gemini.APIKey,
		Model:            cfg.Gemini.Model,
		BaseURL:          cfg.Gemini.BaseURL,
		InstructionsPath: cfg.Gemini.InstructionsPath,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build gemini client")
	}

	reg := registry.New(registry.Options{Logger: log})
	reg.Start(context.Background())

	e := api.NewRouter(api.Dependencies{
		Config:    cfg,
		DB:        db,
		Registry:  reg,
		Extractor: extractor,
		Log:       log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	// Stops the sweeper and purges every staged temp file.
	reg.Close()
}
