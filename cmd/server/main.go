package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/psiai/psiai-backend/internal/api"
	"github.com/psiai/psiai-backend/internal/config"
	"github.com/psiai/psiai-backend/internal/database"
	"github.com/psiai/psiai-backend/internal/llm"
	"github.com/psiai/psiai-backend/internal/repository/sqlstore"
	"github.com/psiai/psiai-backend/internal/services"
	"github.com/psiai/psiai-backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		log.Fatal("Failed to configure logging: ", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database, db); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	store := sqlstore.NewStore(db.DB, nil)

	// Upstream clients
	var opts []llm.Option
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, llm.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	chat := llm.WithLogging(llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel, opts...), logger)
	generator, err := llm.NewGenerator(chat, cfg.Pipeline.SubjectLabel, cfg.Pipeline.CounterpartLabel)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load prompt catalogue")
	}
	upstream := services.Upstream{
		Transcriber: llm.NewWhisperTranscriber(cfg.OpenAI.APIKey, cfg.OpenAI.TranscriptionModel, cfg.OpenAI.Language, opts...),
		Generator:   generator,
	}
	if cfg.Storage.RetainAudio {
		upstream.Audio = storage.NewUploader(cfg.Storage, logger)
		logger.WithField("bucket", cfg.Storage.Bucket).Info("Session audio will be retained in object storage")
	}

	// Initialize services
	svc := services.NewServices(store, upstream, cfg, logger)

	app := api.NewApp(cfg, svc, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":   cfg.Server.Addr(),
			"driver": cfg.Database.Driver,
		}).Info("PSI AI API starting")
		errCh <- app.Listen(cfg.Server.Addr())
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("Shutdown failed")
		}
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}
}
