// Package cli consolidates the bootstrap steps shared by cmd/portfel,
// cmd/portfel-worker and cmd/recurring-worker.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"portfel/internal/amqp"
	"portfel/internal/backend"
	"portfel/internal/config"
	applog "portfel/internal/log"
	"portfel/internal/services"
)

// SetupLogger installs the process-wide structured logger.
func SetupLogger() *slog.Logger {
	return applog.Setup()
}

// LoadEnvFile loads .env for local development. Missing files are fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration or exits the process.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the configured data backend or exits the process.
func OpenBackend(ctx context.Context, logger *slog.Logger, cfg *config.Config) *backend.Result {
	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(ctx, backend.Config{
		Type:              backend.Type(cfg.DataBackend),
		LedgerFilePath:    cfg.LedgerFilePath,
		TemplatesFilePath: cfg.TemplatesFilePath,
		LimitsFilePath:    cfg.LimitsFilePath,
		SQLiteDBPath:      cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize backend",
			applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	return result
}

// NewSyncPublisher connects the optional AMQP publisher. A missing URL
// or a connection failure disables sync rather than failing startup.
// The returned client is nil when sync is disabled.
func NewSyncPublisher(logger *slog.Logger, cfg *config.Config) (services.SyncPublisher, *amqp.Client) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - ledger changes will not be mirrored")
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without sync",
			applog.FieldError, err)
		return nil, nil
	}
	logger.Info("AMQP client initialized",
		"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, client
}
