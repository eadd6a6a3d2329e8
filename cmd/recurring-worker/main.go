package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"portfel/internal/cli"
	"portfel/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result := cli.OpenBackend(ctx, logger, cfg)
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}()
	}

	publisher, amqpClient := cli.NewSyncPublisher(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	ledger := services.NewLedger(result.Backend, publisher)
	expander := services.NewExpander(ledger)

	logger.Info("Recurring expander configured",
		"interval", cfg.RecurringInterval, "backend", cfg.DataBackend)

	run := func(now time.Time) {
		templates, err := result.Backend.LoadTemplates(ctx)
		if err != nil {
			logger.Error("Failed to load templates", "error", err)
			return
		}
		if len(templates) == 0 {
			logger.Info("No recurring templates configured")
			return
		}

		existing, err := ledger.Query(ctx, services.Filter{})
		if err != nil {
			logger.Error("Failed to load ledger for dueness check", "error", err)
			return
		}

		due := services.DueTemplates(templates, existing, now)
		if len(due) == 0 {
			logger.Info("No templates due", "templates", len(templates))
			return
		}

		created, total, err := expander.Expand(ctx, due, now)
		if err != nil {
			logger.Error("Expansion failed", "error", err, "created", len(created))
			return
		}
		logger.Info("Expansion complete",
			"created", len(created),
			"total_grosze", total.Grosze,
			"next_run", now.Add(cfg.RecurringInterval).Format("15:04:05"))
	}

	// Initial run on startup, then on every tick.
	run(time.Now())

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Recurring-worker shutdown complete")
			return
		case now := <-ticker.C:
			run(now)
		}
	}
}
