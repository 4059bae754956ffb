package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/sstflow/config"
	"github.com/spacesedan/sstflow/internal/clients"
	"github.com/spacesedan/sstflow/internal/logging"
	"github.com/spacesedan/sstflow/internal/pipeline"
	"github.com/spacesedan/sstflow/internal/sinks"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	settings, err := config.GetSettings()
	if err != nil {
		logging.InitLogger("info")
		slog.Error("[Trainer] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(settings.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, settings); err != nil {
		slog.Error("[Trainer] Run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, settings config.Settings) error {
	cache, err := pipeline.OpenCache(settings)
	if err != nil {
		return err
	}
	defer clients.CloseValkey()

	resultSinks, closeSinks, err := sinks.Open(ctx, settings)
	if err != nil {
		return err
	}
	defer closeSinks()

	summary, err := pipeline.New(settings, cache, resultSinks...).Train(ctx)
	if err != nil {
		return err
	}

	slog.Info("[Trainer] Done",
		slog.String("run_id", summary.RunID),
		slog.Float64("test_mse", summary.Test.MSE),
		slog.Float64("test_pearson", summary.Test.Pearson))
	return nil
}
