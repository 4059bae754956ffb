package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/sstflow/config"
	"github.com/spacesedan/sstflow/internal/clients"
	"github.com/spacesedan/sstflow/internal/logging"
	"github.com/spacesedan/sstflow/internal/pipeline"
	"github.com/spacesedan/sstflow/internal/sinks"
)

// pipeline runs load, align and train in one process, timing each stage.
func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	settings, err := config.GetSettings()
	if err != nil {
		logging.InitLogger("info")
		slog.Error("[Pipeline] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(settings.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, settings); err != nil {
		slog.Error("[Pipeline] Run failed", slog.String("error", err.Error()))
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

	runner := pipeline.New(settings, cache, resultSinks...)

	start := time.Now()
	c, err := runner.Load(ctx)
	if err != nil {
		return err
	}
	slog.Info("[Pipeline] Corpus ready",
		slog.Int("sentences", len(c.Records)),
		slog.Duration("elapsed", time.Since(start)))

	start = time.Now()
	aligned, err := runner.Align(ctx)
	if err != nil {
		return err
	}
	slog.Info("[Pipeline] Alignment ready",
		slog.Int("matrix_rows", aligned.Matrix.Rows),
		slog.Duration("elapsed", time.Since(start)))

	start = time.Now()
	summary, err := runner.Train(ctx)
	if err != nil {
		return err
	}
	slog.Info("[Pipeline] Training finished",
		slog.String("run_id", summary.RunID),
		slog.Float64("test_mse", summary.Test.MSE),
		slog.Float64("test_pearson", summary.Test.Pearson),
		slog.Float64("baseline_pearson", summary.Baseline.Pearson),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
