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
		slog.Error("[Loader] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(settings.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, err := pipeline.OpenCache(settings)
	if err != nil {
		slog.Error("[Loader] Failed to open artifact cache", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer clients.CloseValkey()

	c, err := pipeline.New(settings, cache).Load(ctx)
	if err != nil {
		slog.Error("[Loader] Failed to load corpus", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("[Loader] Done",
		slog.Int("sentences", len(c.Records)),
		slog.String("work_dir", settings.WorkDir))
}
