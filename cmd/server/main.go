package main

import (
	"context"
	"log/slog"
	"os"

	"go-todo-list/internal/app"
	"go-todo-list/internal/config"
	"go-todo-list/internal/logger"
)

func main() {
	slog.SetDefault(logger.New("pretty", "info", os.Stdout))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(cfg.LogFormat, cfg.LogLevel, os.Stdout))

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
