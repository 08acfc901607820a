package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"marketdesk/internal/app"
	"marketdesk/internal/config"
	"marketdesk/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "", "config file (defaults to $MARKETDESK_CONFIG or ./config.yaml)")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}

	application, err := app.NewApplication(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
