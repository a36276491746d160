package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ContentEngine/internal/app"
	"ContentEngine/internal/config"
	"ContentEngine/internal/logging"
)

func main() {
	serve := flag.Bool("serve", false, "run the cron scheduler and worker pool instead of a single pass")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("application close", "error", err)
		}
	}()

	if *serve {
		err = application.Serve(ctx)
	} else {
		err = application.Run(ctx)
	}
	if err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
