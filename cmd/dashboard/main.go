package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samvad-hq/samvad-market-pulse/internal/app"
	"github.com/samvad-hq/samvad-market-pulse/internal/config"
	"github.com/samvad-hq/samvad-market-pulse/internal/logger"
	"github.com/samvad-hq/samvad-market-pulse/internal/trace"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	if err := trace.Init(cfg.AppName, cfg.TracingEnabled); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := trace.Shutdown(ctx); err != nil {
			logger.ErrorObj("trace shutdown failed", "error", err.Error())
		}
	}()

	logger.InfoObj("dashboard starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := app.NewSession(ctx, cfg, logger.Zap{})
	if err != nil {
		logger.ErrorObj("failed to initialize session", "error", err.Error())
		return err
	}

	if err := session.Run(ctx, os.Stdin); err != nil {
		return fmt.Errorf("session run: %w", err)
	}

	return nil
}
