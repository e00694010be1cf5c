package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobmatch/internal/app"
	"jobmatch/internal/config"
	"jobmatch/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrap, cleanup, err := app.Bootstrap(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to bootstrap app", zap.Error(err))
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Error("cleanup error", zap.Error(err))
		}
	}()

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		log.Fatal("invalid HTTP port", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", addr), zap.String("env", cfg.App.Environment))
		errCh <- bootstrap.Fiber.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server error", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("shutdown error", zap.Error(err))
		}
	}
}
