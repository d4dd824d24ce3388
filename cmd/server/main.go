package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"careerhub/internal/app"
	"careerhub/internal/config"
	"careerhub/internal/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to read .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logg := logger.New(cfg)

	if err := run(cfg, logg); err != nil {
		logg.WithError(err).Fatal("server stopped")
	}
}

func run(cfg config.Config, logg *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		return fmt.Errorf("invalid HTTP port: %w", err)
	}

	bootstrap, cleanup, err := app.Bootstrap(ctx, cfg, logg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			logg.WithError(err).Warn("cleanup error")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- bootstrap.Fiber.Listen(addr)
	}()
	logg.WithFields(logrus.Fields{"addr": addr, "env": cfg.App.Environment}).Info("server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return bootstrap.Fiber.ShutdownWithContext(shutdownCtx)
}
