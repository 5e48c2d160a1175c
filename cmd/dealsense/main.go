package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweetpotato0/dealsense/config"
	"github.com/sweetpotato0/dealsense/delivery"
	"github.com/sweetpotato0/dealsense/gemini"
	"github.com/sweetpotato0/dealsense/httpapi"
	"github.com/sweetpotato0/dealsense/pkg/logging"
	"github.com/sweetpotato0/dealsense/pkg/telemetry"
)

func main() {
	logger := logging.Logger()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "dealsense",
		Environment: cfg.Environment,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}
	defer shutdownTelemetry(context.Background())

	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, generation endpoints will fail")
	}
	if cfg.ResendAPIKey == "" {
		logger.Warn("RESEND_API_KEY is not set, email delivery runs in mock mode")
	}

	generator := gemini.New(gemini.Config{
		APIKey:     cfg.GeminiAPIKey,
		TextModel:  cfg.TextModel,
		ImageModel: cfg.ImageModel,
	})
	sender := delivery.New(delivery.Config{
		APIKey: cfg.ResendAPIKey,
		From:   cfg.EmailFrom,
	})

	server := httpapi.New(cfg, generator, sender)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}
}
