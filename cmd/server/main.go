// Package main is the entry point for the stock receiving API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockreceipt/internal/app"
	"stockreceipt/internal/config"
	"stockreceipt/internal/core/security"
	v1 "stockreceipt/internal/infrastructure/http/v1"
	"stockreceipt/internal/infrastructure/http/v1/handlers"
	"stockreceipt/internal/infrastructure/http/v1/middleware"
	"stockreceipt/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := app.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting stock receiving server")

	deps, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to initialize dependencies", "error", err)
	}
	defer deps.Close()

	checks := make(map[string]handlers.ReadinessCheck)
	for name, check := range deps.ReadinessChecks() {
		checks[name] = check
	}

	var validator middleware.JWTValidator
	if cfg.AuthEnabled() {
		validator = security.NewJWTService(security.DefaultJWTConfig(cfg.JWTSecret))
	} else {
		log.Warn("JWT_SECRET is not set, API authentication is disabled")
	}

	router := v1.NewRouter(v1.RouterConfig{
		Service:         deps.Service,
		Logger:          log,
		JWTValidator:    validator,
		ReadinessChecks: checks,
	})

	// WriteTimeout must outlive a streamed batch execution.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port, "notify_mode", cfg.NotifyMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// In-flight batches finish their started lines before the server stops.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
