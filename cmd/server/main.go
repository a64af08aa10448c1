package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/currymessina/api/internal/config"
	"github.com/currymessina/api/internal/database"
	"github.com/currymessina/api/internal/metrics"
	"github.com/currymessina/api/internal/payment"
	"github.com/currymessina/api/internal/router"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	var gateway payment.Gateway = payment.Disabled{}
	if cfg.PaymentsEnabled() {
		gateway = payment.NewStripeGateway(payment.StripeConfig{
			SecretKey: cfg.StripeSecretKey,
			BaseURL:   cfg.StripeAPIURL,
			ReturnURL: cfg.AppURL + "/success.html",
			Timeout:   cfg.PaymentTimeout,
		})
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, online payments disabled")
	}

	reg := metrics.NewRegistry()
	r := router.New(cfg, database.New(pool), pool, gateway, reg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Checkout may wait on the payment gateway.
		WriteTimeout: cfg.PaymentTimeout + 15*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "env", cfg.Env, "payments", cfg.PaymentsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}
