package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	log "github.com/charmbracelet/log"

	"github.com/wanjalab/pesaflow/infra/initializer"
	"github.com/wanjalab/pesaflow/pkg/app"
	"github.com/wanjalab/pesaflow/pkg/config"
	"github.com/wanjalab/pesaflow/webapi"
)

// @title Pesaflow API
// @version 1.0.0
// @description QR payment session and M-Pesa reconciliation API
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	// Initialize all dependencies
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := slog.Default()

	// Create the application
	a := app.New(deps, cfg)

	// Background sweep for pending transactions whose callback never arrived
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go a.PaymentService.RunSweeper(ctx, cfg.Reconcile.SweepInterval)

	// Setup Fiber app with all routes and middleware
	fiberApp := webapi.SetupApp(a)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server",
		"env", cfg.Env,
		"address", addr,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- fiberApp.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return fiberApp.Shutdown()
	}
}
