package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pg-png/restaurant-content-creator/internal/app"
	"github.com/pg-png/restaurant-content-creator/internal/config"
	"github.com/pg-png/restaurant-content-creator/internal/startup"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse configuration from CLI flags (environment seeds the defaults)
	cfg, err := config.Parse(os.Args[1:], os.Stderr)
	if errors.Is(err, config.ErrShowHelp) || errors.Is(err, config.ErrShowVersion) {
		// Help or version was shown, exit successfully
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Create logger early
	logger := startup.CreateLogger(cfg)

	logger.Info("Starting restaurant-content-creator...")
	logger.Debug("Configuration: api-url=%s, timeout=%ds, gallery=%s, log-level=%s",
		cfg.APIURL, cfg.TimeoutSeconds, cfg.GalleryPath, cfg.LogLevel)

	// Initialize components (restores the persisted gallery)
	components, err := startup.InitializeAll(cfg, logger)
	if err != nil {
		logger.Error("Initialization failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Cancel the session context on SIGINT/SIGTERM so an in-flight
	// submission is cancelled rather than abandoned.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := app.New(cfg, logger, components.Client, components.Gallery, components.Conversation)
	if err := session.Run(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Error("Session error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger.Info("Goodbye")
	return 0
}
