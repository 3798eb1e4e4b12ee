// Package startup wires application components together at process start.
package startup

import (
	"fmt"
	"os"
	"time"

	"github.com/pg-png/restaurant-content-creator/internal/config"
	"github.com/pg-png/restaurant-content-creator/internal/conversation"
	"github.com/pg-png/restaurant-content-creator/internal/gallery"
	"github.com/pg-png/restaurant-content-creator/internal/generate"
	"github.com/pg-png/restaurant-content-creator/internal/logging"
)

// Components holds all initialized application components.
type Components struct {
	Logger       *logging.Logger
	Gallery      *gallery.Store
	Client       *generate.Client
	Conversation *conversation.Log
}

// CreateLogger creates the application logger from configuration.
// Logging goes to stderr so the interactive prompt on stdout stays clean.
func CreateLogger(cfg *config.Config) *logging.Logger {
	return logging.NewFromString(cfg.LogLevel, os.Stderr)
}

// InitializeAll constructs the gallery store (restoring persisted items),
// the generation client, and a fresh conversation log.
//
// The gallery load only fails on real I/O errors; a missing or corrupt
// gallery file degrades to an empty collection inside the store.
func InitializeAll(cfg *config.Config, logger *logging.Logger) (*Components, error) {
	store := gallery.NewStore(cfg.GalleryPath, logger)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load gallery: %w", err)
	}
	logger.Debug("Gallery loaded from %s (%d items)", cfg.GalleryPath, store.Len())

	client := generate.NewClient(cfg.APIURL, time.Duration(cfg.TimeoutSeconds)*time.Second, logger)
	logger.Debug("Generation client targets %s (timeout: %ds)", cfg.APIURL, cfg.TimeoutSeconds)

	return &Components{
		Logger:       logger,
		Gallery:      store,
		Client:       client,
		Conversation: conversation.NewLog(),
	}, nil
}
