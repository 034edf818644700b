// Package main is the entry point for the bazaar server. It reads the
// configuration, sets up logging, and starts the server; everything else
// lives in internal packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/bazaar/internal/config"
	"github.com/sakif/bazaar/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		// Ephemeral dev fallback: tokens stop verifying after a restart.
		cfg.JWTSecret = xid.New().String() + xid.New().String()
		logger.Warn("JWT_SECRET not set — using an ephemeral secret, tokens will not survive restarts")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		logger.Warn("Google OAuth credentials not set — /auth/google login is unavailable")
	}

	// Bound the initial store connection; after startup, requests carry
	// their own contexts.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
