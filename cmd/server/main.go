// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/keyscope/internal/config"
	"github.com/tomtom215/keyscope/internal/logging"
	"github.com/tomtom215/keyscope/internal/supervisor"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Int("credentials", cfg.CredentialCount()).
		Bool("storage", cfg.Storage.Enabled).
		Msg("Starting Keyscope")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run builds the application and serves until ctx is canceled.
func run(ctx context.Context, cfg *config.Config) error {
	app, err := newApp(ctx, cfg, logging.Logger())
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing application")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	if err := app.register(tree); err != nil {
		return err
	}

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Starting supervisor tree")
	serveErr := <-tree.ServeBackground(ctx)
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return serveErr
}
