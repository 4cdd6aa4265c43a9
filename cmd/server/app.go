// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/keyscope/internal/api"
	"github.com/tomtom215/keyscope/internal/catalog"
	"github.com/tomtom215/keyscope/internal/config"
	"github.com/tomtom215/keyscope/internal/events"
	"github.com/tomtom215/keyscope/internal/keywords"
	"github.com/tomtom215/keyscope/internal/llm"
	"github.com/tomtom215/keyscope/internal/middleware"
	"github.com/tomtom215/keyscope/internal/profile"
	"github.com/tomtom215/keyscope/internal/quota"
	"github.com/tomtom215/keyscope/internal/storage"
	"github.com/tomtom215/keyscope/internal/supervisor"
	"github.com/tomtom215/keyscope/internal/supervisor/services"
	"github.com/tomtom215/keyscope/internal/youtube"
)

// app owns every long-lived component of the server.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	db      *storage.DB
	quota   *quota.Manager
	bus     *events.Bus
	learner *events.Learner
	server  *http.Server
}

// newApp constructs the components in dependency order. On error anything
// already opened is closed.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	var profiles profile.Store = profile.NewMemoryStore()
	if cfg.Storage.Enabled {
		a.db, err = storage.Open(cfg.Storage.Badger, logger)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		profiles = storage.NewProfileStore(a.db)
	}

	a.quota, err = quota.NewManager(cfg.Quota.Manager(), logger)
	if err != nil {
		return nil, fmt.Errorf("create quota manager: %w", err)
	}
	if a.db != nil {
		a.quota.WithStore(storage.NewUsageStore(a.db))
	}
	registered := a.quota.SetCredentials(cfg.Quota.Credentials)
	if err := a.quota.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to restore credential usage, starting from zero")
	}
	logger.Info().Int("credentials", registered).Int("daily_limit", a.quota.Limit()).Msg("Credential pool ready")

	search, err := youtube.NewClient(cfg.YouTube, a.quota, logger)
	if err != nil {
		return nil, fmt.Errorf("create youtube client: %w", err)
	}

	scorer, err := keywords.NewScorer(&cfg.Scoring, cat, profiles, logger)
	if err != nil {
		return nil, fmt.Errorf("create scorer: %w", err)
	}

	completion, err := llm.NewClient(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("create completion client: %w", err)
	}
	var completer llm.Completer
	if completion.Enabled() {
		completer = completion
	} else {
		logger.Info().Msg("No completion key configured, topics use templates")
	}
	topics := llm.NewTopicGenerator(completer, scorer, logger)

	a.bus = events.NewBus(cfg.Events, logger)
	a.learner = events.NewLearner(a.bus, profiles, logger)

	admin, err := api.NewAdminAuth(cfg.Security.JWTSecret, cfg.Security.AdminAuthEnabled)
	if err != nil {
		return nil, fmt.Errorf("configure admin auth: %w", err)
	}

	perf := middleware.NewPerformanceMonitor(0, 0)
	handler := api.NewHandler(api.Dependencies{
		Search:      search,
		Scorer:      scorer,
		Topics:      topics,
		Credentials: a.quota,
		Events:      a.bus,
		Performance: perf,
		Version:     version,
	}, logger)

	router := api.NewRouter(handler, api.NewChiMiddleware(middlewareConfig(&cfg.Security)), admin)

	a.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return a, nil
}

// register adds the app's services to tree.
func (a *app) register(tree *supervisor.SupervisorTree) error {
	if a.db != nil && !a.cfg.Storage.Badger.InMemory {
		tree.AddDataService(services.NewStorageGCService(a.db, a.cfg.Storage.GCInterval, a.logger))
	}

	if a.cfg.Quota.ResetEnabled {
		reset, err := services.NewQuotaResetService(a.quota, a.cfg.Quota.ResetSchedule, a.quota.Location(), a.logger)
		if err != nil {
			return err
		}
		tree.AddBackgroundService(reset)
	}
	tree.AddBackgroundService(services.NewLearnerService(a.learner))

	tree.AddAPIService(services.NewHTTPServerService(a.server, a.server.Addr, a.cfg.Server.ShutdownTimeout, a.logger))
	return nil
}

// Close releases the bus and storage.
func (a *app) Close() error {
	var errs []error
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func middlewareConfig(sec *config.SecurityConfig) *api.ChiMiddlewareConfig {
	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = sec.CORSOrigins
	mw.RateLimitRequests = sec.RateLimitReqs
	mw.RateLimitWindow = sec.RateLimitWindow
	mw.RateLimitDisabled = sec.RateLimitDisabled
	mw.MaxBodyBytes = sec.MaxBodyBytes
	return mw
}
