// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds the restart policy shared by every supervisor in the tree.
type TreeConfig struct {
	// FailureThreshold is the failure count that triggers backoff. Default 5.
	FailureThreshold float64

	// FailureDecay is the failure half-life in seconds. Default 30.
	FailureDecay float64

	// FailureBackoff is how long a supervisor waits once over threshold.
	// Default 15s.
	FailureBackoff time.Duration

	// ShutdownTimeout bounds how long each service gets to stop. Default 10s.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's stock restart policy.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultTreeConfig.
func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

// spec converts the policy to a suture.Spec.
func (c TreeConfig) spec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree is the process supervision hierarchy:
//
//	keyscope
//	├── data-layer        storage maintenance
//	├── background-layer  quota reset schedule, profile learner
//	└── api-layer         HTTP server
//
// A crash loop in one layer backs off that layer only.
type SupervisorTree struct {
	root       *suture.Supervisor
	data       *suture.Supervisor
	background *suture.Supervisor
	api        *suture.Supervisor
	config     TreeConfig
}

// NewSupervisorTree builds the tree. Supervisor events are logged through
// logger; children inherit the root's hook when added.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	config = config.withDefaults()

	hook := (&sutureslog.Handler{Logger: logger}).MustHook()

	root := suture.New("keyscope", config.spec(hook))
	data := suture.New("data-layer", config.spec(nil))
	background := suture.New("background-layer", config.spec(nil))
	api := suture.New("api-layer", config.spec(nil))

	root.Add(data)
	root.Add(background)
	root.Add(api)

	return &SupervisorTree{
		root:       root,
		data:       data,
		background: background,
		api:        api,
		config:     config,
	}, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// AddDataService adds a storage maintenance service.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	return t.data.Add(svc)
}

// AddBackgroundService adds a scheduler or event consumer.
func (t *SupervisorTree) AddBackgroundService(svc suture.Service) suture.ServiceToken {
	return t.background.Add(svc)
}

// AddAPIService adds a request-serving service.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// RemoveBackgroundService stops and removes a background service.
func (t *SupervisorTree) RemoveBackgroundService(token suture.ServiceToken) error {
	return t.background.Remove(token)
}

// Serve runs the tree until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine. The channel receives the
// result once the tree stops.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that missed the shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
