// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jeranaias/nums-tui/internal/config"
	"github.com/jeranaias/nums-tui/internal/datasvc"
	"github.com/jeranaias/nums-tui/internal/domain"
	"github.com/jeranaias/nums-tui/internal/logging"
	"github.com/jeranaias/nums-tui/internal/snapshot"
	"github.com/jeranaias/nums-tui/internal/store"
)

// ErrAdminRequired is returned when a mutating command runs as a non-admin.
var ErrAdminRequired = fmt.Errorf("admin privileges required: %w", domain.ErrForbidden)

// demoActor signs in as the seeded administrator.
var demoActor = domain.Actor{ID: store.DemoAdminID, Name: "Plant Administrator", Role: domain.RoleAdmin}

// =============================================================================
// APP
// =============================================================================

// app holds everything a command needs once config is loaded.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	registry *prometheus.Registry
	actor    domain.Actor
	closers  []io.Closer
}

// loadConfig reads --config when given, else the default locations.
func (o *rootOptions) loadConfig(logger *slog.Logger) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromPath(o.configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, err
		}
		if err != nil {
			logger.Warn("config file ignored, using defaults", "error", err)
		}
	}
	if o.demo {
		cfg.Backend.Kind = "memory"
	}
	return cfg, nil
}

// openApp loads config, sets up logging and connects the store. logOut
// overrides the configured log destination when non-empty.
func (o *rootOptions) openApp(ctx context.Context, logOut string) (*app, error) {
	cfg, err := o.loadConfig(slog.Default())
	if err != nil {
		return nil, err
	}
	if logOut != "" && cfg.Log.Output != "file" {
		cfg.Log.Output = logOut
		if cfg.Log.FilePath == "" {
			if dir, err := config.ConfigDir(); err == nil {
				cfg.Log.FilePath = filepath.Join(dir, "nums.log")
			}
		}
	}

	config.SetGlobal(cfg)
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	logger, closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, closer)

	backend := o.backend
	if backend == nil {
		backend, err = datasvc.Open(ctx, cfg.Backend, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend.Kind, err)
		}
		if mem, ok := backend.(*datasvc.Memory); ok {
			if err := store.SeedDemo(mem, o.clock()); err != nil {
				a.Close()
				return nil, fmt.Errorf("failed to seed demo data: %w", err)
			}
		}
	}
	backend = datasvc.Instrument(backend, datasvc.NewMetrics(a.registry), logger)
	a.closers = append(a.closers, backend)

	opts := []store.Option{
		store.WithTTL(cfg.Cache.TTL()),
		store.WithLogger(logger),
		store.WithClock(o.clock),
	}
	if cfg.Cache.SnapshotEnabled && cfg.Backend.Kind != "memory" && o.backend == nil {
		snaps, err := openSnapshots(ctx, cfg.Cache, o.clock(), logger)
		if err != nil {
			logger.Warn("offline snapshots disabled", "path", cfg.Cache.SnapshotPath, "error", err)
		} else {
			opts = append(opts, store.WithSnapshots(snaps))
			a.closers = append(a.closers, snaps)
		}
	}
	a.store = store.New(backend, opts...)
	a.actor = a.resolveActor(ctx)
	return a, nil
}

// openSnapshots opens the offline snapshot store and drops entries older
// than the retention window.
func openSnapshots(ctx context.Context, cfg config.CacheConfig, now time.Time, logger *slog.Logger) (*snapshot.Store, error) {
	snaps, err := snapshot.Open(cfg.SnapshotPath)
	if err != nil {
		return nil, err
	}
	n, err := snaps.Purge(ctx, now.Add(-cfg.SnapshotRetention()))
	switch {
	case err != nil:
		logger.Warn("snapshot purge failed", "path", cfg.SnapshotPath, "error", err)
	case n > 0:
		logger.Info("purged old snapshots", "count", n)
	}
	return snaps, nil
}

// resolveActor works out who is signed in. The profile row, when it can
// be read, is authoritative for name and role.
func (a *app) resolveActor(ctx context.Context) domain.Actor {
	s := a.cfg.Session
	if s.UserID == "" && a.cfg.Backend.Kind == "memory" {
		return demoActor
	}
	actor := domain.Actor{ID: s.UserID, Name: s.UserName, Role: domain.Role(s.Role)}
	if actor.ID == "" {
		return actor
	}
	u, err := a.store.User(ctx, actor.ID)
	if err != nil {
		a.logger.Warn("could not load profile, using configured role", "user_id", actor.ID, "error", err)
		return actor
	}
	actor.Name = u.FullName
	actor.Role = u.Role
	return actor
}

// requireAdmin gates mutating commands.
func (a *app) requireAdmin() error {
	if !a.actor.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// clock returns the injected time or the wall clock.
func (o *rootOptions) clock() time.Time {
	if o.now != nil {
		return o.now()
	}
	return time.Now()
}
