// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jeranaias/nums-tui/internal/datasvc"
	"github.com/jeranaias/nums-tui/internal/snapshot"
)

// Table names.
const (
	TableUsers         = "users"
	TableBulletins     = "bulletins"
	TableChemicals     = "chemicals"
	TableCoalYards     = "coal_yards"
	TablePower         = "power_consumption"
	TableSalt          = "salt_tracker"
	TableNotifications = "notifications"

	// FnLatestPower returns the newest reading per section.
	FnLatestPower = "get_latest_power_by_section"
)

// =============================================================================
// ERRORS
// =============================================================================

// StaleError reports that rows were served from the snapshot store because
// the backend could not be reached.
type StaleError struct {
	Table     string
	FetchedAt time.Time
	Cause     error
}

// Error implements the error interface.
func (e *StaleError) Error() string {
	return fmt.Sprintf("%s: showing snapshot from %s: %v",
		e.Table, e.FetchedAt.Local().Format("Jan 2 15:04"), e.Cause)
}

// Unwrap returns the backend error.
func (e *StaleError) Unwrap() error {
	return e.Cause
}

// IsStale reports whether err only signals stale data.
func IsStale(err error) bool {
	var se *StaleError
	return errors.As(err, &se)
}

// =============================================================================
// STORE
// =============================================================================

// DefaultLoadTimeout bounds a shared backend read. Callers waiting on the
// same query are not tied to the context of the one that started it.
const DefaultLoadTimeout = 30 * time.Second

// Snapshots persists the last good payload per query key.
type Snapshots interface {
	Put(ctx context.Context, key string, payload []byte, fetchedAt time.Time) error
	Get(ctx context.Context, key string) (snapshot.Entry, error)
}

// Store gives typed access to the plant tables.
type Store struct {
	backend datasvc.Backend
	cache   *Cache
	snaps   Snapshots
	group   singleflight.Group
	now     func() time.Time
	logger  *slog.Logger

	loadTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the cache TTL. Zero disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.cache = NewCache(ttl, s.now) }
}

// WithSnapshots attaches a snapshot store.
func WithSnapshots(snaps Snapshots) Option {
	return func(s *Store) { s.snaps = snaps }
}

// WithClock sets the time source used for cache expiry and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
		s.cache = NewCache(s.cache.ttl, now)
	}
}

// WithLoadTimeout bounds each shared backend read.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store over backend.
func New(backend datasvc.Backend, opts ...Option) *Store {
	s := &Store{
		backend:     backend,
		now:         time.Now,
		logger:      slog.Default(),
		loadTimeout: DefaultLoadTimeout,
	}
	s.cache = NewCache(30*time.Second, s.now)
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "store")
	return s
}

// Backend returns the underlying backend.
func (s *Store) Backend() datasvc.Backend {
	return s.backend
}

// Invalidate drops the cached reads of table.
func (s *Store) Invalidate(table string) {
	s.cache.InvalidateTable(table)
}

// Refresh drops every cached read.
func (s *Store) Refresh() {
	s.cache.Clear()
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// fetch resolves key from the cache, the backend or the snapshot store,
// in that order, and decodes it into dest.
func (s *Store) fetch(ctx context.Context, key, table string, load func(ctx context.Context, raw *json.RawMessage) error, dest any) error {
	if payload, ok := s.cache.Get(key); ok {
		return decode(payload, dest)
	}

	ch := s.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()

		var raw json.RawMessage
		if err := load(lctx, &raw); err != nil {
			return nil, err
		}
		s.cache.Put(key, table, raw)
		if s.snaps != nil {
			if err := s.snaps.Put(lctx, key, raw, s.now()); err != nil {
				s.logger.Warn("snapshot write failed", "key", key, "error", err)
			}
		}
		return []byte(raw), nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}
	err := res.Err
	if err == nil {
		return decode(res.Val.([]byte), dest)
	}

	if s.snaps == nil || errors.Is(err, context.Canceled) {
		return err
	}
	entry, serr := s.snaps.Get(ctx, key)
	if serr != nil {
		return err
	}
	s.logger.Warn("serving snapshot", "key", key, "fetched_at", entry.FetchedAt, "error", err)
	if derr := decode(entry.Payload, dest); derr != nil {
		return err
	}
	return &StaleError{Table: table, FetchedAt: entry.FetchedAt, Cause: err}
}

// list fetches the rows of table matching q.
func (s *Store) list(ctx context.Context, key, table string, q datasvc.Query, dest any) error {
	return s.fetch(ctx, key, table, func(ctx context.Context, raw *json.RawMessage) error {
		return s.backend.Select(ctx, table, q, raw)
	}, dest)
}

func decode(payload []byte, dest any) error {
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("failed to decode rows: %w", err)
	}
	return nil
}

func encodeRaw(v any, raw *json.RawMessage) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	*raw = data
	return nil
}

func remarshal(v any, dest any) error {
	var raw json.RawMessage
	if err := encodeRaw(v, &raw); err != nil {
		return err
	}
	return decode(raw, dest)
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// firstRow decodes the first returned row of a mutation into dest, or
// reports ErrNotFound when nothing matched.
func firstRow[T any](rows []T, table, id string) (T, error) {
	if len(rows) == 0 {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", table, id, datasvc.ErrNotFound)
	}
	return rows[0], nil
}
