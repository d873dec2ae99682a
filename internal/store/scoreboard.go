// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/nums-tui/internal/domain"
)

// Overview is everything the Overview tab shows.
type Overview struct {
	Scoreboard domain.Scoreboard
	Yards      []domain.CoalYard
	Chemicals  []domain.Chemical
	Power      []domain.PowerReading
	Salt       *domain.SaltTracker
}

// staleSet remembers the first stale error seen by concurrent loaders.
type staleSet struct {
	mu  sync.Mutex
	err error
}

func (s *staleSet) keep(err error) error {
	if err == nil || !IsStale(err) {
		return err
	}
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	return nil
}

// Overview loads the scoreboard datasets concurrently. When some of them
// came from snapshots the result is complete and err is a *StaleError.
func (s *Store) Overview(ctx context.Context) (Overview, error) {
	var (
		ov    Overview
		stale staleSet
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		yards, err := s.CoalYards(gctx)
		ov.Yards = yards
		return stale.keep(err)
	})
	g.Go(func() error {
		chemicals, err := s.Chemicals(gctx)
		ov.Chemicals = chemicals
		return stale.keep(err)
	})
	g.Go(func() error {
		power, err := s.LatestPower(gctx)
		ov.Power = power
		return stale.keep(err)
	})
	g.Go(func() error {
		salt, err := s.Salt(gctx)
		ov.Salt = salt
		return stale.keep(err)
	})

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	ov.Scoreboard = domain.BuildScoreboard(ov.Yards, ov.Chemicals, ov.Salt, ov.Power, s.now())
	return ov, stale.err
}
