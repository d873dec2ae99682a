// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jeranaias/nums-tui/internal/datasvc"
	"github.com/jeranaias/nums-tui/internal/domain"
)

// =============================================================================
// CHEMICALS
// =============================================================================

// Chemicals lists chemicals by name.
func (s *Store) Chemicals(ctx context.Context) ([]domain.Chemical, error) {
	var chemicals []domain.Chemical
	err := s.list(ctx, "chemicals", TableChemicals, datasvc.Query{Order: datasvc.Asc("name")}, &chemicals)
	return chemicals, err
}

// ChemicalUpdate is a stock level change.
type ChemicalUpdate struct {
	CBY    float64
	Liters float64
	Status domain.StockStatus
}

// UpdateChemical records new stock levels for a chemical.
func (s *Store) UpdateChemical(ctx context.Context, id string, u ChemicalUpdate) (domain.Chemical, error) {
	if _, err := domain.ParseStockStatus(string(u.Status)); err != nil {
		return domain.Chemical{}, &domain.ValidationError{Field: "status", Message: err.Error()}
	}
	if u.CBY < 0 || u.Liters < 0 {
		return domain.Chemical{}, &domain.ValidationError{Field: "liters", Message: "stock levels cannot be negative"}
	}
	var rows []domain.Chemical
	err := s.backend.Update(ctx, TableChemicals, []datasvc.Filter{datasvc.Eq("id", id)}, datasvc.Row{
		"cby":          u.CBY,
		"liters":       u.Liters,
		"status":       u.Status,
		"last_updated": s.timestamp(),
	}, &rows)
	if err != nil {
		return domain.Chemical{}, fmt.Errorf("failed to update chemical: %w", err)
	}
	s.Invalidate(TableChemicals)
	return firstRow(rows, TableChemicals, id)
}

// =============================================================================
// COAL YARDS
// =============================================================================

// CoalYards lists the yards by number.
func (s *Store) CoalYards(ctx context.Context) ([]domain.CoalYard, error) {
	var yards []domain.CoalYard
	err := s.list(ctx, "coal-yards", TableCoalYards, datasvc.Query{Order: datasvc.Asc("yard_number")}, &yards)
	return yards, err
}

// SetYardStatus sets a yard's status.
func (s *Store) SetYardStatus(ctx context.Context, id string, status domain.YardStatus) (domain.CoalYard, error) {
	var rows []domain.CoalYard
	err := s.backend.Update(ctx, TableCoalYards, []datasvc.Filter{datasvc.Eq("id", id)},
		datasvc.Row{"status": status, "last_updated": s.timestamp()}, &rows)
	if err != nil {
		return domain.CoalYard{}, fmt.Errorf("failed to update coal yard: %w", err)
	}
	s.Invalidate(TableCoalYards)
	return firstRow(rows, TableCoalYards, id)
}

// ToggleYard flips a yard between Available and Depleted. Admin only.
func (s *Store) ToggleYard(ctx context.Context, actor domain.Actor, y domain.CoalYard) (domain.CoalYard, error) {
	next, err := domain.ToggleYard(actor, y)
	if err != nil {
		return domain.CoalYard{}, err
	}
	return s.SetYardStatus(ctx, y.ID, next)
}

// =============================================================================
// POWER
// =============================================================================

// PowerReadings lists every reading, newest first.
func (s *Store) PowerReadings(ctx context.Context) ([]domain.PowerReading, error) {
	var readings []domain.PowerReading
	err := s.list(ctx, "power-consumption", TablePower, datasvc.Query{Order: datasvc.Desc("recorded_at")}, &readings)
	return readings, err
}

// LatestPower returns the newest reading per section. The stored function
// is tried first; if the service does not have it the readings are grouped
// locally.
func (s *Store) LatestPower(ctx context.Context) ([]domain.PowerReading, error) {
	var readings []domain.PowerReading
	err := s.fetch(ctx, "latest-power-by-section", TablePower, func(ctx context.Context, raw *json.RawMessage) error {
		err := s.backend.Call(ctx, FnLatestPower, nil, raw)
		if err == nil || ctx.Err() != nil {
			return err
		}
		s.logger.Debug("latest power rpc unavailable, grouping locally", "error", err)

		var all []domain.PowerReading
		if err := s.backend.Select(ctx, TablePower, datasvc.Query{Order: datasvc.Desc("recorded_at")}, &all); err != nil {
			return err
		}
		return encodeRaw(domain.LatestBySection(all), raw)
	}, &readings)
	return readings, err
}

// =============================================================================
// SALT
// =============================================================================

// Salt returns the salt inventory row. A missing row yields nil.
func (s *Store) Salt(ctx context.Context) (*domain.SaltTracker, error) {
	var salt domain.SaltTracker
	err := s.list(ctx, "salt-tracker", TableSalt, datasvc.Query{
		Order:  datasvc.Desc("last_updated"),
		Limit:  1,
		Single: true,
	}, &salt)
	if errors.Is(err, datasvc.ErrNotFound) && !IsStale(err) {
		return nil, nil
	}
	if err != nil && !IsStale(err) {
		return nil, err
	}
	return &salt, err
}

// UpdateSalt records the current salt stock.
func (s *Store) UpdateSalt(ctx context.Context, sacks int, status domain.StockStatus) (domain.SaltTracker, error) {
	if sacks < 0 {
		return domain.SaltTracker{}, &domain.ValidationError{Field: "sacks", Message: "cannot be negative"}
	}
	if _, err := domain.ParseStockStatus(string(status)); err != nil {
		return domain.SaltTracker{}, &domain.ValidationError{Field: "status", Message: err.Error()}
	}

	var current struct {
		ID string `json:"id"`
	}
	err := s.backend.Select(ctx, TableSalt, datasvc.Query{Columns: []string{"id"}, Single: true}, &current)
	if err != nil {
		return domain.SaltTracker{}, fmt.Errorf("failed to find salt tracker: %w", err)
	}

	var rows []domain.SaltTracker
	err = s.backend.Update(ctx, TableSalt, []datasvc.Filter{datasvc.Eq("id", current.ID)}, datasvc.Row{
		"sacks":        sacks,
		"status":       status,
		"last_updated": s.timestamp(),
	}, &rows)
	if err != nil {
		return domain.SaltTracker{}, fmt.Errorf("failed to update salt tracker: %w", err)
	}
	s.Invalidate(TableSalt)
	return firstRow(rows, TableSalt, current.ID)
}
