// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/jeranaias/nums-tui/internal/datasvc"
	"github.com/jeranaias/nums-tui/internal/domain"
)

// ActiveBulletins lists the newest active bulletins.
func (s *Store) ActiveBulletins(ctx context.Context) ([]domain.Bulletin, error) {
	var bulletins []domain.Bulletin
	err := s.list(ctx, "bulletins", TableBulletins, datasvc.Query{
		Filters: []datasvc.Filter{datasvc.Eq("is_active", true)},
		Order:   datasvc.Desc("created_at"),
		Limit:   domain.ActiveBulletinLimit,
	}, &bulletins)
	return bulletins, err
}

// CreateBulletin validates and posts a bulletin.
func (s *Store) CreateBulletin(ctx context.Context, draft domain.BulletinDraft) (domain.Bulletin, error) {
	draft, err := draft.Normalize()
	if err != nil {
		return domain.Bulletin{}, err
	}
	var rows []domain.Bulletin
	err = s.backend.Insert(ctx, TableBulletins, datasvc.Row{"title": draft.Title, "message": draft.Message}, &rows)
	if err != nil {
		return domain.Bulletin{}, fmt.Errorf("failed to create bulletin: %w", err)
	}
	s.Invalidate(TableBulletins)
	return firstRow(rows, TableBulletins, "")
}

// DeactivateBulletin hides a bulletin from the board.
func (s *Store) DeactivateBulletin(ctx context.Context, id string) (domain.Bulletin, error) {
	var rows []domain.Bulletin
	err := s.backend.Update(ctx, TableBulletins, []datasvc.Filter{datasvc.Eq("id", id)},
		datasvc.Row{"is_active": false}, &rows)
	if err != nil {
		return domain.Bulletin{}, fmt.Errorf("failed to remove bulletin: %w", err)
	}
	s.Invalidate(TableBulletins)
	return firstRow(rows, TableBulletins, id)
}
