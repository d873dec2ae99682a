// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/jeranaias/nums-tui/internal/datasvc"
	"github.com/jeranaias/nums-tui/internal/domain"
)

// Users lists every user, newest first.
func (s *Store) Users(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.list(ctx, "users", TableUsers, datasvc.Query{Order: datasvc.Desc("created_at")}, &users)
	return users, err
}

// User finds a user by id.
func (s *Store) User(ctx context.Context, id string) (domain.User, error) {
	users, err := s.Users(ctx)
	if err != nil && !IsStale(err) {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %s: %w", id, datasvc.ErrNotFound)
}

// UpdateUserRole sets a user's role.
func (s *Store) UpdateUserRole(ctx context.Context, id string, role domain.Role) (domain.User, error) {
	var rows []domain.User
	err := s.backend.Update(ctx, TableUsers, []datasvc.Filter{datasvc.Eq("id", id)},
		datasvc.Row{"role": role, "updated_at": s.timestamp()}, &rows)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to update role: %w", err)
	}
	s.Invalidate(TableUsers)
	return firstRow(rows, TableUsers, id)
}

// ApproveUser promotes a pending Guest to Opscrew.
func (s *Store) ApproveUser(ctx context.Context, actor domain.Actor, u domain.User) (domain.User, error) {
	role, err := domain.ApproveRole(actor, u)
	if err != nil {
		return domain.User{}, err
	}
	return s.UpdateUserRole(ctx, u.ID, role)
}

// RejectUser demotes a user back to Guest.
func (s *Store) RejectUser(ctx context.Context, actor domain.Actor, u domain.User) (domain.User, error) {
	role, err := domain.RejectRole(actor, u)
	if err != nil {
		return domain.User{}, err
	}
	return s.UpdateUserRole(ctx, u.ID, role)
}

// DeleteUser removes a user the actor is allowed to delete.
func (s *Store) DeleteUser(ctx context.Context, actor domain.Actor, u domain.User) error {
	if err := domain.CheckDelete(actor, u); err != nil {
		return err
	}
	var rows []domain.User
	if err := s.backend.Delete(ctx, TableUsers, []datasvc.Filter{datasvc.Eq("id", u.ID)}, &rows); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.Invalidate(TableUsers)
	_, err := firstRow(rows, TableUsers, u.ID)
	return err
}
