// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jeranaias/nums-tui/internal/datasvc"
	"github.com/jeranaias/nums-tui/internal/domain"
)

// DefaultNotificationLimit is the size of the notification panel.
const DefaultNotificationLimit = 5

// Notifications lists the newest notifications.
func (s *Store) Notifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	var out []domain.Notification
	err := s.list(ctx, "notifications|"+strconv.Itoa(limit), TableNotifications, datasvc.Query{
		Order: datasvc.Desc("created_at"),
		Limit: limit,
	}, &out)
	return out, err
}

// UnreadCount counts unread notifications among the newest limit.
func UnreadCount(ns []domain.Notification) int {
	n := 0
	for _, x := range ns {
		if !x.IsRead {
			n++
		}
	}
	return n
}

// MarkNotificationRead flags a notification as read.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	err := s.backend.Update(ctx, TableNotifications, []datasvc.Filter{datasvc.Eq("id", id)},
		datasvc.Row{"is_read": true}, nil)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	s.Invalidate(TableNotifications)
	return nil
}
