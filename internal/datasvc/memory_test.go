// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package datasvc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bytesReader(b []byte) io.Reader { return bytes.NewReader(b) }

func seededMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	require.NoError(t, m.Seed("coal_yards",
		yard{ID: "y3", YardName: "Yard 3", YardNumber: 3, Status: "Available"},
		yard{ID: "y1", YardName: "Yard 1", YardNumber: 1, Status: "Depleted"},
		yard{ID: "y2", YardName: "Yard 2", YardNumber: 2, Status: "Available"},
	))
	return m
}

func TestMemory_SelectOrderFilterLimit(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	var rows []yard
	require.NoError(t, m.Select(ctx, "coal_yards", Query{Order: Asc("yard_number")}, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"y1", "y2", "y3"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})

	rows = nil
	require.NoError(t, m.Select(ctx, "coal_yards", Query{
		Filters: []Filter{Eq("status", "Available")},
		Order:   Desc("yard_number"),
		Limit:   1,
	}, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "y3", rows[0].ID)

	rows = nil
	require.NoError(t, m.Select(ctx, "coal_yards", Query{
		Filters: []Filter{{Column: "yard_number", Op: OpGte, Value: 2}},
	}, &rows))
	assert.Len(t, rows, 2)
}

func TestMemory_UnknownTable(t *testing.T) {
	err := NewMemory().Select(context.Background(), "nope", Query{}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Single(t *testing.T) {
	m := seededMemory(t)
	var y yard
	require.NoError(t, m.Select(context.Background(), "coal_yards",
		Query{Filters: []Filter{Eq("id", "y2")}, Single: true}, &y))
	assert.Equal(t, "Yard 2", y.YardName)

	err := m.Select(context.Background(), "coal_yards", Query{Single: true}, &y)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_TimestampOrdering(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Seed("power_consumption",
		map[string]any{"id": "a", "recorded_at": "2025-01-10T08:00:00+08:00"},
		map[string]any{"id": "b", "recorded_at": "2025-01-10T01:30:00Z"},
	))

	var rows []map[string]any
	require.NoError(t, m.Select(context.Background(), "power_consumption", Query{Order: Desc("recorded_at")}, &rows))
	// 01:30Z is later than 08:00+08:00 (00:00Z).
	assert.Equal(t, "b", rows[0]["id"])
}

func TestMemory_InsertAppliesDefaults(t *testing.T) {
	m := NewMemory()
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now })
	m.SetDefaults("bulletins", Row{"is_active": true})

	var rows []map[string]any
	require.NoError(t, m.Insert(context.Background(), "bulletins", Row{"title": "t", "message": "m"}, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, true, rows[0]["is_active"])
	assert.NotEmpty(t, rows[0]["id"])
	assert.Equal(t, "2025-01-10T08:00:00Z", rows[0]["created_at"])

	err := m.Insert(context.Background(), "bulletins", Row{"id": rows[0]["id"]}, nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemory_UpdateAndDelete(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	var updated []yard
	require.NoError(t, m.Update(ctx, "coal_yards", []Filter{Eq("id", "y1")}, Row{"status": "Available"}, &updated))
	require.Len(t, updated, 1)
	assert.Equal(t, "Available", updated[0].Status)

	var deleted []yard
	require.NoError(t, m.Delete(ctx, "coal_yards", []Filter{Eq("id", "y3")}, &deleted))
	require.Len(t, deleted, 1)
	assert.Len(t, m.Rows("coal_yards"), 2)

	assert.ErrorIs(t, m.Update(ctx, "coal_yards", nil, Row{}, nil), errNoFilters)
	assert.ErrorIs(t, m.Delete(ctx, "coal_yards", nil, nil), errNoFilters)
}

func TestMemory_CallAndFailures(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	err := m.Call(ctx, "missing_fn", nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	m.Register("count_yards", func(tables map[string][]Row, _ Row) (any, error) {
		return []Row{{"n": len(tables["coal_yards"])}}, nil
	})
	var out []map[string]float64
	require.NoError(t, m.Call(ctx, "count_yards", nil, &out))
	assert.Equal(t, 3.0, out[0]["n"])

	boom := errors.New("offline")
	m.FailWith(boom)
	assert.ErrorIs(t, m.Ping(ctx), boom)
	m.FailWith(nil)
	assert.NoError(t, m.Ping(ctx))
}
