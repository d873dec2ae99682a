// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	_, err := s.Get(ctx, "coal_yards")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "coal_yards", []byte(`[{"id":"y1"}]`), at))
	e, err := s.Get(ctx, "coal_yards")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"y1"}]`, string(e.Payload))
	assert.True(t, e.FetchedAt.Equal(at))
	assert.Equal(t, time.Minute, e.Age(at.Add(time.Minute)))

	// Put replaces.
	require.NoError(t, s.Put(ctx, "coal_yards", []byte(`[]`), at.Add(time.Hour)))
	e, err = s.Get(ctx, "coal_yards")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(e.Payload))
	assert.True(t, e.FetchedAt.Equal(at.Add(time.Hour)))
}

func TestStore_PurgeAndKeys(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.Put(ctx, "users", []byte(`[]`), at))
	require.NoError(t, s.Put(ctx, "chemicals", []byte(`[]`), at.Add(2*time.Hour)))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"chemicals", "users"}, keys)

	n, err := s.Purge(ctx, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	keys, err = s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"chemicals"}, keys)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "salt_tracker", []byte(`{"sacks":12}`), time.Now()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	e, err := s.Get(ctx, "salt_tracker")
	require.NoError(t, err)
	assert.Equal(t, `{"sacks":12}`, string(e.Payload))
	assert.Equal(t, path, s.Path())
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
