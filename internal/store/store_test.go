// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/nums-tui/internal/datasvc"
	"github.com/jeranaias/nums-tui/internal/domain"
	"github.com/jeranaias/nums-tui/internal/snapshot"
)

var (
	testNow   = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	testAdmin = domain.Actor{ID: DemoAdminID, Name: "Plant Administrator", Role: domain.RoleAdmin}
	errDown   = errors.New("service unavailable")
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDemoStore(t *testing.T, opts ...Option) (*Store, *datasvc.Memory) {
	t.Helper()
	mem := datasvc.NewMemory()
	mem.SetClock(func() time.Time { return testNow })
	require.NoError(t, SeedDemo(mem, testNow))
	base := []Option{WithClock(func() time.Time { return testNow }), WithLogger(quietLogger())}
	return New(mem, append(base, opts...)...), mem
}

// =============================================================================
// USERS
// =============================================================================

func TestUsers_NewestFirst(t *testing.T) {
	s, _ := newDemoStore(t)
	users, err := s.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 5)
	assert.Equal(t, "Jose Lim", users[0].FullName)
	assert.Equal(t, "Plant Administrator", users[4].FullName)
	assert.Equal(t, 2, domain.PendingApprovals(users))
}

func TestApproveAndRejectUser(t *testing.T) {
	s, _ := newDemoStore(t)
	ctx := context.Background()

	guest, err := s.User(ctx, "00000000-0000-4000-8000-000000000004")
	require.NoError(t, err)

	approved, err := s.ApproveUser(ctx, testAdmin, guest)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOpscrew, approved.Role)
	assert.True(t, approved.UpdatedAt.Equal(testNow))

	// The cached list was invalidated.
	reloaded, err := s.User(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOpscrew, reloaded.Role)

	rejected, err := s.RejectUser(ctx, testAdmin, reloaded)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleGuest, rejected.Role)

	_, err = s.ApproveUser(ctx, domain.Actor{ID: "x", Role: domain.RoleMantech}, rejected)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteUser(t *testing.T) {
	s, mem := newDemoStore(t)
	ctx := context.Background()

	self, err := s.User(ctx, DemoAdminID)
	require.NoError(t, err)
	assert.ErrorIs(t, s.DeleteUser(ctx, testAdmin, self), domain.ErrSelfDelete)

	guest, err := s.User(ctx, "00000000-0000-4000-8000-000000000005")
	require.NoError(t, err)
	require.NoError(t, s.DeleteUser(ctx, testAdmin, guest))
	assert.Len(t, mem.Rows(TableUsers), 4)

	_, err = s.User(ctx, guest.ID)
	assert.ErrorIs(t, err, datasvc.ErrNotFound)

	assert.ErrorIs(t, s.DeleteUser(ctx, testAdmin, guest), datasvc.ErrNotFound)
}

// =============================================================================
// BULLETINS
// =============================================================================

func TestBulletins_CreateAndDeactivate(t *testing.T) {
	s, _ := newDemoStore(t)
	ctx := context.Background()

	active, err := s.ActiveBulletins(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Boiler 2 shutdown", active[0].Title)

	_, err = s.CreateBulletin(ctx, domain.BulletinDraft{Title: "  ", Message: "x"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	created, err := s.CreateBulletin(ctx, domain.BulletinDraft{Title: " Water outage ", Message: "Line 3 tonight."})
	require.NoError(t, err)
	assert.Equal(t, "Water outage", created.Title)
	assert.True(t, created.IsActive)

	active, err = s.ActiveBulletins(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, created.ID, active[0].ID)

	// A fourth active bulletin pushes the oldest off the board.
	_, err = s.CreateBulletin(ctx, domain.BulletinDraft{Title: "Later", Message: "Later still."})
	require.NoError(t, err)
	active, err = s.ActiveBulletins(ctx)
	require.NoError(t, err)
	assert.Len(t, active, domain.ActiveBulletinLimit)

	_, err = s.DeactivateBulletin(ctx, created.ID)
	require.NoError(t, err)
	active, err = s.ActiveBulletins(ctx)
	require.NoError(t, err)
	for _, b := range active {
		assert.NotEqual(t, created.ID, b.ID)
	}
}

// =============================================================================
// INVENTORY
// =============================================================================

func TestChemicals_OrderedAndUpdated(t *testing.T) {
	s, _ := newDemoStore(t)
	ctx := context.Background()

	chems, err := s.Chemicals(ctx)
	require.NoError(t, err)
	require.Len(t, chems, 3)
	assert.Equal(t, []string{"Caustic Soda", "Chlorine", "Phosphate"},
		[]string{chems[0].Name, chems[1].Name, chems[2].Name})

	updated, err := s.UpdateChemical(ctx, chems[2].ID, ChemicalUpdate{CBY: 3, Liters: 900, Status: domain.StockNormal})
	require.NoError(t, err)
	assert.Equal(t, 900.0, updated.Liters)
	assert.True(t, updated.LastUpdated.Equal(testNow))

	_, err = s.UpdateChemical(ctx, chems[2].ID, ChemicalUpdate{Status: "Plenty"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestToggleYard(t *testing.T) {
	s, _ := newDemoStore(t)
	ctx := context.Background()

	yards, err := s.CoalYards(ctx)
	require.NoError(t, err)
	require.Len(t, yards, 9)
	assert.Equal(t, 1, yards[0].YardNumber)

	y, err := s.ToggleYard(ctx, testAdmin, yards[0])
	require.NoError(t, err)
	assert.Equal(t, domain.YardDepleted, y.Status)

	_, err = s.ToggleYard(ctx, domain.Actor{Role: domain.RoleOpscrew}, yards[1])
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLatestPower_FallsBackWithoutFunction(t *testing.T) {
	mem := datasvc.NewMemory()
	t0 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, mem.Seed(TablePower,
		domain.PowerReading{ID: "a", Section: domain.SectionUtilities, ConsumptionKW: 400, RecordedAt: t0},
		domain.PowerReading{ID: "b", Section: domain.SectionUtilities, ConsumptionKW: 455.4, RecordedAt: t0.Add(time.Hour)},
		domain.PowerReading{ID: "c", Section: domain.SectionBottling, ConsumptionKW: 800, RecordedAt: t0},
	))
	s := New(mem, WithLogger(quietLogger()))

	latest, err := s.LatestPower(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "b", latest[0].ID)
	assert.Equal(t, "c", latest[1].ID)
}

func TestSalt(t *testing.T) {
	s, _ := newDemoStore(t)
	ctx := context.Background()

	salt, err := s.Salt(ctx)
	require.NoError(t, err)
	require.NotNil(t, salt)
	assert.Equal(t, 24, salt.Sacks)

	updated, err := s.UpdateSalt(ctx, 60, domain.StockNormal)
	require.NoError(t, err)
	assert.Equal(t, 60, updated.Sacks)

	salt, err = s.Salt(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StockNormal, salt.Status)

	_, err = s.UpdateSalt(ctx, -1, domain.StockLow)
	assert.Error(t, err)
}

func TestSalt_EmptyTable(t *testing.T) {
	mem := datasvc.NewMemory()
	require.NoError(t, mem.Seed(TableSalt))
	s := New(mem, WithLogger(quietLogger()))

	salt, err := s.Salt(context.Background())
	require.NoError(t, err)
	assert.Nil(t, salt)
}

func TestNotifications(t *testing.T) {
	s, _ := newDemoStore(t)
	ctx := context.Background()

	ns, err := s.Notifications(ctx, 0)
	require.NoError(t, err)
	require.Len(t, ns, 3)
	assert.Equal(t, 2, UnreadCount(ns))

	require.NoError(t, s.MarkNotificationRead(ctx, ns[0].ID))
	ns, err = s.Notifications(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, UnreadCount(ns))
}

// =============================================================================
// OVERVIEW
// =============================================================================

func TestOverview(t *testing.T) {
	s, _ := newDemoStore(t)
	ov, err := s.Overview(context.Background())
	require.NoError(t, err)

	sb := ov.Scoreboard
	assert.Equal(t, 7, sb.AvailableYards)
	assert.Equal(t, 9, sb.TotalYards)
	assert.Equal(t, []string{"Yard 4", "Yard 8"}, sb.DepletedYards)
	assert.Equal(t, 455.4, sb.CurrentPowerKW)
	assert.Equal(t, "Above Average", sb.PowerTrend)
	assert.Equal(t, 35, sb.SaltPercent)
	assert.Len(t, ov.Power, 4)
}

// =============================================================================
// CACHE AND SNAPSHOTS
// =============================================================================

func TestCache_ServesUntilExpiry(t *testing.T) {
	now := testNow
	s, mem := newDemoStore(t, WithClock(func() time.Time { return now }), WithTTL(30*time.Second))
	ctx := context.Background()

	_, err := s.Chemicals(ctx)
	require.NoError(t, err)

	mem.FailWith(errDown)
	chems, err := s.Chemicals(ctx)
	require.NoError(t, err)
	assert.Len(t, chems, 3)

	now = now.Add(31 * time.Second)
	_, err = s.Chemicals(ctx)
	assert.ErrorIs(t, err, errDown)
}

func TestSnapshotFallback(t *testing.T) {
	snaps, err := snapshot.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	defer snaps.Close()

	s, mem := newDemoStore(t, WithTTL(0), WithSnapshots(snaps))
	ctx := context.Background()

	yards, err := s.CoalYards(ctx)
	require.NoError(t, err)
	require.Len(t, yards, 9)

	mem.FailWith(errDown)
	yards, err = s.CoalYards(ctx)
	require.Error(t, err)
	assert.True(t, IsStale(err))
	assert.ErrorIs(t, err, errDown)
	assert.Len(t, yards, 9)

	var stale *StaleError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, TableCoalYards, stale.Table)
	assert.True(t, stale.FetchedAt.Equal(testNow))

	// Nothing was ever fetched for users, so there is nothing to fall back to.
	_, err = s.Users(ctx)
	assert.ErrorIs(t, err, errDown)
	assert.False(t, IsStale(err))

	// Overview still renders from snapshots only when every dataset has one.
	_, err = s.Overview(ctx)
	assert.Error(t, err)
}

// gatedBackend holds every Select until release is closed.
type gatedBackend struct {
	datasvc.Backend
	entered chan struct{}
	release chan struct{}
}

func (g *gatedBackend) Select(ctx context.Context, table string, q datasvc.Query, dest any) error {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.Backend.Select(ctx, table, q, dest)
}

func TestSharedLoadSurvivesFirstCallerCancel(t *testing.T) {
	mem := datasvc.NewMemory()
	mem.SetClock(func() time.Time { return testNow })
	require.NoError(t, SeedDemo(mem, testNow))
	gate := &gatedBackend{Backend: mem, entered: make(chan struct{}, 1), release: make(chan struct{})}
	s := New(gate, WithClock(func() time.Time { return testNow }), WithLogger(quietLogger()), WithTTL(0))

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.CoalYards(first)
		firstErr <- err
	}()
	<-gate.entered

	type result struct {
		yards []domain.CoalYard
		err   error
	}
	second := make(chan result, 1)
	go func() {
		yards, err := s.CoalYards(context.Background())
		second <- result{yards, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(gate.release)
	select {
	case got := <-second:
		require.NoError(t, got.err)
		assert.Len(t, got.yards, 9)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never returned")
	}
}

func TestSharedLoadTimesOut(t *testing.T) {
	mem := datasvc.NewMemory()
	gate := &gatedBackend{Backend: mem, entered: make(chan struct{}, 1), release: make(chan struct{})}
	defer close(gate.release)
	s := New(gate, WithLogger(quietLogger()), WithTTL(0), WithLoadTimeout(20*time.Millisecond))

	_, err := s.CoalYards(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCache_InvalidateTable(t *testing.T) {
	c := NewCache(time.Minute, func() time.Time { return testNow })
	c.Put("users", TableUsers, []byte("[]"))
	c.Put("bulletins", TableBulletins, []byte("[]"))
	c.Put("notifications|5", TableNotifications, []byte("[]"))

	c.InvalidateTable(TableUsers)
	_, ok := c.Get("users")
	assert.False(t, ok)
	_, ok = c.Get("bulletins")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())

	off := NewCache(0, nil)
	off.Put("users", TableUsers, []byte("[]"))
	_, ok = off.Get("users")
	assert.False(t, ok)
}
