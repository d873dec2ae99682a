// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jeranaias/nums-tui/internal/datasvc"
	"github.com/jeranaias/nums-tui/internal/domain"
	"github.com/jeranaias/nums-tui/internal/snapshot"
	"github.com/jeranaias/nums-tui/internal/store"
)

var testNow = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer serves the demo plant from memory.
func newTestServer(t *testing.T, storeOpts ...store.Option) (*httptest.Server, *datasvc.Memory, *prometheus.Registry) {
	t.Helper()
	clock := func() time.Time { return testNow }

	mem := datasvc.NewMemory()
	mem.SetClock(clock)
	require.NoError(t, store.SeedDemo(mem, testNow))

	reg := prometheus.NewRegistry()
	backend := datasvc.Instrument(mem, datasvc.NewMetrics(reg), quietLogger())
	base := []store.Option{store.WithClock(clock), store.WithLogger(quietLogger())}
	st := store.New(backend, append(base, storeOpts...)...)

	srv := New(st,
		WithLogger(quietLogger()),
		WithRegistry(reg),
		WithClock(clock),
		WithRateLimiter(nil),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, mem, reg
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// =============================================================================
// HEALTH AND METRICS
// =============================================================================

func TestHandleHealth(t *testing.T) {
	ts, mem, _ := newTestServer(t)

	resp := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var body HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)

	mem.FailWith(errors.New("connection refused"))
	resp = get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Contains(t, body.Error, "connection refused")
}

func TestHandleMetrics(t *testing.T) {
	ts, _, _ := newTestServer(t)
	get(t, ts.URL+"/api/scoreboard")

	resp := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(raw)
	assert.Contains(t, text, `nums_http_requests_total{code="200",route="/api/scoreboard"} 1`)
	assert.Contains(t, text, "nums_backend_requests_total")
}

func TestNotFound(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp := get(t, ts.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusNotFound, body.Code)
}

// =============================================================================
// SCOREBOARD
// =============================================================================

func TestHandleScoreboard(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := get(t, ts.URL+"/api/scoreboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Header.Get(staleHeader))

	var sb domain.Scoreboard
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sb))
	assert.Equal(t, 7, sb.AvailableYards)
	assert.Equal(t, 9, sb.TotalYards)
	assert.Equal(t, []string{"Yard 4", "Yard 8"}, sb.DepletedYards)
	assert.Equal(t, 455.4, sb.CurrentPowerKW)
	assert.Equal(t, "Above Average", sb.PowerTrend)
}

func TestHandleScoreboard_BackendDown(t *testing.T) {
	ts, mem, _ := newTestServer(t)
	mem.FailWith(errors.New("service unavailable"))

	resp := get(t, ts.URL+"/api/scoreboard")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

// =============================================================================
// EXPORTS
// =============================================================================

func TestHandleCSV(t *testing.T) {
	ts, _, _ := newTestServer(t)

	tests := []struct {
		dataset string
		header  []string
		rows    int
	}{
		{"coal_yards", []string{"yard_name", "yard_number", "status", "last_updated"}, 9},
		{"chemicals", []string{"name", "cby", "liters", "status", "last_updated"}, 3},
		{"power_consumption", []string{"section", "consumption_kw", "recorded_at"}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.dataset, func(t *testing.T) {
			resp := get(t, ts.URL+"/export/"+tt.dataset+".csv")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.Equal(t,
				`attachment; filename="`+tt.dataset+`_2025-01-10.csv"`,
				resp.Header.Get("Content-Disposition"))

			records, err := csv.NewReader(resp.Body).ReadAll()
			require.NoError(t, err)
			require.NotEmpty(t, records)
			assert.Equal(t, tt.header, records[0])
			assert.Len(t, records, tt.rows+1)
		})
	}
}

func TestHandleCSV_UnknownDataset(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp := get(t, ts.URL+"/export/users.csv")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleWorkbook(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := get(t, ts.URL+"/export/all.xlsx")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "nums_export_2025-01-10.xlsx")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"coal_yards", "chemicals", "power_consumption"}, f.GetSheetList())
}

func TestHandleCSV_ServesStaleSnapshot(t *testing.T) {
	snaps, err := snapshot.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	defer snaps.Close()

	ts, mem, _ := newTestServer(t, store.WithTTL(0), store.WithSnapshots(snaps))

	resp := get(t, ts.URL+"/export/coal_yards.csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	mem.FailWith(errors.New("service unavailable"))
	resp = get(t, ts.URL+"/export/coal_yards.csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2025-01-10T09:00:00Z", resp.Header.Get(staleHeader))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 10, strings.Count(string(raw), "\n"))

	// Chemicals were never fetched, so there is nothing to fall back to.
	resp = get(t, ts.URL+"/export/chemicals.csv")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

// =============================================================================
// MIDDLEWARE AND LIFECYCLE
// =============================================================================

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "limits are per client")
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimitMiddleware(NewRateLimiter(1, 1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	mem := datasvc.NewMemory()
	srv := New(store.New(mem, store.WithLogger(quietLogger())), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
