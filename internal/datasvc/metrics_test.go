// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package datasvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumented_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	mem := seededMemory(t)
	b := Instrument(mem, metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	require.NoError(t, b.Select(ctx, "coal_yards", Query{}, nil))
	require.NoError(t, b.Select(ctx, "coal_yards", Query{}, nil))
	assert.ErrorIs(t, b.Call(ctx, "missing", nil, nil), ErrNotFound)

	mem.FailWith(errors.New("down"))
	assert.Error(t, b.Update(ctx, "coal_yards", []Filter{Eq("id", "y1")}, Row{"status": "Depleted"}, nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("select", "coal_yards", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("rpc", "missing", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("update", "coal_yards", "error")))

	n, err := testutil.GatherAndCount(reg, "nums_backend_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "conflict", outcome(ErrConflict))
	assert.Equal(t, "cancelled", outcome(context.Canceled))
	assert.Equal(t, "rate_limited", outcome(ErrRateLimited))
}
