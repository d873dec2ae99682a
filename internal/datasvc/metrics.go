// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package datasvc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the backend collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nums",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Data service calls by operation, table and outcome.",
		}, []string{"op", "table", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nums",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Data service call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "table"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

// Collectors returns the collectors for custom registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.duration}
}

func (m *Metrics) observe(op, table string, start time.Time, err error) {
	m.requests.WithLabelValues(op, table, outcome(err)).Inc()
	m.duration.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

// Instrumented records metrics for every call made through the wrapped
// Backend and logs failures.
type Instrumented struct {
	next    Backend
	metrics *Metrics
	logger  *slog.Logger
}

// Instrument wraps next. A nil logger uses slog.Default.
func Instrument(next Backend, m *Metrics, logger *slog.Logger) *Instrumented {
	if logger == nil {
		logger = slog.Default()
	}
	return &Instrumented{next: next, metrics: m, logger: logger.With("component", "datasvc")}
}

func (i *Instrumented) done(op, table string, start time.Time, err error) {
	i.metrics.observe(op, table, start, err)
	if err != nil && !errors.Is(err, context.Canceled) {
		i.logger.Warn("backend call failed", "op", op, "table", table, "error", err)
	}
}

// Select implements Backend.
func (i *Instrumented) Select(ctx context.Context, table string, q Query, dest any) error {
	start := time.Now()
	err := i.next.Select(ctx, table, q, dest)
	i.done("select", table, start, err)
	return err
}

// Insert implements Backend.
func (i *Instrumented) Insert(ctx context.Context, table string, row Row, dest any) error {
	start := time.Now()
	err := i.next.Insert(ctx, table, row, dest)
	i.done("insert", table, start, err)
	return err
}

// Update implements Backend.
func (i *Instrumented) Update(ctx context.Context, table string, filters []Filter, patch Row, dest any) error {
	start := time.Now()
	err := i.next.Update(ctx, table, filters, patch, dest)
	i.done("update", table, start, err)
	return err
}

// Delete implements Backend.
func (i *Instrumented) Delete(ctx context.Context, table string, filters []Filter, dest any) error {
	start := time.Now()
	err := i.next.Delete(ctx, table, filters, dest)
	i.done("delete", table, start, err)
	return err
}

// Call implements Backend.
func (i *Instrumented) Call(ctx context.Context, fn string, args Row, dest any) error {
	start := time.Now()
	err := i.next.Call(ctx, fn, args, dest)
	i.done("rpc", fn, start, err)
	return err
}

// Ping implements Backend.
func (i *Instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := i.next.Ping(ctx)
	i.done("ping", "", start, err)
	return err
}

// Close implements Backend.
func (i *Instrumented) Close() error {
	return i.next.Close()
}
