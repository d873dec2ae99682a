// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package datasvc

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Function is a stored function served by the Memory backend.
type Function func(tables map[string][]Row, args Row) (any, error)

// Memory is an in-process Backend. Rows are held in their JSON form so
// filters and ordering behave the same as the hosted service for strings,
// numbers, booleans and RFC 3339 timestamps.
type Memory struct {
	mu        sync.RWMutex
	tables    map[string][]Row
	defaults  map[string]Row
	functions map[string]Function
	now       func() time.Time
	failWith  error
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		tables:    make(map[string][]Row),
		defaults:  make(map[string]Row),
		functions: make(map[string]Function),
		now:       time.Now,
	}
}

// SetClock replaces the time source used for generated timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// SetDefaults sets column defaults applied on insert.
func (m *Memory) SetDefaults(table string, row Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults[table] = row
}

// Register adds a stored function.
func (m *Memory) Register(name string, fn Function) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.functions[name] = fn
}

// FailWith makes every call return err until cleared with nil.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Seed replaces the contents of table with rows, which may be any
// JSON-encodable values such as domain structs.
func (m *Memory) Seed(table string, rows ...any) error {
	normalized := make([]Row, 0, len(rows))
	for _, r := range rows {
		row, err := toRow(r)
		if err != nil {
			return fmt.Errorf("seed %s: %w", table, err)
		}
		normalized = append(normalized, row)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = normalized
	return nil
}

// Rows returns a copy of the rows in table.
func (m *Memory) Rows(table string) []Row {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Row, len(m.tables[table]))
	for i, r := range m.tables[table] {
		out[i] = copyRow(r)
	}
	return out
}

// Select implements Backend.
func (m *Memory) Select(ctx context.Context, table string, q Query, dest any) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	m.mu.RLock()
	rows, ok := m.tables[table]
	if !ok {
		m.mu.RUnlock()
		return fmt.Errorf("%w: relation %q", ErrNotFound, table)
	}
	matched := make([]Row, 0, len(rows))
	for _, r := range rows {
		if matchAll(r, q.Filters) {
			matched = append(matched, project(r, q.Columns))
		}
	}
	m.mu.RUnlock()

	if q.Order != nil {
		col, desc := q.Order.Column, q.Order.Descending
		sort.SliceStable(matched, func(i, j int) bool {
			c := compare(matched[i][col], matched[j][col])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	if q.Single {
		if len(matched) != 1 {
			return fmt.Errorf("%w: expected 1 row, got %d", ErrNotFound, len(matched))
		}
		return decodeInto(matched[0], dest)
	}
	return decodeInto(matched, dest)
}

// Insert implements Backend.
func (m *Memory) Insert(ctx context.Context, table string, row Row, dest any) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	normalized, err := toRow(row)
	if err != nil {
		return err
	}

	m.mu.Lock()
	stored := Row{}
	for k, v := range m.defaults[table] {
		stored[k] = v
	}
	for k, v := range normalized {
		stored[k] = v
	}
	if _, ok := stored["id"]; !ok {
		stored["id"] = uuid.NewString()
	}
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = m.now().UTC().Format(time.RFC3339Nano)
	}
	for _, existing := range m.tables[table] {
		if existing["id"] == stored["id"] {
			m.mu.Unlock()
			return fmt.Errorf("%w: duplicate id %v", ErrConflict, stored["id"])
		}
	}
	m.tables[table] = append(m.tables[table], stored)
	out := []Row{copyRow(stored)}
	m.mu.Unlock()

	return decodeInto(out, dest)
}

// Update implements Backend.
func (m *Memory) Update(ctx context.Context, table string, filters []Filter, patch Row, dest any) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	if len(filters) == 0 {
		return errNoFilters
	}
	normalized, err := toRow(patch)
	if err != nil {
		return err
	}

	m.mu.Lock()
	var out []Row
	for _, r := range m.tables[table] {
		if !matchAll(r, filters) {
			continue
		}
		for k, v := range normalized {
			r[k] = v
		}
		out = append(out, copyRow(r))
	}
	m.mu.Unlock()

	if out == nil {
		out = []Row{}
	}
	return decodeInto(out, dest)
}

// Delete implements Backend.
func (m *Memory) Delete(ctx context.Context, table string, filters []Filter, dest any) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	if len(filters) == 0 {
		return errNoFilters
	}

	m.mu.Lock()
	kept := m.tables[table][:0]
	out := []Row{}
	for _, r := range m.tables[table] {
		if matchAll(r, filters) {
			out = append(out, r)
			continue
		}
		kept = append(kept, r)
	}
	m.tables[table] = kept
	m.mu.Unlock()

	return decodeInto(out, dest)
}

// Call implements Backend.
func (m *Memory) Call(ctx context.Context, fn string, args Row, dest any) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	m.mu.RLock()
	f, ok := m.functions[fn]
	if !ok {
		m.mu.RUnlock()
		return fmt.Errorf("%w: function %q", ErrNotFound, fn)
	}
	snapshot := make(map[string][]Row, len(m.tables))
	for name, rows := range m.tables {
		copied := make([]Row, len(rows))
		for i, r := range rows {
			copied[i] = copyRow(r)
		}
		snapshot[name] = copied
	}
	m.mu.RUnlock()

	result, err := f(snapshot, args)
	if err != nil {
		return err
	}
	return decodeInto(result, dest)
}

// Ping implements Backend.
func (m *Memory) Ping(ctx context.Context) error {
	return m.check(ctx)
}

// Close implements Backend.
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failWith
}

// =============================================================================
// ROW HELPERS
// =============================================================================

func toRow(v any) (Row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}
	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	return row, nil
}

func normalizeValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func copyRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func project(r Row, cols []string) Row {
	if len(cols) == 0 {
		return copyRow(r)
	}
	out := make(Row, len(cols))
	for _, c := range cols {
		out[c] = r[c]
	}
	return out
}

func decodeInto(v any, dest any) error {
	if dest == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse rows: %w", err)
	}
	return nil
}

func matchAll(r Row, filters []Filter) bool {
	for _, f := range filters {
		if !match(r[f.Column], f) {
			return false
		}
	}
	return true
}

func match(have any, f Filter) bool {
	want := normalizeValue(f.Value)
	if t, ok := f.Value.(time.Time); ok {
		want = t.UTC().Format(time.RFC3339Nano)
	}
	c := compare(have, want)
	switch f.Op {
	case OpNeq:
		return c != 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	default:
		return c == 0
	}
}

// compare orders two JSON values. Nulls sort first; timestamps are
// compared as instants when both sides parse as RFC 3339.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	case string:
		if y, ok := b.(string); ok {
			if tx, err := time.Parse(time.RFC3339Nano, x); err == nil {
				if ty, err := time.Parse(time.RFC3339Nano, y); err == nil {
					return tx.Compare(ty)
				}
			}
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}

	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}
