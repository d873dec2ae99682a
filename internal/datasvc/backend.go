// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package datasvc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured indicates the backend URL or DSN is missing.
	ErrNotConfigured = errors.New("data service not configured")

	// ErrNotFound indicates the table, function or single row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a uniqueness or constraint violation.
	ErrConflict = errors.New("conflict")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")
)

// APIError is an error reported by the data service.
type APIError struct {
	Status  int
	Code    string
	Message string
	Hint    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += " (hint: " + e.Hint + ")"
	}
	if e.Code != "" {
		return fmt.Sprintf("data service error [%s] (HTTP %d): %s", e.Code, e.Status, msg)
	}
	return fmt.Sprintf("data service error (HTTP %d): %s", e.Status, msg)
}

// =============================================================================
// QUERIES
// =============================================================================

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

// Filter restricts rows to those where Column Op Value holds.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Eq is shorthand for an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// Order sorts rows by a column.
type Order struct {
	Column     string
	Descending bool
}

// Asc orders ascending by column.
func Asc(column string) *Order { return &Order{Column: column} }

// Desc orders descending by column.
func Desc(column string) *Order { return &Order{Column: column, Descending: true} }

// Query describes a row listing.
type Query struct {
	// Columns to return; empty means all.
	Columns []string
	Filters []Filter
	Order   *Order
	// Limit caps the row count; 0 means no limit.
	Limit int
	// Single expects exactly one row and decodes it into an object
	// instead of a slice. Zero or several rows yield ErrNotFound.
	Single bool
}

// Key returns a stable cache key for the query on table.
func (q Query) Key(table string) string {
	var b strings.Builder
	b.WriteString(table)
	if len(q.Columns) > 0 {
		b.WriteString("|select=")
		b.WriteString(strings.Join(q.Columns, ","))
	}
	for _, f := range q.Filters {
		b.WriteString("|")
		b.WriteString(f.Column)
		b.WriteString("=")
		b.WriteString(string(f.Op))
		b.WriteString(".")
		b.WriteString(FormatValue(f.Value))
	}
	if q.Order != nil {
		b.WriteString("|order=")
		b.WriteString(q.Order.Column)
		if q.Order.Descending {
			b.WriteString(".desc")
		}
	}
	if q.Limit > 0 {
		b.WriteString("|limit=")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	if q.Single {
		b.WriteString("|single")
	}
	return b.String()
}

// Row is a column-to-value map used for inserts and patches.
type Row map[string]any

// FormatValue renders a filter value the way the REST wire format expects.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// =============================================================================
// BACKEND
// =============================================================================

// Backend is a query/mutation client for the plant tables. dest arguments
// are pointers that rows are JSON-decoded into: a slice for listings and
// mutations, an object for Single queries. A nil dest discards the rows.
type Backend interface {
	// Select lists rows of table.
	Select(ctx context.Context, table string, q Query, dest any) error
	// Insert adds row to table and returns the stored rows.
	Insert(ctx context.Context, table string, row Row, dest any) error
	// Update applies patch to the rows matching filters.
	Update(ctx context.Context, table string, filters []Filter, patch Row, dest any) error
	// Delete removes the rows matching filters.
	Delete(ctx context.Context, table string, filters []Filter, dest any) error
	// Call invokes a stored function.
	Call(ctx context.Context, fn string, args Row, dest any) error
	// Ping checks connectivity.
	Ping(ctx context.Context) error
	// Close releases resources.
	Close() error
}

// errNoFilters guards against unfiltered updates and deletes.
var errNoFilters = errors.New("refusing to modify rows without a filter")
