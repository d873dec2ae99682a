// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package datasvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres reads and writes the plant tables over a direct database
// connection. Rows are aggregated server side with json_agg so they decode
// into the same structs the REST backend fills.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres connects a pool to dsn.
func NewPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrNotConfigured
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{
		pool:   pool,
		logger: logger.With("component", "datasvc", "backend", "postgres"),
	}, nil
}

// Select implements Backend.
func (p *Postgres) Select(ctx context.Context, table string, q Query, dest any) error {
	sql, args := buildSelect(table, q)
	return p.queryJSON(ctx, sql, args, q.Single, dest)
}

// Insert implements Backend.
func (p *Postgres) Insert(ctx context.Context, table string, row Row, dest any) error {
	sql, args := buildInsert(table, row)
	return p.queryJSON(ctx, sql, args, false, dest)
}

// Update implements Backend.
func (p *Postgres) Update(ctx context.Context, table string, filters []Filter, patch Row, dest any) error {
	if len(filters) == 0 {
		return errNoFilters
	}
	sql, args := buildUpdate(table, filters, patch)
	return p.queryJSON(ctx, sql, args, false, dest)
}

// Delete implements Backend.
func (p *Postgres) Delete(ctx context.Context, table string, filters []Filter, dest any) error {
	if len(filters) == 0 {
		return errNoFilters
	}
	sql, args := buildDelete(table, filters)
	return p.queryJSON(ctx, sql, args, false, dest)
}

// Call implements Backend.
func (p *Postgres) Call(ctx context.Context, fn string, args Row, dest any) error {
	sql, values := buildCall(fn, args)
	return p.queryJSON(ctx, sql, values, false, dest)
}

// Ping implements Backend.
func (p *Postgres) Ping(ctx context.Context) error {
	return mapPgError(p.pool.Ping(ctx))
}

// Close implements Backend.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) queryJSON(ctx context.Context, sql string, args []any, single bool, dest any) error {
	var raw []byte
	if err := p.pool.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		p.logger.Debug("query failed", "sql", sql, "error", err)
		return mapPgError(err)
	}
	return decodeRows(raw, single, dest)
}

// decodeRows decodes a JSON array of rows into dest. With single set the
// array must hold exactly one row, which is decoded as an object.
func decodeRows(raw []byte, single bool, dest any) error {
	if dest == nil {
		return nil
	}
	if !single {
		if err := json.Unmarshal(raw, dest); err != nil {
			return fmt.Errorf("failed to parse rows: %w", err)
		}
		return nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fmt.Errorf("failed to parse rows: %w", err)
	}
	if len(rows) != 1 {
		return fmt.Errorf("%w: expected 1 row, got %d", ErrNotFound, len(rows))
	}
	if err := json.Unmarshal(rows[0], dest); err != nil {
		return fmt.Errorf("failed to parse row: %w", err)
	}
	return nil
}

// mapPgError translates Postgres error codes to the package sentinels.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505", "23503":
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
	case "42P01", "42883":
		return fmt.Errorf("%w: %s", ErrNotFound, pgErr.Message)
	case "28P01", "28000", "42501":
		return fmt.Errorf("%w: %s", ErrUnauthorized, pgErr.Message)
	default:
		return &APIError{Code: pgErr.Code, Message: pgErr.Message, Hint: pgErr.Hint}
	}
}

// =============================================================================
// SQL BUILDERS
// =============================================================================

var sqlOps = map[Op]string{
	OpEq:  "=",
	OpNeq: "<>",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// aggregate wraps a row-returning statement so it yields one JSON array.
func aggregate(inner string) string {
	return "SELECT coalesce(json_agg(t), '[]'::json) FROM (" + inner + ") t"
}

func aggregateCTE(stmt string) string {
	return "WITH t AS (" + stmt + ") SELECT coalesce(json_agg(t), '[]'::json) FROM t"
}

func whereClause(filters []Filter, args []any) (string, []any) {
	if len(filters) == 0 {
		return "", args
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		op := f.Op
		if op == "" {
			op = OpEq
		}
		if f.Value == nil && op == OpEq {
			parts = append(parts, ident(f.Column)+" IS NULL")
			continue
		}
		args = append(args, f.Value)
		parts = append(parts, ident(f.Column)+" "+sqlOps[op]+" $"+strconv.Itoa(len(args)))
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func sortedKeys(row Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func buildSelect(table string, q Query) (string, []any) {
	cols := "*"
	if len(q.Columns) > 0 {
		quoted := make([]string, len(q.Columns))
		for i, c := range q.Columns {
			quoted[i] = ident(c)
		}
		cols = strings.Join(quoted, ", ")
	}

	var b strings.Builder
	b.WriteString("SELECT " + cols + " FROM " + ident(table))
	where, args := whereClause(q.Filters, nil)
	b.WriteString(where)
	if q.Order != nil {
		b.WriteString(" ORDER BY " + ident(q.Order.Column))
		if q.Order.Descending {
			b.WriteString(" DESC")
		}
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT " + strconv.Itoa(q.Limit))
	}
	return aggregate(b.String()), args
}

func buildInsert(table string, row Row) (string, []any) {
	keys := sortedKeys(row)
	if len(keys) == 0 {
		return aggregateCTE("INSERT INTO " + ident(table) + " DEFAULT VALUES RETURNING *"), nil
	}
	cols := make([]string, len(keys))
	holders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		cols[i] = ident(k)
		holders[i] = "$" + strconv.Itoa(i+1)
		args[i] = row[k]
	}
	stmt := "INSERT INTO " + ident(table) + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.Join(holders, ", ") + ") RETURNING *"
	return aggregateCTE(stmt), args
}

func buildUpdate(table string, filters []Filter, patch Row) (string, []any) {
	keys := sortedKeys(patch)
	sets := make([]string, len(keys))
	args := make([]any, 0, len(keys)+len(filters))
	for i, k := range keys {
		args = append(args, patch[k])
		sets[i] = ident(k) + " = $" + strconv.Itoa(len(args))
	}
	where, args := whereClause(filters, args)
	stmt := "UPDATE " + ident(table) + " SET " + strings.Join(sets, ", ") + where + " RETURNING *"
	return aggregateCTE(stmt), args
}

func buildDelete(table string, filters []Filter) (string, []any) {
	where, args := whereClause(filters, nil)
	return aggregateCTE("DELETE FROM " + ident(table) + where + " RETURNING *"), args
}

func buildCall(fn string, args Row) (string, []any) {
	keys := sortedKeys(args)
	named := make([]string, len(keys))
	values := make([]any, len(keys))
	for i, k := range keys {
		named[i] = ident(k) + " => $" + strconv.Itoa(i+1)
		values[i] = args[k]
	}
	return aggregate("SELECT * FROM " + ident(fn) + "(" + strings.Join(named, ", ") + ")"), values
}
