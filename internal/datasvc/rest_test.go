// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package datasvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type yard struct {
	ID         string `json:"id"`
	YardName   string `json:"yard_name"`
	YardNumber int    `json:"yard_number"`
	Status     string `json:"status"`
}

func newTestREST(t *testing.T, h http.HandlerFunc, opts ...RESTOption) *REST {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewREST(srv.URL, "anon-key", append([]RESTOption{WithHTTPClient(srv.Client())}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewREST_RequiresURL(t *testing.T) {
	_, err := NewREST("  ", "key")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestREST_SelectEncodesQuery(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/bulletins", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "*", q.Get("select"))
		assert.Equal(t, "eq.true", q.Get("is_active"))
		assert.Equal(t, "created_at.desc", q.Get("order"))
		assert.Equal(t, "3", q.Get("limit"))

		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		_, _ = io.WriteString(w, `[{"id":"b1","title":"Shutdown"}]`)
	})

	var rows []map[string]any
	err := c.Select(context.Background(), "bulletins", Query{
		Filters: []Filter{Eq("is_active", true)},
		Order:   Desc("created_at"),
		Limit:   3,
	}, &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Shutdown", rows[0]["title"])
}

func TestREST_SelectSingle(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, mediaSingle, r.Header.Get("Accept"))
		_, _ = io.WriteString(w, `{"id":"y1","yard_name":"Yard 1","yard_number":1,"status":"Available"}`)
	})

	var y yard
	require.NoError(t, c.Select(context.Background(), "coal_yards", Query{Single: true}, &y))
	assert.Equal(t, "Yard 1", y.YardName)
}

func TestREST_SingleWithoutRowsIsNotFound(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = io.WriteString(w, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`)
	})

	var y yard
	err := c.Select(context.Background(), "salt_tracker", Query{Single: true}, &y)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestREST_UpdateSendsPatch(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.y1", r.URL.Query().Get("id"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Depleted", body["status"])

		_, _ = io.WriteString(w, `[{"id":"y1","status":"Depleted"}]`)
	})

	var rows []yard
	err := c.Update(context.Background(), "coal_yards", []Filter{Eq("id", "y1")}, Row{"status": "Depleted"}, &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Depleted", rows[0].Status)
}

func TestREST_RefusesUnfilteredMutations(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	ctx := context.Background()
	assert.ErrorIs(t, c.Update(ctx, "users", nil, Row{"role": "Guest"}, nil), errNoFilters)
	assert.ErrorIs(t, c.Delete(ctx, "users", nil, nil), errNoFilters)
}

func TestREST_InsertAndDelete(t *testing.T) {
	var methods []string
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		_, _ = io.WriteString(w, `[]`)
	})
	ctx := context.Background()
	require.NoError(t, c.Insert(ctx, "bulletins", Row{"title": "t", "message": "m"}, nil))
	require.NoError(t, c.Delete(ctx, "users", []Filter{Eq("id", "u1")}, nil))
	assert.Equal(t, []string{http.MethodPost, http.MethodDelete}, methods)
}

func TestREST_CallUsesRPCPath(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/rpc/get_latest_power_by_section", r.URL.Path)
		_, _ = io.WriteString(w, `[{"section":"Utilities","consumption_kw":455.4}]`)
	})

	var rows []map[string]any
	require.NoError(t, c.Call(context.Background(), "get_latest_power_by_section", nil, &rows))
	assert.Equal(t, 455.4, rows[0]["consumption_kw"])
}

func TestREST_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})

	var rows []yard
	require.NoError(t, c.Select(context.Background(), "coal_yards", Query{}, &rows))
	assert.Equal(t, int32(2), calls.Load())
}

func TestREST_InsertNotRetriedAfterServerError(t *testing.T) {
	var posts atomic.Int32
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		if posts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})

	err := c.Insert(context.Background(), "bulletins", Row{"title": "t", "message": "m"}, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, int32(1), posts.Load())

	posts.Store(0)
	err = c.Call(context.Background(), "get_latest_power_by_section", nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), posts.Load())
}

func TestREST_InsertRetriedWhenRateLimited(t *testing.T) {
	var posts atomic.Int32
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		if posts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})

	require.NoError(t, c.Insert(context.Background(), "bulletins", Row{"title": "t", "message": "m"}, nil))
	assert.Equal(t, int32(2), posts.Load())
}

func TestREST_UpdateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})

	require.NoError(t, c.Update(context.Background(), "coal_yards", []Filter{Eq("id", "y1")}, Row{"status": "Depleted"}, nil))
	assert.Equal(t, int32(2), calls.Load())
}

func TestNotProcessed(t *testing.T) {
	dial := &transportError{err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}
	read := &transportError{err: &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset")}}
	assert.True(t, notProcessed(dial))
	assert.False(t, notProcessed(read))
	assert.True(t, notProcessed(fmt.Errorf("wrapped: %w", ErrRateLimited)))
	assert.False(t, notProcessed(&APIError{Status: http.StatusBadGateway}))
}

func TestREST_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithMaxRetries(2))

	err := c.Select(context.Background(), "chemicals", Query{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, int32(2), calls.Load())
}

func TestREST_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Invalid API key"}`)
	})

	err := c.Select(context.Background(), "users", Query{}, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
}

func TestREST_ContextCancelledDuringBackoff(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := c.Select(ctx, "users", Query{}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHandleErrorResponse(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{401, `{"message":"JWT expired"}`, ErrUnauthorized},
		{403, ``, ErrUnauthorized},
		{404, `{"code":"PGRST202","message":"Could not find the function"}`, ErrNotFound},
		{406, `{"code":"PGRST116","message":"no rows"}`, ErrNotFound},
		{409, `{"code":"23505","message":"duplicate key"}`, ErrConflict},
		{429, ``, ErrRateLimited},
	}
	for _, tt := range tests {
		err := handleErrorResponse(tt.status, []byte(tt.body))
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}

	err := handleErrorResponse(400, []byte(`{"code":"22P02","message":"invalid input syntax","hint":"check the uuid"}`))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "22P02", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "hint: check the uuid")
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, calculateBackoff(1))
	assert.Equal(t, 2*time.Second, calculateBackoff(2))
	assert.Equal(t, retryMaxDelay, calculateBackoff(10))
}

func TestReadResponse_Limit(t *testing.T) {
	big := make([]byte, MaxResponseSize+10)
	_, err := readResponse(bytesReader(big))
	assert.Error(t, err)
}

func TestQueryKey(t *testing.T) {
	q := Query{Filters: []Filter{Eq("is_active", true)}, Order: Desc("created_at"), Limit: 3}
	assert.Equal(t, "bulletins|is_active=eq.true|order=created_at.desc|limit=3", q.Key("bulletins"))
	assert.Equal(t, "users", Query{}.Key("users"))
}
