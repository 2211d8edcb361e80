// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	OverloadBaseDelay = 1 * time.Millisecond
}

func newPost(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(`{"q":1}`)))
	require.NoError(t, err)
	return req
}

func TestDoWithRetry_ImmediateSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	resp, err := DoWithRetry(context.Background(), ts.Client(), newPost(t, ts.URL), OverloadPolicy(0))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_OverloadedThen200(t *testing.T) {
	var calls int32
	var mu sync.Mutex
	var bodies []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(StatusOverloaded)
			return
		}
		if n == 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	var waits []time.Duration
	policy := OverloadPolicy(3)
	policy.OnRetry = func(_ int, _ int, wait time.Duration) { waits = append(waits, wait) }

	resp, err := DoWithRetry(context.Background(), ts.Client(), newPost(t, ts.URL), policy)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{OverloadBaseDelay, 2 * OverloadBaseDelay}, waits)
	// The request body is replayed on every attempt.
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{`{"q":1}`, `{"q":1}`, `{"q":1}`}, bodies)
}

func TestDoWithRetry_ExhaustsAttempts(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(StatusOverloaded)
		_, _ = w.Write([]byte("busy"))
	}))
	defer ts.Close()

	var retries int
	policy := OverloadPolicy(3)
	policy.OnRetry = func(int, int, time.Duration) { retries++ }

	resp, err := DoWithRetry(context.Background(), ts.Client(), newPost(t, ts.URL), policy)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, StatusOverloaded, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	// No wait after the final attempt.
	assert.Equal(t, 2, retries)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "busy", string(body))
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(StatusOverloaded)
	}))
	defer ts.Close()

	// Use a longer base delay so the context cancels during the wait.
	old := OverloadBaseDelay
	OverloadBaseDelay = 500 * time.Millisecond
	defer func() { OverloadBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := DoWithRetry(ctx, ts.Client(), newPost(t, ts.URL), OverloadPolicy(3))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoWithRetry_NonOverloadErrorPassesThrough(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid x-api-key"))
	}))
	defer ts.Close()

	resp, err := DoWithRetry(context.Background(), ts.Client(), newPost(t, ts.URL), OverloadPolicy(3))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_ZeroPolicySingleAttempt(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(StatusOverloaded)
	}))
	defer ts.Close()

	resp, err := DoWithRetry(context.Background(), ts.Client(), newPost(t, ts.URL), RetryPolicy{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIsOverloaded(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{name: "529", status: 529, want: true},
		{name: "body mentions overloaded", status: 500, body: `{"error":{"type":"overloaded_error"}}`, want: true},
		{name: "case insensitive", status: 503, body: "Service OVERLOADED", want: true},
		{name: "rate limited", status: 429, body: "rate_limit_error", want: false},
		{name: "bad request", status: 400, body: "invalid", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOverloaded(tt.status, []byte(tt.body)))
		})
	}
}
