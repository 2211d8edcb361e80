// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StatusOverloaded is the non-standard status the Anthropic API returns when
// it is temporarily overloaded.
const StatusOverloaded = 529

// OverloadBaseDelay is the wait unit between overloaded attempts. Tests
// override this to avoid real sleeps.
var OverloadBaseDelay = 20 * time.Second

const defaultOverloadAttempts = 3

// RetryPolicy decides which failed responses DoWithRetry retries and how
// long it waits in between.
type RetryPolicy struct {
	// Attempts is the total number of requests, including the first.
	Attempts int

	// Retryable reports whether a non-2xx response should be retried. Body
	// holds the response body, already read.
	Retryable func(status int, body []byte) bool

	// Backoff returns the wait after the given failed attempt (1-based).
	Backoff func(attempt int) time.Duration

	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, status int, wait time.Duration)
}

// OverloadPolicy retries HTTP 529 and any error body mentioning
// "overloaded", waiting OverloadBaseDelay times the attempt number: 20 s,
// then 40 s. Other failures are returned at once. When attempts is 0 the
// default (3) is used.
func OverloadPolicy(attempts int) RetryPolicy {
	if attempts <= 0 {
		attempts = defaultOverloadAttempts
	}
	return RetryPolicy{
		Attempts:  attempts,
		Retryable: IsOverloaded,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * OverloadBaseDelay
		},
	}
}

// IsOverloaded reports whether a failed response signals an overloaded
// upstream.
func IsOverloaded(status int, body []byte) bool {
	return status == StatusOverloaded || strings.Contains(strings.ToLower(string(body)), "overloaded")
}

// DoWithRetry executes an HTTP request and retries the responses the policy
// marks retryable. The request body is replayed through req.GetBody, so
// requests built by http.NewRequest with an in-memory body are safe to retry.
//
// No wait follows the final attempt. After exhausting attempts the last
// response is returned with its body intact so the caller can inspect it.
// Transport errors are not retried. If the context is cancelled during a
// wait the function returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy RetryPolicy) (*http.Response, error) {
	attempts := policy.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		r := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("replaying request body: %w", err)
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 || policy.Retryable == nil {
			return resp, nil
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading error response: %w", err)
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))

		if !policy.Retryable(resp.StatusCode, body) || attempt >= attempts {
			return resp, nil
		}

		var wait time.Duration
		if policy.Backoff != nil {
			wait = policy.Backoff(attempt)
		}
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, resp.StatusCode, wait)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}
