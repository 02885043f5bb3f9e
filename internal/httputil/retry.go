// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by stages that call
// external services.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient failures. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 2

// IsTransientStatus reports whether an HTTP status is worth retrying:
// 429 (rate limited) and the 5xx server-error class. Client errors such as
// 400 or 401 are permanent and must surface immediately.
func IsTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// DoWithRetry executes an HTTP request and retries transient failures with
// exponential backoff: transport errors (including timeouts) and responses
// whose status satisfies IsTransientStatus. The delay starts at
// RetryBaseDelay and doubles each attempt.
//
// When maxRetries is 0 the default (2, i.e. 3 total attempts) is used.
// Before each retry the previous response body is drained and closed. If
// the context is cancelled, the function returns ctx.Err() without further
// attempts. After exhausting retries the last response or transport error
// is returned so the caller can classify it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err == nil && !IsTransientStatus(resp.StatusCode) {
			return resp, nil
		}

		// Context cancellation is not transient.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt >= maxRetries {
			// Exhausted: hand back whatever the last attempt produced.
			return resp, err
		}

		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
