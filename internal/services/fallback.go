package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"
)

// UpstreamError carries the HTTP status of a failed provider call so the
// fallback chain can tell transient failures from permanent ones.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", e.Provider, e.Status)
}

// errNotRetryable wraps parse/shape failures that must fall through to the
// next provider without burning retry attempts.
type errNotRetryable struct{ err error }

func (e *errNotRetryable) Error() string { return e.err.Error() }
func (e *errNotRetryable) Unwrap() error { return e.err }

func permanent(err error) error {
	if err == nil {
		return nil
	}
	return &errNotRetryable{err: err}
}

const (
	maxAttempts    = 3
	initialBackoff = time.Second
	maxBackoff     = 4 * time.Second
)

// Provider is one entry in a fallback chain: a named call producing a
// single capability result.
type Provider[T any] struct {
	Name string
	Call func(ctx context.Context) (*T, error)
}

// ResolveFirst walks an ordered provider list until one returns a non-nil
// result accepted by valid. Each provider gets up to maxAttempts tries with
// exponential backoff, but only for transient failures; permanent failures
// skip straight to the next provider. Exhausting the chain returns nil —
// never an error, since a missing capability degrades the pipeline rather
// than failing it.
func ResolveFirst[T any](ctx context.Context, capability string, providers []Provider[T], valid func(*T) bool) (*T, string) {
	for _, p := range providers {
		res := callWithRetry(ctx, capability, p)
		if res == nil {
			continue
		}
		if valid != nil && !valid(res) {
			log.Printf("[WARN] %s: %s returned structurally invalid result, trying next", capability, p.Name)
			continue
		}
		return res, p.Name
	}
	return nil, ""
}

func callWithRetry[T any](ctx context.Context, capability string, p Provider[T]) *T {
	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := p.Call(ctx)
		if err == nil {
			return res
		}
		if !isTransient(err) {
			log.Printf("[WARN] %s: %s failed permanently: %v", capability, p.Name, err)
			return nil
		}
		if attempt == maxAttempts {
			log.Printf("[WARN] %s: %s exhausted %d attempts: %v", capability, p.Name, maxAttempts, err)
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return nil
}

// isTransient reports whether a provider failure is worth retrying:
// connection-level errors and 5xx responses are; 4xx responses and
// parse/shape failures are not.
func isTransient(err error) bool {
	var nr *errNotRetryable
	if errors.As(err, &nr) {
		return false
	}
	var up *UpstreamError
	if errors.As(err, &up) {
		return up.Status >= http.StatusInternalServerError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// url.Error and friends wrap the transport failure; treat unknown
	// errors as transient so flaky transports get their retries.
	return true
}
