// Package ratelimit throttles failed login attempts per (client, username)
// key over a sliding window. The limiter is a coarse brute-force brake, not
// a security boundary: the default in-memory store loses its state on
// restart, which is acceptable.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Defaults matching the original behavior: five failures per rolling hour.
const (
	DefaultMaxAttempts   = 5
	DefaultWindow        = time.Hour
	DefaultSweepInterval = 5 * time.Minute
)

// Store persists failure counters. Implementations must be safe for
// concurrent use from multiple in-flight requests.
type Store interface {
	// Increment adds one failure for key within window and returns the
	// new count.
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	// Count returns the current failure count for key, zero when absent
	// or when the last failure is older than window.
	Count(ctx context.Context, key string, window time.Duration) (int, error)
	// Clear removes the counter for key.
	Clear(ctx context.Context, key string) error
	// Sweep removes counters whose last failure is older than window and
	// returns how many were removed.
	Sweep(ctx context.Context, window time.Duration) (int, error)
}

// Key builds the limiter key for a client address and attempted username.
func Key(clientIP, username string) string {
	return strings.TrimSpace(clientIP) + "|" + strings.TrimSpace(username)
}

// LoginLimiter tracks consecutive login failures against a Store.
type LoginLimiter struct {
	store       Store
	maxAttempts int
	window      time.Duration
	sweepEvery  time.Duration
}

// Option configures a LoginLimiter.
type Option func(*LoginLimiter)

// WithMaxAttempts overrides the failure threshold.
func WithMaxAttempts(n int) Option {
	return func(l *LoginLimiter) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

// WithWindow overrides the sliding window.
func WithWindow(window time.Duration) Option {
	return func(l *LoginLimiter) {
		if window > 0 {
			l.window = window
		}
	}
}

// WithSweepInterval overrides the background sweep cadence.
func WithSweepInterval(interval time.Duration) Option {
	return func(l *LoginLimiter) {
		if interval > 0 {
			l.sweepEvery = interval
		}
	}
}

// NewLoginLimiter constructs a limiter over store. A nil store falls back to
// the in-memory implementation.
func NewLoginLimiter(store Store, opts ...Option) *LoginLimiter {
	if store == nil {
		store = NewMemoryStore()
	}
	l := &LoginLimiter{
		store:       store,
		maxAttempts: DefaultMaxAttempts,
		window:      DefaultWindow,
		sweepEvery:  DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordFailure counts one failed attempt and returns the new count.
func (l *LoginLimiter) RecordFailure(ctx context.Context, key string) (int, error) {
	count, err := l.store.Increment(ctx, key, l.window)
	if err != nil {
		return 0, fmt.Errorf("ratelimit: record failure: %w", err)
	}
	return count, nil
}

// IsBlocked reports whether key has reached the failure threshold within the
// window. Store errors fail open: a broken limiter must not lock every
// account out.
func (l *LoginLimiter) IsBlocked(ctx context.Context, key string) bool {
	count, err := l.store.Count(ctx, key, l.window)
	if err != nil {
		return false
	}
	return count >= l.maxAttempts
}

// Clear resets the counter for key, called on successful authentication.
func (l *LoginLimiter) Clear(ctx context.Context, key string) {
	_ = l.store.Clear(ctx, key)
}

// Sweep removes stale counters once. Exposed for tests and manual triggers.
func (l *LoginLimiter) Sweep(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx, l.window)
}

// StartSweep runs Sweep on the configured interval until ctx is canceled.
func (l *LoginLimiter) StartSweep(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(l.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = l.store.Sweep(ctx, l.window)
			}
		}
	}()
}
