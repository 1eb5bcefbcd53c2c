// Package ratelimit gates submissions with a fixed-window counter per client
// identity. Counter state lives behind a Store so a single instance can keep
// it in memory while a fleet shares it through Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// DefaultWindow is the window length every submission endpoint uses.
const DefaultWindow = 15 * time.Minute

// Window is the state of one identity's counter after a call to Take.
type Window struct {
	Allowed bool
	Count   int
	// TTL is the time left until the counter resets.
	TTL time.Duration
}

// Store records hits atomically. Take must start a new window with a count of
// one when none exists or the previous one has expired, refuse without
// incrementing once count reaches max, and increment otherwise.
type Store interface {
	Take(ctx context.Context, key string, max int, window time.Duration) (Window, error)
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter struct {
	store  Store
	name   string
	max    int
	window time.Duration
}

// New returns a limiter allowing max calls per window for each identity.
// The name namespaces its keys so limiters for different endpoints sharing
// a store never see each other's counters.
func New(store Store, name string, max int, window time.Duration) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		store:  store,
		name:   name,
		max:    max,
		window: window,
	}
}

func (l *Limiter) Name() string {
	return l.name
}

func (l *Limiter) Max() int {
	return l.max
}

func (l *Limiter) Window() time.Duration {
	return l.window
}

func (l *Limiter) Allow(ctx context.Context, identity string) (Decision, error) {
	if identity == "" {
		identity = UnknownIdentity
	}

	w, err := l.store.Take(ctx, l.key(identity), l.max, l.window)
	if err != nil {
		return Decision{Allowed: true, Limit: l.max}, fmt.Errorf("rate limit %s: %w", l.name, err)
	}

	d := Decision{
		Allowed:   w.Allowed,
		Limit:     l.max,
		Remaining: max(l.max-w.Count, 0),
	}
	if !w.Allowed {
		d.RetryAfter = w.TTL
	}

	return d, nil
}

// IsLimited reports whether identity has used up its window. A store error
// counts as not limited.
func (l *Limiter) IsLimited(ctx context.Context, identity string) bool {
	d, err := l.Allow(ctx, identity)
	if err != nil {
		return false
	}
	return !d.Allowed
}

func (l *Limiter) key(identity string) string {
	return "ratelimit:" + l.name + ":" + identity
}
