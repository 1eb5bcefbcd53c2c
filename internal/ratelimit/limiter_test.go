package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)}
}

func TestLimiterFixedWindow(t *testing.T) {
	clock := newClock()
	l := New(NewMemoryStore(WithClock(clock.Now)), "manual", 5, DefaultWindow)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		d, err := l.Allow(ctx, "203.0.113.7")
		if err != nil {
			t.Fatalf("Allow() call %d error = %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("call %d limited, want allowed", i)
		}
		if d.Remaining != 5-i {
			t.Fatalf("call %d remaining = %d, want %d", i, d.Remaining, 5-i)
		}
	}

	clock.Advance(5 * time.Minute)
	d, err := l.Allow(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if d.Allowed {
		t.Fatal("6th call within the window should be limited")
	}
	if d.RetryAfter != 10*time.Minute {
		t.Fatalf("retry after = %v, want 10m", d.RetryAfter)
	}

	clock.Advance(10*time.Minute + time.Second)
	d, err = l.Allow(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !d.Allowed {
		t.Fatal("call after the window elapsed should be allowed")
	}
	if d.Remaining != 4 {
		t.Fatalf("remaining after reset = %d, want 4", d.Remaining)
	}
}

func TestLimitedCallsDoNotExtendCount(t *testing.T) {
	clock := newClock()
	store := NewMemoryStore(WithClock(clock.Now))
	l := New(store, "map", 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		l.IsLimited(ctx, "a")
	}

	w, err := store.Take(ctx, l.key("a"), 2, time.Minute)
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	if w.Count != 2 || w.Allowed {
		t.Fatalf("window = %+v, want count 2 and refused", w)
	}
}

func TestLimiterIdentitiesAreIndependent(t *testing.T) {
	clock := newClock()
	l := New(NewMemoryStore(WithClock(clock.Now)), "manual", 1, time.Minute)
	ctx := context.Background()

	if l.IsLimited(ctx, "a") {
		t.Fatal("first call for a limited")
	}
	if !l.IsLimited(ctx, "a") {
		t.Fatal("second call for a should be limited")
	}
	if l.IsLimited(ctx, "b") {
		t.Fatal("b should have its own bucket")
	}
	if l.IsLimited(ctx, "") {
		t.Fatal("first call for the unknown bucket limited")
	}
	if !l.IsLimited(ctx, UnknownIdentity) {
		t.Fatal("empty identity should share the unknown bucket")
	}
}

func TestLimitersSharingStoreAreNamespaced(t *testing.T) {
	store := NewMemoryStore()
	manual := New(store, "manual", 1, time.Minute)
	voice := New(store, "voice", 1, time.Minute)
	ctx := context.Background()

	if manual.IsLimited(ctx, "x") || voice.IsLimited(ctx, "x") {
		t.Fatal("limiters sharing a store should not share counters")
	}
}

func TestMemoryStoreConcurrentTake(t *testing.T) {
	l := New(NewMemoryStore(), "voice", 10, time.Minute)
	ctx := context.Background()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !l.IsLimited(ctx, "burst") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != 10 {
		t.Fatalf("allowed = %d, want exactly 10", got)
	}
}

func TestMemoryStorePrunesExpiredEntries(t *testing.T) {
	clock := newClock()
	store := NewMemoryStore(WithClock(clock.Now))
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if _, err := store.Take(ctx, key, 5, 30*time.Second); err != nil {
			t.Fatalf("Take() error = %v", err)
		}
	}
	if store.Len() != 3 {
		t.Fatalf("len = %d, want 3", store.Len())
	}

	clock.Advance(2 * time.Minute)
	if _, err := store.Take(ctx, "d", 5, 30*time.Second); err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("len after prune = %d, want 1", store.Len())
	}
}

type failingStore struct{}

func (failingStore) Take(context.Context, string, int, time.Duration) (Window, error) {
	return Window{}, errors.New("store down")
}

func TestLimiterStoreErrorFailsOpen(t *testing.T) {
	l := New(failingStore{}, "manual", 5, time.Minute)

	d, err := l.Allow(context.Background(), "a")
	if err == nil {
		t.Fatal("expected the store error to be returned")
	}
	if !d.Allowed {
		t.Fatal("a store error should not reject the caller")
	}
	if l.IsLimited(context.Background(), "a") {
		t.Fatal("IsLimited should report false when the store fails")
	}
}
