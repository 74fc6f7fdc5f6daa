package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	boom := errors.New("boom")

	if _, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) {
		return 0, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("failed load must not be stored")
	}
}

func TestStore_ExpiresWithInjectedClock(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewStore[string](30*time.Minute, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	store.Set(ctx, "lautaro", "inter")

	now = now.Add(29*time.Minute + 59*time.Second)
	if v, ok := store.Get(ctx, "lautaro"); !ok || v != "inter" {
		t.Fatalf("expected hit before ttl, got %q %v", v, ok)
	}

	now = now.Add(time.Second)
	if _, ok := store.Get(ctx, "lautaro"); ok {
		t.Fatalf("expected miss at ttl boundary")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry should be gone, len=%d", store.Len())
	}
}

func TestStore_ClearAndLen(t *testing.T) {
	t.Parallel()

	store := NewStore[int](0)
	ctx := context.Background()
	store.Set(ctx, "a", 1)
	store.Set(ctx, "b", 2)
	store.Set(ctx, "", 3)

	if got := store.Len(); got != 2 {
		t.Fatalf("len=%d want 2", got)
	}
	if got := store.Clear(ctx); got != 2 {
		t.Fatalf("cleared=%d want 2", got)
	}
	if _, ok := store.Get(ctx, "a"); ok {
		t.Fatalf("expected miss after clear")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
