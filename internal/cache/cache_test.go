package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// cachedAccount mirrors the shape of values the account cache stores.
type cachedAccount struct {
	ID         string `json:"id"`
	ExternalID string `json:"externalId"`
	Username   string `json:"username"`
}

func TestMemoryCache_GetSet(t *testing.T) {
	cache := NewMemoryCache[cachedAccount]()
	ctx := context.Background()

	want := cachedAccount{ID: "a1", ExternalID: "LDAP-1000", Username: "alice"}

	err := cache.Set(ctx, "account:a1", want, time.Minute)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := cache.Get(ctx, "account:a1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if value != want {
		t.Errorf("Expected %+v, got %+v", want, value)
	}
}

func TestMemoryCache_GetMiss(t *testing.T) {
	cache := NewMemoryCache[cachedAccount]()
	ctx := context.Background()

	_, err := cache.Get(ctx, "non-existent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache[cachedAccount]()
	ctx := context.Background()

	// Set with very short TTL
	err := cache.Set(ctx, "expire-key", cachedAccount{ID: "a2"}, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Should be available immediately
	value, err := cache.Get(ctx, "expire-key")
	if err != nil {
		t.Fatalf("Get failed before expiration: %v", err)
	}
	if value.ID != "a2" {
		t.Errorf("Expected ID a2, got %q", value.ID)
	}

	// Wait for expiration
	time.Sleep(100 * time.Millisecond)

	// Should be expired now
	_, err = cache.Get(ctx, "expire-key")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after expiration, got %v", err)
	}
}

func TestMemoryCache_MGetMSet(t *testing.T) {
	cache := NewMemoryCache[cachedAccount]()
	ctx := context.Background()

	values := map[string]cachedAccount{
		"account:a1": {ID: "a1", Username: "alice"},
		"account:a2": {ID: "a2", Username: "bob"},
		"account:a3": {ID: "a3", Username: "carol"},
	}

	if err := cache.MSet(ctx, values, time.Minute); err != nil {
		t.Fatalf("MSet failed: %v", err)
	}

	got, err := cache.MGet(ctx, []string{"account:a1", "account:a2", "account:a3", "missing"})
	if err != nil {
		t.Fatalf("MGet failed: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("Expected 3 values, got %d", len(got))
	}
	for key, want := range values {
		if got[key] != want {
			t.Errorf("Key %s: expected %+v, got %+v", key, want, got[key])
		}
	}
	if _, exists := got["missing"]; exists {
		t.Errorf("Expected missing key to be absent from MGet result")
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache[cachedAccount]()
	ctx := context.Background()

	if err := cache.Set(ctx, "account:a1", cachedAccount{ID: "a1"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := cache.Delete(ctx, "account:a1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := cache.Get(ctx, "account:a1")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestMemoryCache_GetWithFetch(t *testing.T) {
	cache := NewMemoryCache[cachedAccount]()
	ctx := context.Background()

	var fetchCalls atomic.Int32
	fetch := func(ctx context.Context, key string) (cachedAccount, error) {
		fetchCalls.Add(1)
		return cachedAccount{ID: "a1", Username: "alice"}, nil
	}

	// First call misses and fetches
	value, err := cache.GetWithFetch(ctx, "account:a1", time.Minute, fetch)
	if err != nil {
		t.Fatalf("GetWithFetch failed: %v", err)
	}
	if value.Username != "alice" {
		t.Errorf("Expected username alice, got %q", value.Username)
	}
	if fetchCalls.Load() != 1 {
		t.Errorf("Expected 1 fetch call, got %d", fetchCalls.Load())
	}

	// Second call hits the cache
	if _, err := cache.GetWithFetch(ctx, "account:a1", time.Minute, fetch); err != nil {
		t.Fatalf("GetWithFetch failed on second call: %v", err)
	}
	if fetchCalls.Load() != 1 {
		t.Errorf("Expected fetch to not be called again, got %d calls", fetchCalls.Load())
	}
}

func TestMemoryCache_GetWithFetch_FetchError(t *testing.T) {
	cache := NewMemoryCache[cachedAccount]()
	ctx := context.Background()

	fetchErr := errors.New("backend down")
	_, err := cache.GetWithFetch(
		ctx,
		"account:a1",
		time.Minute,
		func(ctx context.Context, key string) (cachedAccount, error) {
			return cachedAccount{}, fetchErr
		},
	)
	if !errors.Is(err, fetchErr) {
		t.Errorf("Expected fetch error to propagate, got %v", err)
	}

	// Error results are not cached
	_, err = cache.Get(ctx, "account:a1")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after failed fetch, got %v", err)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache[cachedAccount]()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = cache.Set(ctx, "shared", cachedAccount{ID: "a1"}, time.Minute)
		}()
		go func() {
			defer wg.Done()
			_, _ = cache.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	value, err := cache.Get(ctx, "shared")
	if err != nil {
		t.Fatalf("Get after concurrent access failed: %v", err)
	}
	if value.ID != "a1" {
		t.Errorf("Expected ID a1, got %q", value.ID)
	}
}
