package metrics

import (
	"context"
	"time"

	"github.com/go-ldapgate/ldapgate/internal/core"
	"github.com/go-ldapgate/ldapgate/internal/store"
)

// metricsStore defines the interface for database operations needed by CacheWrapper.
// This interface allows for easier testing without requiring a full store.Store.
type metricsStore interface {
	CountAccounts(ctx context.Context) (int64, error)
}

// CacheWrapper provides a read-through cache for metrics data.
// It queries the database on cache miss and updates the cache for subsequent requests.
// Uses the cache's GetWithFetch method for optimal cache-aside pattern support.
type CacheWrapper struct {
	store metricsStore
	cache core.Cache[int64]
}

// NewCacheWrapper creates a new cache wrapper for metrics.
func NewCacheWrapper(store *store.Store, cache core.Cache[int64]) *CacheWrapper {
	return &CacheWrapper{
		store: store,
		cache: cache,
	}
}

// GetAccountsCount retrieves the number of local accounts.
// Uses cache-aside pattern via GetWithFetch for optimal performance.
func (m *CacheWrapper) GetAccountsCount(ctx context.Context, ttl time.Duration) (int64, error) {
	return m.cache.GetWithFetch(
		ctx,
		"accounts:total",
		ttl,
		func(ctx context.Context, key string) (int64, error) {
			return m.store.CountAccounts(ctx)
		},
	)
}

// UpdateAccountsGauge refreshes the accounts gauge from the cached count.
// Intended to be called periodically by a background job.
func (m *CacheWrapper) UpdateAccountsGauge(
	ctx context.Context,
	recorder Recorder,
	ttl time.Duration,
) error {
	count, err := m.GetAccountsCount(ctx, ttl)
	if err != nil {
		recorder.RecordDatabaseQueryError("count_accounts")
		return err
	}
	recorder.SetAccountsCount(count)
	return nil
}
