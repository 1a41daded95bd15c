package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-ldapgate/ldapgate/internal/cache"
	"github.com/go-ldapgate/ldapgate/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCountStore counts how often the database is actually queried.
type fakeCountStore struct {
	count int64
	err   error
	calls int
}

func (f *fakeCountStore) CountAccounts(_ context.Context) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

func newTestWrapper(s metricsStore, c core.Cache[int64]) *CacheWrapper {
	return &CacheWrapper{store: s, cache: c}
}

func TestCacheWrapper_GetAccountsCount(t *testing.T) {
	fake := &fakeCountStore{count: 7}
	wrapper := newTestWrapper(fake, cache.NewMemoryCache[int64]())

	count, err := wrapper.GetAccountsCount(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.Equal(t, 1, fake.calls)

	// Second read within TTL is served from cache
	count, err = wrapper.GetAccountsCount(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.Equal(t, 1, fake.calls, "second read should not hit the store")
}

func TestCacheWrapper_GetAccountsCount_StoreError(t *testing.T) {
	fake := &fakeCountStore{err: errors.New("db down")}
	wrapper := newTestWrapper(fake, cache.NewMemoryCache[int64]())

	_, err := wrapper.GetAccountsCount(context.Background(), time.Minute)
	assert.Error(t, err)
}

func TestCacheWrapper_GetAccountsCount_Expiration(t *testing.T) {
	fake := &fakeCountStore{count: 3}
	wrapper := newTestWrapper(fake, cache.NewMemoryCache[int64]())

	_, err := wrapper.GetAccountsCount(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	fake.count = 5
	count, err := wrapper.GetAccountsCount(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.Equal(t, 2, fake.calls)
}

func TestCacheWrapper_UpdateAccountsGauge(t *testing.T) {
	fake := &fakeCountStore{count: 12}
	wrapper := newTestWrapper(fake, cache.NewMemoryCache[int64]())

	err := wrapper.UpdateAccountsGauge(context.Background(), Init(true), time.Minute)
	require.NoError(t, err)
}

func TestCacheWrapper_UpdateAccountsGauge_StoreError(t *testing.T) {
	fake := &fakeCountStore{err: errors.New("db down")}
	wrapper := newTestWrapper(fake, cache.NewMemoryCache[int64]())

	err := wrapper.UpdateAccountsGauge(context.Background(), NewNoopMetrics(), time.Minute)
	assert.Error(t, err)
}
