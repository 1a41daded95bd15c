package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-ldapgate/ldapgate/internal/cache"
	"github.com/go-ldapgate/ldapgate/internal/config"
	"github.com/go-ldapgate/ldapgate/internal/core"
	"github.com/go-ldapgate/ldapgate/internal/metrics"
	"github.com/go-ldapgate/ldapgate/internal/models"
)

const (
	// cacheInitTimeout bounds the initial Redis connection handshake.
	cacheInitTimeout = 10 * time.Second

	// cacheClientTTL is the local TTL for client-side cached entries.
	cacheClientTTL = 30 * time.Second
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) metrics.Recorder {
	prometheusMetrics := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return prometheusMetrics
}

// initializeMetricsCache initializes the gauge query cache based on configuration
func initializeMetricsCache(
	ctx context.Context,
	cfg *config.Config,
) (core.Cache[int64], func() error, error) {
	if !cfg.MetricsEnabled || cfg.MetricsGaugeInterval <= 0 {
		return nil, nil, nil
	}

	c, closer, err := newCacheBackend[int64](ctx, cfg, "ldapgate:metrics:")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize metrics cache: %w", err)
	}
	log.Printf("Metrics cache: %s", cfg.CacheBackend)
	return c, closer, nil
}

// initializeAccountCache initializes the account cache (always enabled, defaults to memory)
func initializeAccountCache(
	ctx context.Context,
	cfg *config.Config,
) (core.Cache[models.Account], func() error, error) {
	c, closer, err := newCacheBackend[models.Account](ctx, cfg, "ldapgate:accounts:")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize account cache: %w", err)
	}
	log.Printf("Account cache: %s (ttl=%s)", cfg.CacheBackend, cfg.CacheAccountTTL)
	return c, closer, nil
}

// newCacheBackend creates a cache instance for the configured backend
func newCacheBackend[T any](
	ctx context.Context,
	cfg *config.Config,
	keyPrefix string,
) (core.Cache[T], func() error, error) {
	ctx, cancel := context.WithTimeout(ctx, cacheInitTimeout)
	defer cancel()

	switch cfg.CacheBackend {
	case config.CacheBackendRueidisAside:
		c, err := cache.NewRueidisAsideCache[T](
			cfg.CacheRedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			keyPrefix,
			cacheClientTTL,
		)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	case config.CacheBackendRueidis:
		c, err := cache.NewRueidisCache[T](
			ctx,
			cfg.CacheRedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			keyPrefix,
		)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	default: // memory
		c := cache.NewMemoryCache[T]()
		return c, c.Close, nil
	}
}
