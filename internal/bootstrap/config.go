package bootstrap

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-ldapgate/ldapgate/internal/config"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) {
	if err := cfg.ValidateLDAP(); err != nil {
		log.Fatalf("Invalid directory configuration: %v", err)
	}
	if err := validateDatabaseConfig(cfg); err != nil {
		log.Fatalf("Invalid database configuration: %v", err)
	}
	if err := validateCacheConfig(cfg); err != nil {
		log.Fatalf("Invalid cache configuration: %v", err)
	}
}

// validateDatabaseConfig checks that required config is present for the selected driver
func validateDatabaseConfig(cfg *config.Config) error {
	switch cfg.DatabaseDriver {
	case "sqlite":
		// DSN defaults to a local file
	case "postgres":
		if cfg.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required when DATABASE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf(
			"invalid DATABASE_DRIVER: %s (must be: sqlite, postgres)",
			cfg.DatabaseDriver,
		)
	}
	return nil
}

// validateCacheConfig checks the cache backend selection
func validateCacheConfig(cfg *config.Config) error {
	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		// No additional validation needed
	case config.CacheBackendRueidis, config.CacheBackendRueidisAside:
		if cfg.CacheRedisAddr == "" {
			return fmt.Errorf(
				"CACHE_REDIS_ADDR is required when CACHE_BACKEND=%s",
				cfg.CacheBackend,
			)
		}
	default:
		return fmt.Errorf(
			"invalid CACHE_BACKEND: %s (must be: memory, rueidis, rueidis-aside)",
			cfg.CacheBackend,
		)
	}
	return nil
}
