package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cache backend constants
const (
	CacheBackendMemory       = "memory"
	CacheBackendRueidis      = "rueidis"
	CacheBackendRueidisAside = "rueidis-aside"
)

type Config struct {
	// Server settings
	ServerAddr  string
	ServerURL   string
	Environment string

	// Session settings
	SessionSecret string
	SessionMaxAge int

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)

	// LDAP directory
	LDAPURL             string // ldap:// or ldaps:// URL of the directory server
	LDAPBindDN          string // DN of the service account used for the search bind
	LDAPBindCredentials string // Password of the service account
	LDAPSearchBase      string // Base DN for the user search
	LDAPSearchFilter    string // Filter template, {{username}} is replaced per login
	LDAPSearchAttributes []string
	LDAPUserIDField     string // Attribute overriding the stable identifier priority
	LDAPUsernameField   string // Attribute overriding the display username
	LDAPStartTLS        bool
	LDAPTLSSkipVerify   bool
	LDAPTLSCAFile       string
	LDAPTimeout         time.Duration

	// Cache settings
	CacheBackend    string // "memory", "rueidis" or "rueidis-aside"
	CacheRedisAddr  string
	CacheAccountTTL time.Duration

	// Redis (sessions rate limiting store, optional)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	RateLimitEnabled bool
	RateLimitStore   string // "memory" or "redis"
	RateLimitLogin   string // limiter format, e.g. "10-M"

	// Audit log settings
	AuditEnabled       bool
	AuditBufferSize    int
	AuditFlushInterval time.Duration
	AuditRetention     time.Duration

	// Metrics
	MetricsEnabled       bool
	MetricsToken         string
	MetricsGaugeInterval time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "ldapgate.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		ServerURL:     getEnv("SERVER_URL", "http://localhost:8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		SessionSecret: getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 86400),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		// LDAP directory
		LDAPURL:              getEnv("LDAP_URL", ""),
		LDAPBindDN:           getEnv("LDAP_BIND_DN", ""),
		LDAPBindCredentials:  getEnv("LDAP_BIND_CREDENTIALS", ""),
		LDAPSearchBase:       getEnv("LDAP_SEARCH_BASE", ""),
		LDAPSearchFilter:     getEnv("LDAP_SEARCH_FILTER", "(uid={{username}})"),
		LDAPSearchAttributes: getEnvSlice("LDAP_SEARCH_ATTRIBUTES", nil),
		LDAPUserIDField:      getEnv("LDAP_USERID_FIELD", ""),
		LDAPUsernameField:    getEnv("LDAP_USERNAME_FIELD", ""),
		LDAPStartTLS:         getEnvBool("LDAP_STARTTLS", false),
		LDAPTLSSkipVerify:    getEnvBool("LDAP_TLS_SKIP_VERIFY", false),
		LDAPTLSCAFile:        getEnv("LDAP_TLS_CA_FILE", ""),
		LDAPTimeout:          getEnvDuration("LDAP_TIMEOUT", 10*time.Second),

		// Cache settings
		CacheBackend:    getEnv("CACHE_BACKEND", CacheBackendMemory),
		CacheRedisAddr:  getEnv("CACHE_REDIS_ADDR", "localhost:6379"),
		CacheAccountTTL: getEnvDuration("CACHE_ACCOUNT_TTL", 5*time.Minute),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		// Rate limiting
		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitStore:   getEnv("RATE_LIMIT_STORE", "memory"),
		RateLimitLogin:   getEnv("RATE_LIMIT_LOGIN", "10-M"),

		// Audit log settings
		AuditEnabled:       getEnvBool("AUDIT_ENABLED", true),
		AuditBufferSize:    getEnvInt("AUDIT_BUFFER_SIZE", 1000),
		AuditFlushInterval: getEnvDuration("AUDIT_FLUSH_INTERVAL", 5*time.Second),
		AuditRetention:     getEnvDuration("AUDIT_RETENTION", 90*24*time.Hour),

		// Metrics
		MetricsEnabled:       getEnvBool("METRICS_ENABLED", true),
		MetricsToken:         getEnv("METRICS_TOKEN", ""),
		MetricsGaugeInterval: getEnvDuration("METRICS_GAUGE_INTERVAL", time.Minute),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// ValidateLDAP checks that the directory settings required for the
// bind/search/re-bind sequence are present.
func (c *Config) ValidateLDAP() error {
	if c.LDAPURL == "" {
		return fmt.Errorf("LDAP_URL is required")
	}
	if !strings.HasPrefix(c.LDAPURL, "ldap://") && !strings.HasPrefix(c.LDAPURL, "ldaps://") {
		return fmt.Errorf("LDAP_URL must start with ldap:// or ldaps://, got %q", c.LDAPURL)
	}
	if c.LDAPSearchBase == "" {
		return fmt.Errorf("LDAP_SEARCH_BASE is required")
	}
	if c.LDAPSearchFilter == "" {
		return fmt.Errorf("LDAP_SEARCH_FILTER is required")
	}
	if !strings.Contains(c.LDAPSearchFilter, "{{username}}") {
		return fmt.Errorf("LDAP_SEARCH_FILTER must contain the {{username}} placeholder")
	}
	if strings.HasPrefix(c.LDAPURL, "ldaps://") && c.LDAPStartTLS {
		return fmt.Errorf("LDAP_STARTTLS cannot be combined with an ldaps:// URL")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Split by comma and trim spaces
		parts := []string{}
		for _, part := range splitAndTrim(value, ",") {
			if part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
