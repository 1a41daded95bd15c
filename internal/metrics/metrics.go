package metrics

import (
	"sync"

	"github.com/go-ldapgate/ldapgate/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the metrics interface consumed by the rest of the application.
type Recorder = core.Recorder

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Directory Metrics
	DirectoryConnectTotal    *prometheus.CounterVec
	DirectoryConnectDuration prometheus.Histogram
	DirectorySearchTotal     *prometheus.CounterVec
	DirectorySearchDuration  prometheus.Histogram
	DirectoryBindTotal       *prometheus.CounterVec

	// Authentication Metrics
	AuthLoginTotal    *prometheus.CounterVec
	AuthLoginDuration prometheus.Histogram
	AuthLogoutTotal   prometheus.Counter

	// Account Metrics
	AccountsReconciledTotal  *prometheus.CounterVec
	AccountCacheLookupsTotal *prometheus.CounterVec
	AccountsTotal            prometheus.Gauge

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	m := &Metrics{
		// Directory Metrics
		DirectoryConnectTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ldap_directory_connect_total",
				Help: "Total number of directory connection attempts",
			},
			[]string{"result"}, // success, error
		),
		DirectoryConnectDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ldap_directory_connect_duration_seconds",
				Help:    "Time taken to establish a directory connection",
				Buckets: prometheus.DefBuckets,
			},
		),
		DirectorySearchTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ldap_directory_search_total",
				Help: "Total number of directory user searches",
			},
			[]string{"result"}, // found, not_found, ambiguous, error
		),
		DirectorySearchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ldap_directory_search_duration_seconds",
				Help:    "Time taken to search the directory for a user",
				Buckets: prometheus.DefBuckets,
			},
		),
		DirectoryBindTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ldap_directory_bind_total",
				Help: "Total number of directory bind operations",
			},
			[]string{"kind", "result"}, // kind: service, user; result: success, error
		),

		// Authentication Metrics
		AuthLoginTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"}, // success, failure
		),
		AuthLoginDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "auth_login_duration_seconds",
				Help:    "Time taken to complete login",
				Buckets: prometheus.DefBuckets,
			},
		),
		AuthLogoutTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_logout_total",
				Help: "Total number of logouts",
			},
		),

		// Account Metrics
		AccountsReconciledTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_reconciled_total",
				Help: "Total number of account reconciliations by outcome",
			},
			[]string{"outcome"}, // created, updated, unchanged
		),
		AccountCacheLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_cache_lookups_total",
				Help: "Total number of account cache lookups",
			},
			[]string{"result"}, // hit, miss
		),
		AccountsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "accounts_total",
				Help: "Current number of local accounts",
			},
		),

		// HTTP Request Metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				Buckets: []float64{
					0.001,
					0.005,
					0.010,
					0.025,
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
				},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		// Database Query Metrics
		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors",
			},
			[]string{"operation"}, // find_or_create_account, update_account, count_accounts
		),
	}

	return m
}
