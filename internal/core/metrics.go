package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Directory Operations
	RecordDirectoryConnect(success bool, duration time.Duration)
	RecordDirectorySearch(result string, duration time.Duration)
	RecordDirectoryBind(kind string, success bool)

	// Authentication
	RecordLogin(success bool, duration time.Duration)
	RecordLogout()

	// Account Reconciliation
	RecordAccountReconciled(outcome string)
	RecordAccountCacheLookup(hit bool)
	SetAccountsCount(count int64)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}
