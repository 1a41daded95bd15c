package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

// Directory Operations - noop implementations
func (n *NoopMetrics) RecordDirectoryConnect(success bool, duration time.Duration) {}
func (n *NoopMetrics) RecordDirectorySearch(result string, duration time.Duration) {}
func (n *NoopMetrics) RecordDirectoryBind(kind string, success bool)               {}

// Authentication - noop implementations
func (n *NoopMetrics) RecordLogin(success bool, duration time.Duration) {}
func (n *NoopMetrics) RecordLogout()                                    {}

// Account Reconciliation - noop implementations
func (n *NoopMetrics) RecordAccountReconciled(outcome string) {}
func (n *NoopMetrics) RecordAccountCacheLookup(hit bool)      {}
func (n *NoopMetrics) SetAccountsCount(count int64)           {}

// Database Operations - noop implementations
func (n *NoopMetrics) RecordDatabaseQueryError(operation string) {}
