package metrics

import "time"

// RecordDirectoryConnect records a directory connection attempt
func (m *Metrics) RecordDirectoryConnect(success bool, duration time.Duration) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.DirectoryConnectTotal.WithLabelValues(result).Inc()
	m.DirectoryConnectDuration.Observe(duration.Seconds())
}

// RecordDirectorySearch records a directory user search
func (m *Metrics) RecordDirectorySearch(result string, duration time.Duration) {
	// result: found, not_found, ambiguous, error
	m.DirectorySearchTotal.WithLabelValues(result).Inc()
	m.DirectorySearchDuration.Observe(duration.Seconds())
}

// RecordDirectoryBind records a directory bind operation
func (m *Metrics) RecordDirectoryBind(kind string, success bool) {
	// kind: service, user
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.DirectoryBindTotal.WithLabelValues(kind, result).Inc()
}

// RecordLogin records a login attempt
func (m *Metrics) RecordLogin(success bool, duration time.Duration) {
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	m.AuthLoginTotal.WithLabelValues(result).Inc()
	m.AuthLoginDuration.Observe(duration.Seconds())
}

// RecordLogout records a logout
func (m *Metrics) RecordLogout() {
	m.AuthLogoutTotal.Inc()
}

// RecordAccountReconciled records the outcome of an account reconciliation
func (m *Metrics) RecordAccountReconciled(outcome string) {
	// outcome: created, updated, unchanged
	m.AccountsReconciledTotal.WithLabelValues(outcome).Inc()
}

// RecordAccountCacheLookup records an account cache lookup
func (m *Metrics) RecordAccountCacheLookup(hit bool) {
	result := "hit"
	if !hit {
		result = "miss"
	}
	m.AccountCacheLookupsTotal.WithLabelValues(result).Inc()
}

// SetAccountsCount sets the current count of local accounts (for periodic updates)
func (m *Metrics) SetAccountsCount(count int64) {
	m.AccountsTotal.Set(float64(count))
}

// RecordDatabaseQueryError records a database query error
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
