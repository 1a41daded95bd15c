package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/go-ldapgate/ldapgate/internal/cache"
	"github.com/go-ldapgate/ldapgate/internal/core"
	"github.com/go-ldapgate/ldapgate/internal/directory"
	"github.com/go-ldapgate/ldapgate/internal/identity"
	"github.com/go-ldapgate/ldapgate/internal/metrics"
	"github.com/go-ldapgate/ldapgate/internal/mocks"
	"github.com/go-ldapgate/ldapgate/internal/models"
	"github.com/go-ldapgate/ldapgate/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aliceDirectoryEntry() *core.Entry {
	return &core.Entry{
		DN: "uid=alice,ou=people,dc=example,dc=com",
		Attributes: map[string][]string{
			"uid":         {"alice"},
			"uidNumber":   {"1000"},
			"displayName": {"Alice Example"},
			"mail":        {"alice@example.com"},
		},
	}
}

func newTestAuthService(
	t *testing.T,
	db *store.Store,
	dir core.DirectorySession,
	recorder core.Recorder,
) *AuthService {
	t.Helper()
	if recorder == nil {
		recorder = metrics.NewNoopMetrics()
	}
	reconciler := NewReconcilerService(db, recorder)
	audit := NewAuditService(db, false, 0, 0)
	accounts := cache.NewMemoryCache[models.Account]()
	opts := identity.Options{UsernameField: "uid"}
	return NewAuthService(dir, reconciler, opts, accounts, 5*time.Minute, audit, recorder)
}

func TestLogin_Success(t *testing.T) {
	db := setupTestStore(t)
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)

	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "password123").
		Return(aliceDirectoryEntry(), nil)

	svc := newTestAuthService(t, db, dir, nil)
	account, err := svc.Login(context.Background(), "alice", "password123", "203.0.113.7")
	require.NoError(t, err)

	assert.Equal(t, "LDAP-1000", account.ExternalID)
	assert.Equal(t, "alice", account.Username)

	// The account is persisted, not just returned.
	stored, err := db.GetAccountByExternalID(context.Background(), "LDAP-1000")
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	db := setupTestStore(t)
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)

	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "wrong").
		Return(nil, fmt.Errorf("%w: bind rejected", directory.ErrInvalidCredentials))

	svc := newTestAuthService(t, db, dir, nil)
	_, err := svc.Login(context.Background(), "alice", "wrong", "203.0.113.7")

	// Callers only ever see the generic failure, never the cause.
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.NotErrorIs(t, err, directory.ErrInvalidCredentials)
}

func TestLogin_DirectoryUnavailable(t *testing.T) {
	db := setupTestStore(t)
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)

	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "password123").
		Return(nil, fmt.Errorf("%w: connection refused", directory.ErrConnection))

	svc := newTestAuthService(t, db, dir, nil)
	_, err := svc.Login(context.Background(), "alice", "password123", "203.0.113.7")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestLogin_UnknownUser(t *testing.T) {
	db := setupTestStore(t)
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)

	dir.EXPECT().
		Authenticate(gomock.Any(), "ghost", "password123").
		Return(nil, fmt.Errorf("%w: no entry matched", directory.ErrSearch))

	svc := newTestAuthService(t, db, dir, nil)
	_, err := svc.Login(context.Background(), "ghost", "password123", "203.0.113.7")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestLogin_MissingStableID(t *testing.T) {
	db := setupTestStore(t)
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)

	// An entry without any stable identifier attribute must never become
	// an account keyed on the typed-in username.
	entry := &core.Entry{
		DN:         "cn=odd,ou=people,dc=example,dc=com",
		Attributes: map[string][]string{"mail": {"odd@example.com"}},
	}
	dir.EXPECT().
		Authenticate(gomock.Any(), "odd", "password123").
		Return(entry, nil)

	svc := newTestAuthService(t, db, dir, nil)
	_, err := svc.Login(context.Background(), "odd", "password123", "203.0.113.7")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	count, err := db.CountAccounts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLogin_RepeatedLoginsShareOneAccount(t *testing.T) {
	db := setupTestStore(t)
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)

	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "password123").
		Return(aliceDirectoryEntry(), nil).
		Times(2)

	svc := newTestAuthService(t, db, dir, nil)

	first, err := svc.Login(context.Background(), "alice", "password123", "203.0.113.7")
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), "alice", "password123", "203.0.113.7")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	count, err := db.CountAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLogin_RecordsFailureMetric(t *testing.T) {
	db := setupTestStore(t)
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)
	recorder := mocks.NewMockRecorder(ctrl)

	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "wrong").
		Return(nil, fmt.Errorf("%w: bind rejected", directory.ErrInvalidCredentials))
	recorder.EXPECT().RecordLogin(false, gomock.Any())

	svc := newTestAuthService(t, db, dir, recorder)
	_, err := svc.Login(context.Background(), "alice", "wrong", "203.0.113.7")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestGetAccountByID_ServedFromCacheAfterLogin(t *testing.T) {
	db := setupTestStore(t)
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)

	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "password123").
		Return(aliceDirectoryEntry(), nil)

	svc := newTestAuthService(t, db, dir, nil)
	account, err := svc.Login(context.Background(), "alice", "password123", "203.0.113.7")
	require.NoError(t, err)

	// Remove the row behind the cache; a cached read must still succeed.
	require.NoError(t, db.DB().Delete(&models.Account{}, "id = ?", account.ID).Error)

	cached, err := svc.GetAccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ExternalID, cached.ExternalID)
}

func TestLogout_EvictsCachedAccount(t *testing.T) {
	db := setupTestStore(t)
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)

	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "password123").
		Return(aliceDirectoryEntry(), nil)

	svc := newTestAuthService(t, db, dir, nil)
	account, err := svc.Login(context.Background(), "alice", "password123", "203.0.113.7")
	require.NoError(t, err)

	svc.Logout(context.Background(), account.ID, account.Username, "203.0.113.7")

	// With the cache evicted and the row gone, the read must fail.
	require.NoError(t, db.DB().Delete(&models.Account{}, "id = ?", account.ID).Error)
	_, err = svc.GetAccountByID(context.Background(), account.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestGetAccountByID_NotFoundFromAuthService(t *testing.T) {
	db := setupTestStore(t)
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)

	svc := newTestAuthService(t, db, dir, nil)
	_, err := svc.GetAccountByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
