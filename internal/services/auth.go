package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-ldapgate/ldapgate/internal/core"
	"github.com/go-ldapgate/ldapgate/internal/directory"
	"github.com/go-ldapgate/ldapgate/internal/identity"
	"github.com/go-ldapgate/ldapgate/internal/models"
)

const accountCacheKeyPrefix = "account:"

// AuthService runs the full login sequence: directory authentication,
// identity normalization and account reconciliation. Every failure mode is
// collapsed into ErrAuthenticationFailed toward the caller; the specific
// cause is logged and audited at the appropriate severity.
type AuthService struct {
	directory  core.DirectorySession
	reconciler *ReconcilerService
	normOpts   identity.Options
	accounts   core.Cache[models.Account]
	cacheTTL   time.Duration
	audit      *AuditService
	metrics    core.Recorder
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	dir core.DirectorySession,
	reconciler *ReconcilerService,
	normOpts identity.Options,
	accounts core.Cache[models.Account],
	cacheTTL time.Duration,
	audit *AuditService,
	m core.Recorder,
) *AuthService {
	return &AuthService{
		directory:  dir,
		reconciler: reconciler,
		normOpts:   normOpts,
		accounts:   accounts,
		cacheTTL:   cacheTTL,
		audit:      audit,
		metrics:    m,
	}
}

// Login authenticates the submitted credentials against the directory and
// returns the reconciled local account.
func (s *AuthService) Login(
	ctx context.Context,
	username, password, clientIP string,
) (*models.Account, error) {
	start := time.Now()

	entry, err := s.directory.Authenticate(ctx, username, password)
	if err != nil {
		s.recordLoginFailure(ctx, username, clientIP, start, err)
		return nil, ErrAuthenticationFailed
	}

	profile, err := identity.Normalize(entry, s.normOpts)
	if err != nil {
		// A missing stable identifier is a directory schema or
		// configuration mismatch, never a user error.
		log.Printf("[Auth] ERROR normalization failed for user=%s: %v", username, err)
		s.auditFailure(ctx, username, clientIP, models.SeverityError, err)
		s.metrics.RecordLogin(false, time.Since(start))
		return nil, ErrAuthenticationFailed
	}

	account, outcome, err := s.reconciler.Reconcile(ctx, profile)
	if err != nil {
		log.Printf("[Auth] ERROR reconciliation failed for user=%s: %v", username, err)
		s.auditFailure(ctx, username, clientIP, models.SeverityError, err)
		s.metrics.RecordLogin(false, time.Since(start))
		return nil, ErrAuthenticationFailed
	}

	// Refresh the account cache so profile reads observe this login.
	if err := s.accounts.Set(ctx, accountCacheKeyPrefix+account.ID, *account, s.cacheTTL); err != nil {
		log.Printf("[Auth] Failed to cache account %s: %v", account.ID, err)
	}

	s.metrics.RecordLogin(true, time.Since(start))
	s.auditLoginSuccess(ctx, account, clientIP, outcome)

	log.Printf("[Auth] Login succeeded for user=%s account=%s (%s)",
		username, account.ID, outcome)
	return account, nil
}

// Logout invalidates the cached account and audits the event.
func (s *AuthService) Logout(ctx context.Context, accountID, username, clientIP string) {
	if err := s.accounts.Delete(ctx, accountCacheKeyPrefix+accountID); err != nil {
		log.Printf("[Auth] Failed to evict account %s from cache: %v", accountID, err)
	}

	s.metrics.RecordLogout()
	s.audit.Log(ctx, AuditLogEntry{
		EventType:      models.EventLogout,
		Severity:       models.SeverityInfo,
		ActorAccountID: accountID,
		ActorUsername:  username,
		ActorIP:        clientIP,
		ResourceType:   models.ResourceAccount,
		ResourceID:     accountID,
		Action:         "logout",
		Success:        true,
	})
}

// GetAccountByID returns the account, serving repeated reads from cache.
func (s *AuthService) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	if cached, err := s.accounts.Get(ctx, accountCacheKeyPrefix+id); err == nil {
		s.metrics.RecordAccountCacheLookup(true)
		return &cached, nil
	}
	s.metrics.RecordAccountCacheLookup(false)

	account, err := s.reconciler.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Set(ctx, accountCacheKeyPrefix+id, *account, s.cacheTTL); err != nil {
		log.Printf("[Auth] Failed to cache account %s: %v", id, err)
	}
	return account, nil
}

// recordLoginFailure routes a directory failure to logs, audit and metrics
// with severity matching its kind. Credential and search failures are
// routine; configuration and transport failures are operator problems.
func (s *AuthService) recordLoginFailure(
	ctx context.Context,
	username, clientIP string,
	start time.Time,
	err error,
) {
	switch {
	case errors.Is(err, directory.ErrInvalidCredentials):
		log.Printf("[Auth] Invalid credentials for user=%s", username)
		s.auditFailure(ctx, username, clientIP, models.SeverityInfo, err)
	case errors.Is(err, directory.ErrSearch):
		log.Printf("[Auth] Directory search failed for user=%s: %v", username, err)
		s.auditFailure(ctx, username, clientIP, models.SeverityInfo, err)
	case errors.Is(err, directory.ErrConfiguration):
		log.Printf("[Auth] ERROR directory configuration: %v", err)
		s.auditFailure(ctx, username, clientIP, models.SeverityError, err)
	default:
		log.Printf("[Auth] ERROR directory connection for user=%s: %v", username, err)
		s.auditFailure(ctx, username, clientIP, models.SeverityError, err)
	}
	s.metrics.RecordLogin(false, time.Since(start))
}

func (s *AuthService) auditFailure(
	ctx context.Context,
	username, clientIP string,
	severity models.EventSeverity,
	err error,
) {
	s.audit.Log(ctx, AuditLogEntry{
		EventType:     models.EventAuthenticationFailure,
		Severity:      severity,
		ActorUsername: username,
		ActorIP:       clientIP,
		ResourceType:  models.ResourceDirectory,
		Action:        "login",
		Success:       false,
		ErrorMessage:  err.Error(),
	})
}

func (s *AuthService) auditLoginSuccess(
	ctx context.Context,
	account *models.Account,
	clientIP string,
	outcome ReconcileOutcome,
) {
	s.audit.Log(ctx, AuditLogEntry{
		EventType:      models.EventAuthenticationSuccess,
		Severity:       models.SeverityInfo,
		ActorAccountID: account.ID,
		ActorUsername:  account.Username,
		ActorIP:        clientIP,
		ResourceType:   models.ResourceAccount,
		ResourceID:     account.ID,
		ResourceName:   account.Username,
		Action:         "login",
		Details:        models.AuditDetails{"reconcile_outcome": string(outcome)},
		Success:        true,
	})

	switch outcome {
	case OutcomeCreated:
		s.audit.Log(ctx, AuditLogEntry{
			EventType:      models.EventAccountCreated,
			Severity:       models.SeverityInfo,
			ActorAccountID: account.ID,
			ActorUsername:  account.Username,
			ActorIP:        clientIP,
			ResourceType:   models.ResourceAccount,
			ResourceID:     account.ID,
			ResourceName:   account.Username,
			Action:         fmt.Sprintf("account created for %s", account.ExternalID),
			Success:        true,
		})
	case OutcomeUpdated:
		s.audit.Log(ctx, AuditLogEntry{
			EventType:      models.EventAccountProfileUpdated,
			Severity:       models.SeverityInfo,
			ActorAccountID: account.ID,
			ActorUsername:  account.Username,
			ActorIP:        clientIP,
			ResourceType:   models.ResourceAccount,
			ResourceID:     account.ID,
			ResourceName:   account.Username,
			Action:         fmt.Sprintf("profile refreshed for %s", account.ExternalID),
			Success:        true,
		})
	case OutcomeUnchanged:
		// Nothing to report beyond the login itself.
	}
}
