package services

import (
	"context"
	"fmt"
	"log"

	"github.com/go-ldapgate/ldapgate/internal/core"
	"github.com/go-ldapgate/ldapgate/internal/identity"
	"github.com/go-ldapgate/ldapgate/internal/models"
	"github.com/go-ldapgate/ldapgate/internal/store"
)

// ReconcileOutcome describes what Reconcile did to the local account.
type ReconcileOutcome string

const (
	OutcomeCreated   ReconcileOutcome = "created"
	OutcomeUpdated   ReconcileOutcome = "updated"
	OutcomeUnchanged ReconcileOutcome = "unchanged"
)

// ReconcilerService keeps local accounts in sync with directory identities.
// Find-or-create is keyed on the stable external identifier; the stored
// profile snapshot is rewritten only when the identity actually changed.
type ReconcilerService struct {
	store   *store.Store
	metrics core.Recorder
}

// NewReconcilerService creates a new reconciler.
func NewReconcilerService(s *store.Store, m core.Recorder) *ReconcilerService {
	return &ReconcilerService{
		store:   s,
		metrics: m,
	}
}

// Reconcile maps a normalized identity onto a local account, creating the
// account on first login and refreshing the stored snapshot when the
// directory data changed. Either the returned account fully reflects the
// profile or an error is returned with no account reference.
func (s *ReconcilerService) Reconcile(
	ctx context.Context,
	profile *identity.Profile,
) (*models.Account, ReconcileOutcome, error) {
	snapshot, err := profile.Snapshot()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	account, created, err := s.store.FindOrCreateAccount(
		ctx, profile.ExternalID, profile.Username, snapshot,
	)
	if err != nil {
		s.metrics.RecordDatabaseQueryError("find_or_create_account")
		return nil, "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if account == nil {
		// The store contract never returns nil without error. Fail
		// loudly instead of dropping the request.
		s.metrics.RecordDatabaseQueryError("find_or_create_account")
		return nil, "", fmt.Errorf("%w: find-or-create returned no account", ErrPersistence)
	}

	if created {
		s.metrics.RecordAccountReconciled(string(OutcomeCreated))
		log.Printf("[Reconciler] Created account %s for %s", account.ID, profile.ExternalID)
		return account, OutcomeCreated, nil
	}

	// Compare structurally, not as raw snapshot strings, so that key
	// ordering or encoding differences do not trigger spurious writes.
	stored, parseErr := identity.ParseSnapshot(account.Profile)
	if parseErr == nil && profile.Equal(stored) {
		s.metrics.RecordAccountReconciled(string(OutcomeUnchanged))
		return account, OutcomeUnchanged, nil
	}
	if parseErr != nil {
		// An unreadable stored snapshot is repaired by rewriting it.
		log.Printf("[Reconciler] Unreadable snapshot for account %s, rewriting: %v",
			account.ID, parseErr)
	}

	account.Username = profile.Username
	account.Profile = snapshot
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		s.metrics.RecordDatabaseQueryError("update_account")
		return nil, "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.metrics.RecordAccountReconciled(string(OutcomeUpdated))
	log.Printf("[Reconciler] Updated profile for account %s (%s)", account.ID, profile.ExternalID)
	return account, OutcomeUpdated, nil
}

// GetAccountByID fetches an account from the store.
func (s *ReconcilerService) GetAccountByID(
	ctx context.Context,
	id string,
) (*models.Account, error) {
	account, err := s.store.GetAccountByID(ctx, id)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
