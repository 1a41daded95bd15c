package bootstrap

import (
	"github.com/go-ldapgate/ldapgate/internal/config"
	"github.com/go-ldapgate/ldapgate/internal/core"
	"github.com/go-ldapgate/ldapgate/internal/identity"
	"github.com/go-ldapgate/ldapgate/internal/models"
	"github.com/go-ldapgate/ldapgate/internal/services"
	"github.com/go-ldapgate/ldapgate/internal/store"
)

// initializeServices creates all business logic services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	dir core.DirectorySession,
	accountCache core.Cache[models.Account],
	auditService *services.AuditService,
	prometheusMetrics core.Recorder,
) (*services.ReconcilerService, *services.AuthService) {
	reconcilerService := services.NewReconcilerService(db, prometheusMetrics)

	normOpts := identity.Options{
		UserIDField:   cfg.LDAPUserIDField,
		UsernameField: cfg.LDAPUsernameField,
	}

	authService := services.NewAuthService(
		dir,
		reconcilerService,
		normOpts,
		accountCache,
		cfg.CacheAccountTTL,
		auditService,
		prometheusMetrics,
	)

	return reconcilerService, authService
}
