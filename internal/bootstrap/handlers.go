package bootstrap

import (
	"github.com/go-ldapgate/ldapgate/internal/config"
	"github.com/go-ldapgate/ldapgate/internal/handlers"
	"github.com/go-ldapgate/ldapgate/internal/services"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	auth  *handlers.AuthHandler
	audit *handlers.AuditHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	authService *services.AuthService,
	auditService *services.AuditService,
) handlerSet {
	return handlerSet{
		auth:  handlers.NewAuthHandler(authService, cfg.ServerURL),
		audit: handlers.NewAuditHandler(auditService),
	}
}
