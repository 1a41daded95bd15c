package bootstrap

import (
	"context"
	"net/http"

	"github.com/go-ldapgate/ldapgate/internal/config"
	"github.com/go-ldapgate/ldapgate/internal/core"
	"github.com/go-ldapgate/ldapgate/internal/directory"
	"github.com/go-ldapgate/ldapgate/internal/metrics"
	"github.com/go-ldapgate/ldapgate/internal/models"
	"github.com/go-ldapgate/ldapgate/internal/services"
	"github.com/go-ldapgate/ldapgate/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                 *store.Store
	MetricsRecorder    metrics.Recorder
	MetricsCache       core.Cache[int64]
	MetricsCacheCloser func() error
	AccountCache       core.Cache[models.Account]
	AccountCacheCloser func() error

	// Services
	Directory         *directory.Session
	AuditService      *services.AuditService
	ReconcilerService *services.ReconcilerService
	AuthService       *services.AuthService

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	app := &Application{Config: cfg}

	// Phase 1: Validate configuration
	validateAllConfiguration(cfg)

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	if err := app.initializeBusinessLayer(); err != nil {
		return err
	}

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, and caches
func (app *Application) initializeInfrastructure() error {
	ctx := context.Background()

	var err error

	// Database
	app.DB, err = initializeDatabase(app.Config)
	if err != nil {
		return err
	}

	// Metrics
	app.MetricsRecorder = initializeMetrics(app.Config)
	app.MetricsCache, app.MetricsCacheCloser, err = initializeMetricsCache(ctx, app.Config)
	if err != nil {
		return err
	}

	// Account cache (always enabled, defaults to memory)
	app.AccountCache, app.AccountCacheCloser, err = initializeAccountCache(ctx, app.Config)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up the directory session and services
func (app *Application) initializeBusinessLayer() error {
	// Audit service (required by the authentication service)
	app.AuditService = services.NewAuditService(
		app.DB,
		app.Config.AuditEnabled,
		app.Config.AuditBufferSize,
		app.Config.AuditFlushInterval,
	)

	var err error
	app.Directory, err = directory.NewSession(app.Config, app.MetricsRecorder)
	if err != nil {
		return err
	}

	app.ReconcilerService, app.AuthService = initializeServices(
		app.Config,
		app.DB,
		app.Directory,
		app.AccountCache,
		app.AuditService,
		app.MetricsRecorder,
	)

	return nil
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	// Handlers
	app.HandlerSet = initializeHandlers(
		app.Config,
		app.AuthService,
		app.AuditService,
	)

	// Router
	app.Router = setupRouter(
		app.Config,
		app.DB,
		app.HandlerSet,
		app.MetricsRecorder,
		app.AuthService,
		app.AccountCache,
	)

	// HTTP Server
	app.Server = createHTTPServer(app.Config, app.Router)
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	// Add jobs
	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Server)
	addAuditServiceShutdownJob(m, app.AuditService)
	addAuditLogCleanupJob(m, app.Config, app.AuditService)
	addMetricsGaugeUpdateJob(m, app.Config, app.DB, app.MetricsRecorder, app.MetricsCache)
	addCacheCleanupJob(m, "metrics", app.MetricsCacheCloser)
	addCacheCleanupJob(m, "account", app.AccountCacheCloser)

	// Wait for graceful shutdown
	<-m.Done()
}
