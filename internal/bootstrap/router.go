package bootstrap

import (
	"log"
	"net/http"

	"github.com/go-ldapgate/ldapgate/internal/config"
	"github.com/go-ldapgate/ldapgate/internal/core"
	"github.com/go-ldapgate/ldapgate/internal/metrics"
	"github.com/go-ldapgate/ldapgate/internal/models"
	"github.com/go-ldapgate/ldapgate/internal/middleware"
	"github.com/go-ldapgate/ldapgate/internal/services"
	"github.com/go-ldapgate/ldapgate/internal/store"
	"github.com/go-ldapgate/ldapgate/internal/util"
	"github.com/go-ldapgate/ldapgate/internal/version"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	prometheusMetrics metrics.Recorder,
	authService *services.AuthService,
	accountCache core.Cache[models.Account],
) *gin.Engine {
	// Setup Gin mode
	setupGinMode(cfg)
	r := gin.New()

	// Setup middleware
	r.Use(metrics.HTTPMetricsMiddleware(prometheusMetrics))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	// Setup session middleware
	setupSessionMiddleware(r, cfg)

	// Health check endpoint
	r.GET("/healthz", createHealthCheckHandler(db, accountCache))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg)

	// Setup rate limiting
	rateLimiters := setupRateLimiting(cfg)

	// Setup all routes
	setupAllRoutes(r, h, authService, rateLimiters)

	// Log server startup info
	logServerStartup(cfg)

	return r
}

// setupSessionMiddleware configures session handling middleware
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("ldapgate_session", sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	h handlerSet,
	authService *services.AuthService,
	rateLimiters rateLimitMiddlewares,
) {
	// Public routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": version.App,
			"version": version.Version,
		})
	})

	// Directory login
	r.POST("/auth/ldap", rateLimiters.login, h.auth.Login)

	// Protected routes (require login)
	protected := r.Group("")
	protected.Use(
		middleware.RequireAuth(),
		middleware.RequireAccount(authService),
		middleware.CSRFMiddleware(),
	)
	{
		protected.GET("/profile", h.auth.Profile)
		protected.POST("/logout", h.auth.Logout)
	}

	// Audit log API routes (require login)
	audit := r.Group("/audit")
	audit.Use(
		middleware.RequireAuth(),
		middleware.RequireAccount(authService),
		middleware.CSRFMiddleware(),
	)
	{
		audit.GET("", h.audit.ListAuditLogs)
		audit.GET("/stats", h.audit.GetAuditLogStats)
		audit.GET("/export", h.audit.ExportAuditLogs)
	}
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(
	db *store.Store,
	accountCache core.Cache[models.Account],
) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "connected"
		cacheStatus := "connected"

		if err := db.Health(); err != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "disconnected"
		}
		if err := accountCache.Health(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			cacheStatus = "disconnected"
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "unhealthy"
		}

		c.JSON(status, gin.H{
			"status":   overall,
			"database": dbStatus,
			"cache":    cacheStatus,
		})
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	mode := ginModeMap[cfg.IsProduction()]
	gin.SetMode(mode)
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction()])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("Directory server: %s", cfg.LDAPURL)
	log.Printf("LDAP authentication server starting on %s", cfg.ServerAddr)
	log.Printf("Login endpoint: %s/auth/ldap", cfg.ServerURL)
}
