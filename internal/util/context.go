package util

import (
	"context"

	"github.com/go-ldapgate/ldapgate/internal/models"

	"github.com/gin-gonic/gin"
)

// ipContextKey is the context key shared by the gin middleware and
// plain-context callers.
const ipContextKey = "client_ip"

// IPMiddleware extracts client IP and stores it in the context
func IPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Gin's ClientIP() handles X-Forwarded-For and other headers
		c.Set(ipContextKey, c.ClientIP())
		c.Next()
	}
}

// SetIPContext stores the client IP in a plain context, for callers that
// are not running inside a gin handler
func SetIPContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipContextKey, ip) //nolint:staticcheck
}

// GetIPFromContext extracts the client IP address from the context
func GetIPFromContext(ctx context.Context) string {
	// Try to extract from Gin context first
	if ginCtx, ok := ctx.(*gin.Context); ok {
		return ginCtx.ClientIP()
	}

	// Try to get from context value (set by middleware)
	if ip, ok := ctx.Value(ipContextKey).(string); ok {
		return ip
	}

	return ""
}

// GetUsernameFromContext extracts the username from the account object in context
func GetUsernameFromContext(ctx context.Context) string {
	// Try to extract from Gin context first
	if ginCtx, ok := ctx.(*gin.Context); ok {
		if accountVal, exists := ginCtx.Get("account"); exists {
			if account, ok := accountVal.(*models.Account); ok {
				return account.Username
			}
		}
	}

	return ""
}
