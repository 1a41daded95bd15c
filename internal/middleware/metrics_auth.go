package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MetricsAuthMiddleware guards the Prometheus scrape endpoint with a static
// bearer token. An empty token disables the check so local setups can scrape
// without credentials.
func MetricsAuthMiddleware(token string) gin.HandlerFunc {
	rejectUnauthorized := func(c *gin.Context, message string) {
		c.Header("WWW-Authenticate", `Bearer realm="Metrics"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": message,
		})
	}

	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			rejectUnauthorized(c, "Bearer token required")
			return
		}

		providedToken := strings.TrimPrefix(authHeader, "Bearer ")

		// Compare in constant time so the token cannot be probed byte by byte.
		if subtle.ConstantTimeCompare([]byte(providedToken), []byte(token)) != 1 {
			rejectUnauthorized(c, "Invalid token")
			return
		}

		c.Next()
	}
}
