package middleware

import (
	"net/http"

	"github.com/go-ldapgate/ldapgate/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionAccountID = "account_id"
)

// RequireAuth is a middleware that requires the caller to be logged in
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		accountID := session.Get(SessionAccountID)

		if accountID == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Set("account_id", accountID)
		c.Next()
	}
}

// RequireAccount resolves the session's account and stores it in the
// context. It should be used after RequireAuth.
func RequireAccount(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, exists := c.Get("account_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		account, err := authService.GetAccountByID(c, accountID.(string))
		if err != nil {
			// The session points at an account that no longer exists.
			session := sessions.Default(c)
			session.Clear()
			_ = session.Save()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "account not found",
			})
			return
		}

		c.Set("account", account)
		c.Next()
	}
}
