package handlers

import (
	"net/http"

	"github.com/go-ldapgate/ldapgate/internal/identity"
	"github.com/go-ldapgate/ldapgate/internal/middleware"
	"github.com/go-ldapgate/ldapgate/internal/models"
	"github.com/go-ldapgate/ldapgate/internal/services"
	"github.com/go-ldapgate/ldapgate/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionAccountID = middleware.SessionAccountID
	SessionUsername  = "username"
)

type AuthHandler struct {
	authService *services.AuthService
	baseURL     string
}

func NewAuthHandler(as *services.AuthService, baseURL string) *AuthHandler {
	return &AuthHandler{
		authService: as,
		baseURL:     baseURL,
	}
}

// Login handles the directory login form submission
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	redirectTo := c.PostForm("redirect")

	// Reject incomplete submissions before any directory traffic.
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "username and password are required",
		})
		return
	}

	// Validate redirect URL security
	if !util.IsRedirectSafe(redirectTo, h.baseURL) {
		redirectTo = ""
	}

	account, err := h.authService.Login(
		c.Request.Context(), username, password, c.ClientIP(),
	)
	if err != nil {
		// One generic failure signal regardless of which phase failed.
		c.Redirect(http.StatusFound, h.baseURL+"/?error=auth_failed")
		return
	}

	// Set session
	session := sessions.Default(c)
	session.Set(SessionAccountID, account.ID)
	session.Set(SessionUsername, account.Username)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create session",
		})
		return
	}

	// Redirect to the caller-supplied target, or the configured base URL
	if redirectTo != "" {
		c.Redirect(http.StatusFound, redirectTo)
	} else {
		c.Redirect(http.StatusFound, h.baseURL+"/")
	}
}

// Profile returns the logged-in account with its identity snapshot
func (h *AuthHandler) Profile(c *gin.Context) {
	accountVal, exists := c.Get("account")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	account := accountVal.(*models.Account)

	response := gin.H{
		"id":          account.ID,
		"external_id": account.ExternalID,
		"username":    account.Username,
		"created_at":  account.CreatedAt,
		"updated_at":  account.UpdatedAt,
	}
	if profile, err := identity.ParseSnapshot(account.Profile); err == nil {
		response["profile"] = profile
	}

	c.JSON(http.StatusOK, response)
}

// Logout clears the session and evicts the cached account
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)

	accountID, _ := session.Get(SessionAccountID).(string)
	username, _ := session.Get(SessionUsername).(string)

	session.Clear()
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to save session",
		})
		return
	}

	if accountID != "" {
		h.authService.Logout(c.Request.Context(), accountID, username, c.ClientIP())
	}

	c.Redirect(http.StatusFound, h.baseURL+"/")
}
