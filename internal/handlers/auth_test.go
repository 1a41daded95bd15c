package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/go-ldapgate/ldapgate/internal/cache"
	"github.com/go-ldapgate/ldapgate/internal/core"
	"github.com/go-ldapgate/ldapgate/internal/identity"
	"github.com/go-ldapgate/ldapgate/internal/metrics"
	"github.com/go-ldapgate/ldapgate/internal/middleware"
	"github.com/go-ldapgate/ldapgate/internal/mocks"
	"github.com/go-ldapgate/ldapgate/internal/models"
	"github.com/go-ldapgate/ldapgate/internal/services"
	"github.com/go-ldapgate/ldapgate/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:8080"

func aliceDirectoryEntry() *core.Entry {
	return &core.Entry{
		DN: "uid=alice,ou=people,dc=example,dc=com",
		Attributes: map[string][]string{
			"uid":         {"alice"},
			"uidNumber":   {"1000"},
			"displayName": {"Alice Example"},
			"mail":        {"alice@example.com"},
		},
	}
}

// newTestRouter builds a router with session support and the auth routes,
// backed by an in-memory store and the given directory session.
func newTestRouter(t *testing.T, dir core.DirectorySession) *gin.Engine {
	t.Helper()
	return newTestRouterWithBase(t, dir, testBaseURL)
}

func newTestRouterWithBase(t *testing.T, dir core.DirectorySession, baseURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)

	recorder := metrics.NewNoopMetrics()
	reconciler := services.NewReconcilerService(db, recorder)
	audit := services.NewAuditService(db, false, 0, 0)
	accounts := cache.NewMemoryCache[models.Account]()
	authService := services.NewAuthService(
		dir,
		reconciler,
		identity.Options{UsernameField: "uid"},
		accounts,
		5*time.Minute,
		audit,
		recorder,
	)

	h := NewAuthHandler(authService, baseURL)

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret"))))
	r.POST("/auth/ldap", h.Login)
	protected := r.Group("")
	protected.Use(middleware.RequireAuth(), middleware.RequireAccount(authService))
	{
		protected.GET("/profile", h.Profile)
		protected.POST("/logout", h.Logout)
	}
	return r
}

func postLogin(r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/ldap", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_MissingCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)
	// No Authenticate expectation: incomplete submissions must never
	// reach the directory.
	r := newTestRouter(t, dir)

	w := postLogin(r, url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postLogin(r, url.Values{"password": {"password123"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)
	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "password123").
		Return(aliceDirectoryEntry(), nil)
	r := newTestRouter(t, dir)

	w := postLogin(r, url.Values{
		"username": {"alice"},
		"password": {"password123"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testBaseURL+"/", w.Header().Get("Location"))
	assert.NotEmpty(t, w.Result().Cookies())
}

func TestLogin_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)
	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "wrong").
		Return(nil, services.ErrAuthenticationFailed)
	r := newTestRouter(t, dir)

	w := postLogin(r, url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testBaseURL+"/?error=auth_failed", w.Header().Get("Location"))
}

func TestLogin_UnsafeRedirectIsIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)
	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "password123").
		Return(aliceDirectoryEntry(), nil)
	r := newTestRouter(t, dir)

	w := postLogin(r, url.Values{
		"username": {"alice"},
		"password": {"password123"},
		"redirect": {"http://evil.com/phishing"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testBaseURL+"/", w.Header().Get("Location"))
}

func TestLogin_SafeRedirectIsFollowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)
	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "password123").
		Return(aliceDirectoryEntry(), nil)
	r := newTestRouter(t, dir)

	w := postLogin(r, url.Values{
		"username": {"alice"},
		"password": {"password123"},
		"redirect": {"/profile"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile", w.Header().Get("Location"))
}

func TestProfile_RequiresLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)
	r := newTestRouter(t, dir)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfile_AfterLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)
	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "password123").
		Return(aliceDirectoryEntry(), nil)
	r := newTestRouter(t, dir)

	login := postLogin(r, url.Values{
		"username": {"alice"},
		"password": {"password123"},
	})
	require.Equal(t, http.StatusFound, login.Code)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "LDAP-1000", body["external_id"])
	assert.Equal(t, "alice", body["username"])

	profile, ok := body["profile"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ldap", profile["provider"])
	assert.Equal(t, "Alice Example", profile["displayName"])
}

func TestLogout_ClearsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)
	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", "password123").
		Return(aliceDirectoryEntry(), nil)
	r := newTestRouter(t, dir)

	login := postLogin(r, url.Values{
		"username": {"alice"},
		"password": {"password123"},
	})
	require.Equal(t, http.StatusFound, login.Code)

	logout := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	r.ServeHTTP(logout, req)
	require.Equal(t, http.StatusFound, logout.Code)
	assert.Equal(t, testBaseURL+"/", logout.Header().Get("Location"))

	// The cleared session must no longer grant access
	w := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	for _, c := range logout.Result().Cookies() {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_RedirectsToConfiguredBaseURL(t *testing.T) {
	// Subpath deployments must land on the configured base URL, not
	// the server root.
	const baseURL = "http://pad.example.com/notes"

	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectorySession(ctrl)
	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", gomock.Any()).
		Return(aliceDirectoryEntry(), nil)
	dir.EXPECT().
		Authenticate(gomock.Any(), "alice", gomock.Any()).
		Return(nil, services.ErrAuthenticationFailed)
	r := newTestRouterWithBase(t, dir, baseURL)

	w := postLogin(r, url.Values{
		"username": {"alice"},
		"password": {"password123"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, baseURL+"/", w.Header().Get("Location"))

	w = postLogin(r, url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, baseURL+"/?error=auth_failed", w.Header().Get("Location"))
}
