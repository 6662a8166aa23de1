package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authTestRouter(a *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(a.Gin())
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"trader_id": TraderID(c)})
	})
	return r
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	a := NewAuthMiddleware(&AuthConfig{
		SecretKey:   "test-secret",
		Issuer:      "test",
		TokenHeader: "Authorization",
		TokenPrefix: "Bearer ",
	})
	r := authTestRouter(a)

	token, err := a.IssueToken("TRADER-42", "trader", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TRADER-42")
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := authTestRouter(NewAuthMiddleware(nil))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	r := authTestRouter(NewAuthMiddleware(nil))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	issuer := NewAuthMiddleware(&AuthConfig{
		SecretKey: "secret-a", Issuer: "test",
		TokenHeader: "Authorization", TokenPrefix: "Bearer ",
	})
	verifier := NewAuthMiddleware(&AuthConfig{
		SecretKey: "secret-b", Issuer: "test",
		TokenHeader: "Authorization", TokenPrefix: "Bearer ",
	})
	r := authTestRouter(verifier)

	token, err := issuer.IssueToken("TRADER-42", "trader", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	a := NewAuthMiddleware(&AuthConfig{
		SecretKey: "test-secret", Issuer: "test",
		TokenHeader: "Authorization", TokenPrefix: "Bearer ",
	})
	r := authTestRouter(a)

	token, err := a.IssueToken("TRADER-42", "trader", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTraderID_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, TraderID(c))
}
