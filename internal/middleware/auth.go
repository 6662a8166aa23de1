package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ContextKeyTraderID is the key for the authenticated trader in the
	// gin context.
	ContextKeyTraderID = "trader_id"
)

// TraderClaims represents the claims in a JWT token.
type TraderClaims struct {
	TraderID string `json:"trader_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthConfig holds configuration for JWT authentication.
type AuthConfig struct {
	SecretKey   string // JWT signing secret
	Issuer      string
	TokenHeader string // Header carrying the token
	TokenPrefix string // Prefix before the token (e.g. "Bearer ")
}

// DefaultAuthConfig returns default authentication configuration. The
// secret comes from JWT_SECRET when set.
func DefaultAuthConfig() *AuthConfig {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me-in-production"
	}
	return &AuthConfig{
		SecretKey:   secret,
		Issuer:      "thoth-trading",
		TokenHeader: "Authorization",
		TokenPrefix: "Bearer ",
	}
}

// AuthMiddleware validates JWT bearer tokens and puts the trader id into
// the request context.
type AuthMiddleware struct {
	config *AuthConfig
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(config *AuthConfig) *AuthMiddleware {
	if config == nil {
		config = DefaultAuthConfig()
	}
	return &AuthMiddleware{config: config}
}

// Gin returns the gin middleware handler.
func (a *AuthMiddleware) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(a.config.TokenHeader)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token := strings.TrimPrefix(header, a.config.TokenPrefix)

		claims, err := a.parseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextKeyTraderID, claims.TraderID)
		c.Next()
	}
}

func (a *AuthMiddleware) parseToken(tokenString string) (*TraderClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TraderClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.config.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*TraderClaims)
	if !ok || !token.Valid || claims.TraderID == "" {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// IssueToken mints a token for traderID; used by tooling and tests.
func (a *AuthMiddleware) IssueToken(traderID, role string, ttl time.Duration) (string, error) {
	claims := &TraderClaims{
		TraderID: traderID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.SecretKey))
}

// TraderID returns the authenticated trader from the gin context, or ""
// for unauthenticated requests.
func TraderID(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyTraderID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
