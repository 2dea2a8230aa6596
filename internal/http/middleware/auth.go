package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/Arwin-j/rouTU/internal/auth"
)

const (
	stdClaimsKey = "stdClaims"
	rawClaimsKey = "rawClaims"
)

// TokenVerifier is the slice of the auth verifier this middleware needs.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*gojwt.Claims, map[string]any, error)
}

// Auth validates the Authorization header and attaches claims.
type Auth struct {
	Verifier TokenVerifier
}

// ValidateJWT ensures the request carries a valid bearer token. Any
// verification failure aborts the request with an unauthorized envelope;
// no further processing happens.
func (m *Auth) ValidateJWT(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authorization header required."})
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Bearer token required."})
		return
	}

	claims, payload, err := m.Verifier.Verify(c.Request.Context(), parts[1])
	if err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": authErr.Code, "error_description": authErr.Description})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Invalid access token."})
		return
	}

	c.Set(stdClaimsKey, claims)
	c.Set(rawClaimsKey, payload)
	c.Next()
}

// GetStdClaims returns the standard JWT claims set.
func GetStdClaims(c *gin.Context) (*gojwt.Claims, bool) {
	value, ok := c.Get(stdClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*gojwt.Claims)
	return claims, ok
}

// GetRawClaims returns the full decoded token payload.
func GetRawClaims(c *gin.Context) (map[string]any, bool) {
	value, ok := c.Get(rawClaimsKey)
	if !ok {
		return nil, false
	}
	payload, ok := value.(map[string]any)
	return payload, ok
}
