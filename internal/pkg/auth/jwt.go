// internal/pkg/auth/jwt.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token is not a parseable JWT
var ErrMalformedToken = errors.New("token is not a JWT")

// Claims represents the claims the storefront API puts in its tokens
type Claims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// Inspector reads token claims without verifying the signature. The client
// never holds the signing key; the API remains the only judge of validity.
type Inspector struct {
	now    func() time.Time
	leeway time.Duration
}

// NewInspector creates a token inspector using the wall clock
func NewInspector() *Inspector {
	return &Inspector{
		now:    time.Now,
		leeway: 5 * time.Second,
	}
}

// WithClock returns a copy of the inspector using now as the clock
func (i *Inspector) WithClock(now func() time.Time) *Inspector {
	return &Inspector{now: now, leeway: i.leeway}
}

// Claims parses the token payload
func (i *Inspector) Claims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

// Expired reports whether a JWT carries an exp claim that has passed.
// Opaque tokens and tokens without exp are never considered expired.
func (i *Inspector) Expired(tokenString string) bool {
	claims, err := i.Claims(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !i.now().Before(claims.ExpiresAt.Time.Add(i.leeway))
}

// Usable reports whether a stored token can still be presented to the API
func (i *Inspector) Usable(tokenString string) bool {
	return strings.TrimSpace(tokenString) != "" && !i.Expired(tokenString)
}

// ExtractTokenFromHeader extracts JWT token from Authorization header
func ExtractTokenFromHeader(authHeader string) string {
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}

// BearerHeader formats an Authorization header value
func BearerHeader(token string) string {
	return "Bearer " + token
}
