package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, userID uint, exp time.Time) string {
	t.Helper()

	claims := &Claims{
		UserID:    userID,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return token
}

func TestInspector_Claims(t *testing.T) {
	token := mintToken(t, 42, time.Now().Add(time.Hour))

	claims, err := NewInspector().Claims(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "access", claims.TokenType)
}

func TestInspector_ClaimsMalformed(t *testing.T) {
	_, err := NewInspector().Claims("opaque-token")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestInspector_Usable(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	inspector := NewInspector().WithClock(func() time.Time { return now })

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid jwt", mintToken(t, 1, now.Add(time.Hour)), true},
		{"expired jwt", mintToken(t, 1, now.Add(-time.Hour)), false},
		{"opaque token", "opaque-session-token", true},
		{"empty token", "", false},
		{"blank token", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inspector.Usable(tt.token))
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader(BearerHeader("abc")))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer "))
}
