package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		Email: "admin@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestJWTVerifier_Valid(t *testing.T) {
	v := NewJWTVerifier("test-secret", "authenticated")

	admin, err := v.Verify(context.Background(), signToken(t, "test-secret", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-1", admin.ID)
	assert.Equal(t, "admin@example.com", admin.Email)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	noSubject := validClaims()
	noSubject.Subject = ""

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "wrong secret", token: signToken(t, "other-secret", validClaims())},
		{name: "expired", token: signToken(t, "test-secret", expired)},
		{name: "no expiry", token: signToken(t, "test-secret", noExpiry)},
		{name: "no subject", token: signToken(t, "test-secret", noSubject)},
		{name: "wrong audience", token: signToken(t, "test-secret", wrongAudience)},
		{name: "alg none", token: unsigned},
	}

	v := NewJWTVerifier("test-secret", "authenticated")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidSession)
		})
	}
}
