package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-livestock-history/internal/ports/auth"
)

const testSecret = "super-secreto"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerify_LegacySpanishClaims(t *testing.T) {
	v := NewVerifier(testSecret)

	// el backend legado firmaba el id como número y los claims en español
	token := signToken(t, testSecret, jwt.MapClaims{
		"id":     float64(42),
		"correo": "finca@example.com",
		"rol":    "admin",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "finca@example.com", claims.Email)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestVerify_EnglishClaimFallbacksAndDefaultRole(t *testing.T) {
	v := NewVerifier(testSecret)

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "abc-1",
		"email":   "user@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "abc-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	// rol ausente o desconocido cae a user
	assert.Equal(t, auth.RoleUser, claims.Role)
}

func TestVerify_Rejections(t *testing.T) {
	v := NewVerifier(testSecret)
	ctx := context.Background()

	_, err := v.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(ctx, "no-es-un-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// firmado con otro secreto
	bad := signToken(t, "otro-secreto", jwt.MapClaims{"id": "1"})
	_, err = v.Verify(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// expirado
	expired := signToken(t, testSecret, jwt.MapClaims{
		"id":  "1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	_, err = v.Verify(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// sin id
	noID := signToken(t, testSecret, jwt.MapClaims{"correo": "x@example.com"})
	_, err = v.Verify(ctx, noID)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// verifier sin secreto
	_, err = NewVerifier("").Verify(ctx, bad)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
