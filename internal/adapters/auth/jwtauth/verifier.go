package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"farm-livestock-history/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("jwt verifier not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Verifier implementa auth.AuthVerifier validando JWT firmados con
// HS256, el esquema que usa la app móvil. Los claims vienen con los
// nombres legados en español: id, correo, rol.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || len(v.secret) == 0 {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return auth.Claims{}, ErrInvalidToken
	}

	userID := claimString(mc, "id")
	if userID == "" {
		userID = claimString(mc, "user_id")
	}
	if userID == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}

	email := claimString(mc, "correo")
	if email == "" {
		email = claimString(mc, "email")
	}

	return auth.Claims{
		UserID: userID,
		Email:  email,
		Role:   auth.ParseRole(claimString(mc, "rol")),
	}, nil
}

// claimString tolera ids numéricos: el backend legado firmaba el id
// como número y el nuevo como string.
func claimString(mc jwt.MapClaims, key string) string {
	switch v := mc[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}
