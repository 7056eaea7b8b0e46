package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// LegacyClaims are the claims of pre-OIDC HMAC tokens. Still accepted so
// existing sessions survive the migration.
type LegacyClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func ValidateLegacyToken(tokenString, secret string) (*LegacyClaims, error) {
	keyFn := func(*jwt.Token) (any, error) { return []byte(secret), nil }

	token, err := jwt.ParseWithClaims(tokenString, &LegacyClaims{}, keyFn,
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	)
	if err != nil {
		return nil, fmt.Errorf("parse legacy token: %w", err)
	}

	claims, ok := token.Claims.(*LegacyClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
