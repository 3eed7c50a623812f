package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Validator validates HMAC-signed service tokens.
type HS256Validator struct {
	key []byte
}

// NewHS256Validator builds a validator around a shared signing key.
func NewHS256Validator(signingKey string) (*HS256Validator, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("signing key is required")
	}
	return &HS256Validator{key: []byte(signingKey)}, nil
}

// ValidateToken parses and verifies the token, requiring the HS256 method and
// an unexpired registered claim set. The subject claim names the caller.
func (v *HS256Validator) ValidateToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("token claims are invalid")
	}

	return &Claims{Caller: claims.Subject}, nil
}
