package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gchat-cloud/gchat-server/internal/domain"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// Tokens mints and validates the JWT bearer tokens used by both the HTTP
// API and the websocket upgrade gate.
type Tokens struct {
	key []byte
}

// NewTokens creates a Tokens helper signing with the given secret.
func NewTokens(key string) *Tokens {
	return &Tokens{key: []byte(key)}
}

// Generate creates a signed HS256 token whose subject is the user id.
func (t *Tokens) Generate(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.key)
}

// Resolve parses and validates a token string and returns the user id it was
// issued for. Expired, malformed, or foreign-signed tokens all map to
// domain.ErrInvalidCredentials.
func (t *Tokens) Resolve(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			return t.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, domain.ErrInvalidCredentials
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject %q", domain.ErrInvalidCredentials, claims.Subject)
	}
	return userID, nil
}
