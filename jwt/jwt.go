// Package jwt issues and verifies the HS256 bearer tokens checked by the
// jwtauth middleware.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest accepted HMAC secret.
const MinSecretLength = 32

var (
	ErrTokenExpired         = errors.New("token expired")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidSigningMethod = errors.New("unexpected signing method")
	ErrInvalidSecretLength  = errors.New("invalid secret length")
)

// Claims are the registered claims plus the scopes granted to the subject.
type Claims struct {
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// Parse verifies tokenString with secret and returns its claims. Only HS256
// is accepted.
func Parse(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			// wrapped by jwt.ErrTokenUnverifiable
			return nil, ErrInvalidSigningMethod
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, ErrInvalidSigningMethod) {
			return nil, ErrInvalidSigningMethod
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Create signs a token for subject valid for tokenDuration.
func Create(subject string, scopes []string, secret []byte, tokenDuration time.Duration) (string, time.Time, error) {
	if len(secret) < MinSecretLength {
		return "", time.Time{}, ErrInvalidSecretLength
	}

	now := time.Now()
	expirationTime := now.Add(tokenDuration)
	claims := &Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expirationTime, nil
}
