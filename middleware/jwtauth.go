package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/caasmo/actiondispatch/core"
	"github.com/caasmo/actiondispatch/jwt"
)

// ErrUnauthorized is returned when the request carries no valid bearer
// token. The chain stops at the middleware.
var ErrUnauthorized = errors.New("unauthorized")

// AuthSecret is the HMAC secret jwtauth verifies tokens with. It is bound
// in the container under its type key.
type AuthSecret []byte

type claimsKey struct{}

// ClaimsFromContext returns the claims jwtauth attached to the request.
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*jwt.Claims)
	return c, ok
}

// JWTAuth requires an "Authorization: Bearer <token>" header signed with
// the configured secret.
type JWTAuth struct {
	secret []byte
	logger *slog.Logger
}

func NewJWTAuth(secret AuthSecret, logger *slog.Logger) (*JWTAuth, error) {
	if len(secret) < jwt.MinSecretLength {
		return nil, fmt.Errorf("jwtauth: %w: need at least %d bytes", jwt.ErrInvalidSecretLength, jwt.MinSecretLength)
	}
	return &JWTAuth{secret: secret, logger: logger}, nil
}

func (m *JWTAuth) Handle(r *http.Request, next core.Next) (core.Response, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}

	claims, err := jwt.Parse(token, m.secret)
	if err != nil {
		m.logger.Debug("jwtauth: token rejected", "path", r.URL.Path, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	return next(r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
}
