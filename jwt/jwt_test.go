package jwt

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test_secret_32_bytes_long_xxxxxx")

func TestCreateAndParseValidToken(t *testing.T) {
	tokenString, expiry, err := Create("user123", []string{"admin"}, testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if time.Until(expiry) <= 0 {
		t.Errorf("expiry %v is not in the future", expiry)
	}

	claims, err := Parse(tokenString, testSecret)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Subject != "user123" {
		t.Errorf("expected Subject %q, got %q", "user123", claims.Subject)
	}
	if !reflect.DeepEqual(claims.Scopes, []string{"admin"}) {
		t.Errorf("expected scopes [admin], got %v", claims.Scopes)
	}
}

func TestParseInvalidToken(t *testing.T) {
	testCases := []struct {
		name        string
		tokenString string
		secret      []byte
		wantError   error
	}{
		{
			name:        "expired token",
			tokenString: generateToken(t, -15*time.Minute),
			secret:      testSecret,
			wantError:   ErrTokenExpired,
		},
		{
			name:        "invalid signature",
			tokenString: generateToken(t, 15*time.Minute),
			secret:      []byte("wrong_secret"),
			wantError:   ErrInvalidToken,
		},
		{
			name:        "invalid signing method",
			tokenString: generateHS384Token(t),
			secret:      testSecret,
			wantError:   ErrInvalidSigningMethod,
		},
		{
			name:        "malformed token",
			tokenString: "malformed.token.string",
			secret:      testSecret,
			wantError:   ErrInvalidToken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.tokenString, tc.secret)
			if !errors.Is(err, tc.wantError) {
				t.Errorf("Parse() error = %v, want %v", err, tc.wantError)
			}
		})
	}
}

func TestCreateWithInvalidSecret(t *testing.T) {
	for _, secret := range [][]byte{nil, []byte("short")} {
		if _, _, err := Create("user123", nil, secret, 15*time.Minute); !errors.Is(err, ErrInvalidSecretLength) {
			t.Errorf("Create() with %d byte secret error = %v, want ErrInvalidSecretLength", len(secret), err)
		}
	}
}

func generateToken(t *testing.T, d time.Duration) string {
	t.Helper()
	token, _, err := Create("testuser", nil, testSecret, d)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func generateHS384Token(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "testuser",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	})
	tokenString, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tokenString
}
