package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	// ErrMissingToken is returned before dispatch when no bearer token is configured.
	ErrMissingToken = errors.New("no API token configured (set API_TOKEN or --token)")
	// ErrTokenExpired is returned before dispatch when the token's exp claim has passed.
	ErrTokenExpired = errors.New("API token has expired, log in again")
)

// TokenSource supplies the bearer token for outgoing requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token, typically from configuration.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(t)), nil
}

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// BearerAuth sets "Authorization: Bearer <token>" on every request. Tokens that parse as JWTs
// are checked for expiry first; opaque tokens are sent as-is.
func BearerAuth(tokens TokenSource, next http.RoundTripper) http.RoundTripper {
	return bearerAuth(tokens, next, time.Now)
}

func bearerAuth(tokens TokenSource, next http.RoundTripper, now func() time.Time) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		token, err := tokens.Token(r.Context())
		if err != nil {
			return nil, err
		}
		if token == "" {
			return nil, ErrMissingToken
		}
		if expired(token, now()) {
			return nil, ErrTokenExpired
		}

		r = r.Clone(r.Context())
		r.Header.Set("Authorization", "Bearer "+token)
		return next.RoundTrip(r)
	})
}

// expired reports whether token is a JWT whose exp claim is before now.
// The signature is not verified; the backend does that.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	if _, ok := claims["exp"]; !ok {
		return false
	}
	return !claims.VerifyExpiresAt(now.Unix(), true)
}

// TokenSubject returns the sub claim of a JWT token, or "" for opaque tokens.
func TokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
