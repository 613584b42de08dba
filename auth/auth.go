// Package auth verifies bearer credentials and resolves them to a user id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stackedwins/config"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// Verifier turns a bearer credential into the id of the user it was issued to.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// NewVerifier picks the verification strategy named by cfg.Mode.
func NewVerifier(cfg config.AuthConfig, httpClient *http.Client) (Verifier, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case config.AuthModeJWT, "":
		return NewHS256Verifier(cfg.JWTSecret)
	case config.AuthModeFirebase:
		return NewFirebaseVerifier(httpClient, cfg.FirebaseProjectID, cfg.JWKSURL)
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

type hs256Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewHS256Verifier verifies tokens signed with a shared secret. The user id
// is read from the "id" claim, then "sub".
func NewHS256Verifier(secret string) (Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &hs256Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithLeeway(5*time.Second),
		),
	}, nil
}

func (v *hs256Verifier) Verify(_ context.Context, token string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", classify(err)
	}
	if id := stringClaim(claims, "id"); id != "" {
		return id, nil
	}
	if sub := stringClaim(claims, "sub"); sub != "" {
		return sub, nil
	}
	return "", fmt.Errorf("%w: no user id claim", ErrInvalidToken)
}

func classify(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}
