// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrMissingToken = errors.New("missing session token")
	ErrInvalidToken = errors.New("invalid session token")
)

// SessionCookie is the cookie checked when no Authorization header is sent
const SessionCookie = "session"

// SessionProvider resolves the user behind a request.
// It returns an error wrapping ErrUnauthorized when there is no valid session.
type SessionProvider interface {
	UserID(r *http.Request) (string, error)
}

// JWTSessions validates HS256 session tokens whose subject is the user ID.
type JWTSessions struct {
	secret []byte
	issuer string
}

func NewJWTSessions(secret, issuer string) (*JWTSessions, error) {
	if secret == "" {
		return nil, errors.New("session secret required")
	}
	return &JWTSessions{secret: []byte(secret), issuer: issuer}, nil
}

// UserID reads the bearer token (or session cookie) and returns its subject
func (s *JWTSessions) UserID(r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken)
	}
	return s.Validate(token)
}

// Validate checks signature, expiry, and issuer and returns the subject
func (s *JWTSessions) Validate(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w: %v", ErrUnauthorized, ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: %w: missing subject", ErrUnauthorized, ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Issue signs a session token for userID valid for ttl
func (s *JWTSessions) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// bearerToken extracts the token from the Authorization header or session cookie
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
