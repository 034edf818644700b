// Package auth verifies the identity tokens that protect the API.
//
// Authentication itself is delegated: users sign in with the external
// identity provider (Google OAuth), the server mints a signed JWT carrying
// the identity claims, and every subsequent request presents that token as
// a Bearer header or an HttpOnly cookie. The server verifies the signature
// locally — no provider round-trip per request.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified claim set handlers work with. UID is the
// provider-assigned subject; the profile claims ride along so registration
// can be completed without another provider call.
type Identity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// TokenService signs and verifies identity tokens with an HMAC secret.
// The same secret is used for both operations; rotate it by restarting with
// a new JWT_SECRET (outstanding tokens become invalid, which is the point).
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims (sub, exp, iat, iss) and adds the
// profile claims. "sub" carries the identity-provider uid.
type claims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

const issuer = "bazaar"

// Generate creates a signed token for the identity with the default
// 24 hour lifetime.
func (s *TokenService) Generate(id Identity) (string, error) {
	return s.GenerateWithDuration(id, 24*time.Hour)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used by tests to exercise the expiry path.
func (s *TokenService) GenerateWithDuration(id Identity, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string, returning the embedded
// identity if it checks out.
//
// The jwt library enforces: valid HS256 signature, unexpired, issuer match.
// Pinning the algorithm with WithValidMethods blocks algorithm-confusion
// tokens ("alg":"none" and friends).
func (s *TokenService) Validate(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return &Identity{
		UID:     c.Subject,
		Email:   c.Email,
		Name:    c.Name,
		Picture: c.Picture,
	}, nil
}
