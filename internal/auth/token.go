// Package auth issues and verifies session tokens and decides whether an
// authenticated caller may read a resource owned by a given email.
package auth

import (
	"errors"
	"fmt"
	"time"

	"foodshare/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSignature covers malformed tokens, tokens signed with another
	// key or algorithm, and tokens without an expiry.
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
)

// TokenService signs identities into HS256 tokens. It keeps no state besides
// the secret, so tokens cannot be revoked server-side.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime given to every issued token.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs all of identity.Claims plus iat and exp. A non-empty
// identity.Email replaces the email claim; otherwise the claim is signed as
// given, whatever its type, or left out.
func (s *TokenService) Issue(identity models.Identity) (string, error) {
	const op = "auth.TokenService.Issue"

	now := s.now()
	claims := jwt.MapClaims{}
	for k, v := range identity.Claims {
		claims[k] = v
	}
	if identity.Email != "" {
		claims["email"] = identity.Email
	}
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Verify checks the signature and expiry and returns the decoded identity.
func (s *TokenService) Verify(tokenStr string) (*models.Identity, error) {
	const op = "auth.TokenService.Verify"

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrExpired)
		}
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidSignature, err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
	}

	email, hasEmail := claims["email"].(string)

	return &models.Identity{
		Email:    email,
		HasEmail: hasEmail,
		Claims:   claims,
	}, nil
}
