package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens are HS256 JWTs: sub carries the uid, name the display name. Every
// client of one deployment shares the signing secret with the server.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// NewTokenIssuer creates an issuer. A zero ttl means tokens never expire,
// for long-lived device credentials.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Mint signs a token for the given principal.
func (i *TokenIssuer) Mint(p Principal) (string, error) {
	c := claims{
		Name: p.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  p.UID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if i.ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(i.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the principal it carries.
func (i *TokenIssuer) Verify(tokenString string) (Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}
	if c.Subject == "" {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UID: c.Subject, DisplayName: c.Name}, nil
}
