package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OperatorClaims are the claims the console reads from an operator's backend
// token. The backend signs and verifies the token; the console only reads who
// is operating the terminal and when the session ends.
type OperatorClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Operator returns the best available operator identifier.
func (c *OperatorClaims) Operator() string {
	switch {
	case c.Subject != "":
		return c.Subject
	case c.Email != "":
		return c.Email
	}
	return c.Name
}

var ErrTokenExpired = errors.New("token has expired")

// ParseOperatorToken decodes tokenString without verifying its signature and
// rejects tokens whose exp claim is in the past relative to now.
func ParseOperatorToken(tokenString string, now time.Time) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
