package auth

import (
	"context"
	"time"
)

// JWTService issues and validates the bearer tokens that guard the wallet API.
type JWTService interface {
	// GenerateToken creates a signed access token for subject, usually the
	// name of the operator or service the token is issued to.
	GenerateToken(ctx context.Context, subject string) (string, error)

	// ValidateToken validates the token string and returns its claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of an access token.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
