package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of an issued bearer token.
const TokenTTL = 7 * 24 * time.Hour

// Claims defines the custom claims for the JWT tokens.
type Claims struct {
	Username string   `json:"name"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed bearer token with its expiry.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// IssueToken signs a token for the identity. It never touches storage.
	IssueToken(identity Identity) (*IssuedToken, error)

	// ValidateToken checks signature, issuer, audience and expiry and returns the claims.
	ValidateToken(tokenString string) (*Claims, error)
}
