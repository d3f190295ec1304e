package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the set of user fields embedded in a session token
type Identity struct {
	UserID   int64
	Username string
	Email    string
}

// Claims represents the JWT payload of a session token.
// The identity fields keep the wire names id, username and email.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ParsedClaims represents verified claims with typed timestamps
type ParsedClaims struct {
	UserID    int64
	Username  string
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity returns the identity carried by the claims
func (c *ParsedClaims) Identity() Identity {
	return Identity{
		UserID:   c.UserID,
		Username: c.Username,
		Email:    c.Email,
	}
}

func parseClaims(claims *Claims) *ParsedClaims {
	parsed := &ParsedClaims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		TokenID:  claims.ID,
	}
	if claims.IssuedAt != nil {
		parsed.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		parsed.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return parsed
}
