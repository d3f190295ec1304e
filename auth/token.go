package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the absolute lifetime of a session token
const DefaultTokenTTL = 24 * time.Hour

var (
	// ErrTokenMalformed is returned when the token cannot be parsed
	ErrTokenMalformed = errors.New("malformed token")

	// ErrInvalidSignature is returned when the signature does not match the secret
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrTokenExpired is returned when the token is past its expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrSecretRequired is returned when no signing secret is configured
	ErrSecretRequired = errors.New("token signing secret is required")
)

// TokenConfig holds configuration for TokenService
type TokenConfig struct {
	// Secret is the HMAC signing key
	Secret []byte

	// Issuer is set as the iss claim and enforced on verify when non-empty
	Issuer string

	// TTL defaults to DefaultTokenTTL when zero
	TTL time.Duration

	// Now defaults to time.Now
	Now func() time.Time
}

// TokenService issues and verifies HS256 session tokens.
// It holds no mutable state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenService creates a token service from cfg
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrSecretRequired
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(cfg.Now),
		// exp has second precision; a token is valid through its expiry second
		jwt.WithLeeway(time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &TokenService{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    cfg.Now,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Issue signs a token for identity and returns it with its expiry
func (s *TokenService) Issue(identity Identity) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.UserID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		UserID:   identity.UserID,
		Username: identity.Username,
		Email:    identity.Email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return token, expiresAt, nil
}

// Verify checks the signature and expiry of tokenString and returns its claims.
// Errors wrap ErrTokenMalformed, ErrInvalidSignature or ErrTokenExpired.
func (s *TokenService) Verify(tokenString string) (*ParsedClaims, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing id claim", ErrTokenMalformed)
	}

	return parseClaims(claims), nil
}

// classify maps jwt parser errors onto the service's error kinds.
// The parser verifies the signature before claims, so an expired token
// with a bad signature reports ErrInvalidSignature.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
