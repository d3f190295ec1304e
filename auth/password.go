package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/upb/auth-service/internal/observability"
	"golang.org/x/crypto/bcrypt"
)

const (
	// PasswordCost is the fixed bcrypt work factor
	PasswordCost = 10

	// maxPasswordBytes is the bcrypt input limit; longer inputs are truncated
	maxPasswordBytes = 72
)

// PasswordHasher hashes and verifies passwords with bcrypt at a fixed cost
type PasswordHasher struct {
	cost    int
	metrics observability.Metrics
}

// NewPasswordHasher creates a hasher using PasswordCost.
// metrics may be nil.
func NewPasswordHasher(metrics observability.Metrics) *PasswordHasher {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &PasswordHasher{
		cost:    PasswordCost,
		metrics: metrics,
	}
}

// Hash returns a salted bcrypt digest embedding the cost marker.
// It only fails when the system entropy source does.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	start := time.Now()
	digest, err := bcrypt.GenerateFromPassword(truncate(plaintext), h.cost)
	h.metrics.RecordHashDuration(context.Background(), "hash", time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest.
// Malformed digests never match.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(digest), truncate(plaintext))
	h.metrics.RecordHashDuration(context.Background(), "verify", time.Since(start).Seconds())
	return err == nil
}

func truncate(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
