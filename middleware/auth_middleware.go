package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/upb/auth-service/internal/observability"
	"github.com/upb/auth-service/services"
	"github.com/upb/auth-service/utils"
	"go.uber.org/zap"
)

// TokenValidator defines the interface for validating session tokens
type TokenValidator interface {
	// ValidateToken verifies a token and returns its claims
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	validator TokenValidator
	metrics   observability.Metrics
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. metrics may be nil.
func NewAuthMiddleware(validator TokenValidator, metrics observability.Metrics, logger *zap.Logger) *AuthMiddleware {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &AuthMiddleware{
		validator: validator,
		metrics:   metrics,
		logger:    logger,
	}
}

// RequireAuth admits requests carrying a valid bearer token.
// A missing or malformed Authorization header is 401; a token that fails
// verification is 403.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token, ok := extractBearerToken(r.Header.Get("Authorization"))
		if !ok {
			m.record(ctx, observability.OutcomeMissingToken)
			m.logger.Warn("missing token",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, services.MsgAccessTokenRequired)
			return
		}

		claims, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.record(ctx, observability.OutcomeInvalidToken)
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			_ = utils.WriteForbidden(w, services.MsgInvalidOrExpiredToken)
			return
		}

		m.record(ctx, observability.OutcomeAdmitted)
		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.Int64("user_id", claims.UserID),
			zap.String("username", claims.Username))

		next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
	})
}

func (m *AuthMiddleware) record(ctx context.Context, outcome string) {
	m.metrics.RecordAuthEvent(ctx, observability.EventLabels{Operation: "gate", Outcome: outcome})
}

// extractBearerToken accepts exactly "<scheme> <token>" with a
// case-insensitive Bearer scheme and a non-empty token
func extractBearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
