package services

import (
	"context"
	"errors"
	"time"

	"github.com/upb/auth-service/auth"
	"github.com/upb/auth-service/internal/observability"
	"github.com/upb/auth-service/models"
	"github.com/upb/auth-service/repositories"
	"github.com/upb/auth-service/utils"
	"go.uber.org/zap"
)

// Operation names used in logs and metrics
const (
	OpRegister  = "register"
	OpLogin     = "login"
	OpProfile   = "profile"
	OpListUsers = "list_users"
)

// PasswordHasher hashes and verifies plaintext passwords
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer mints session tokens for an identity
type TokenIssuer interface {
	Issue(identity auth.Identity) (string, time.Time, error)
}

// RegisterInput is the registration request
type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput is the login request
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a successful login
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.PublicUser
}

// AuthService registers users, checks credentials and issues session tokens
type AuthService struct {
	users   repositories.UserRepository
	txMgr   repositories.TransactionManager
	hasher  PasswordHasher
	tokens  TokenIssuer
	metrics observability.Metrics
	logger  *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repositories.UserRepository,
	txMgr repositories.TransactionManager,
	hasher PasswordHasher,
	tokens TokenIssuer,
	metrics observability.Metrics,
	logger *zap.Logger,
) *AuthService {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &AuthService{
		users:   users,
		txMgr:   txMgr,
		hasher:  hasher,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger,
	}
}

// Register creates a credential record and returns its public identity.
// The duplicate check and the insert share one transaction; the store's
// unique constraints still decide races the check cannot see.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.PublicUser, error) {
	logger := observability.ForRequest(ctx, s.logger).With(zap.String("operation", OpRegister))

	if err := utils.ValidateStruct(&input); err != nil {
		s.record(ctx, OpRegister, observability.OutcomeValidationFailed)
		return nil, validationError(registerMessage(err), err)
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.record(ctx, OpRegister, observability.OutcomeError)
		logger.Error("failed to hash password", zap.Error(err))
		return nil, WrapInternal(MsgInternalServerError, err)
	}

	user, err := WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) (*models.User, error) {
		users := s.users.WithTx(tx)

		_, err := users.FindByEmailOrUsername(ctx, input.Email, input.Username)
		switch {
		case err == nil:
			return nil, NewDomainError(ErrorTypeConflict, MsgUserExists, nil)
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, err
		}

		return users.Insert(ctx, input.Username, input.Email, digest)
	})
	if err != nil {
		if IsConflictError(err) || errors.Is(err, repositories.ErrUniqueViolation) {
			s.record(ctx, OpRegister, observability.OutcomeConflict)
			logger.Info("registration rejected, user exists", zap.String("username", input.Username))
			return nil, NewDomainError(ErrorTypeConflict, MsgUserExists, err)
		}
		s.record(ctx, OpRegister, observability.OutcomeError)
		logger.Error("failed to store user", zap.Error(err))
		return nil, WrapInternal(MsgInternalServerError, err)
	}

	s.record(ctx, OpRegister, observability.OutcomeSuccess)
	logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))

	public := user.Public()
	return &public, nil
}

// Login verifies credentials and issues a session token.
// An unknown email and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	logger := observability.ForRequest(ctx, s.logger).With(zap.String("operation", OpLogin))

	if err := utils.ValidateStruct(&input); err != nil {
		s.record(ctx, OpLogin, observability.OutcomeValidationFailed)
		return nil, validationError(MsgEmailPasswordRequired, err)
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.record(ctx, OpLogin, observability.OutcomeInvalidCredentials)
			logger.Info("login failed", zap.String("reason", "unknown email"))
			return nil, NewDomainError(ErrorTypeInvalidCredentials, MsgInvalidCredentials, nil)
		}
		s.record(ctx, OpLogin, observability.OutcomeError)
		logger.Error("failed to load user", zap.Error(err))
		return nil, WrapInternal(MsgInternalServerError, err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.record(ctx, OpLogin, observability.OutcomeInvalidCredentials)
		logger.Info("login failed", zap.String("reason", "password mismatch"), zap.Int64("user_id", user.ID))
		return nil, NewDomainError(ErrorTypeInvalidCredentials, MsgInvalidCredentials, nil)
	}

	token, expiresAt, err := s.tokens.Issue(auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		s.record(ctx, OpLogin, observability.OutcomeError)
		logger.Error("failed to issue token", zap.Error(err))
		return nil, WrapInternal(MsgInternalServerError, err)
	}

	s.record(ctx, OpLogin, observability.OutcomeSuccess)
	logger.Info("user logged in", zap.Int64("user_id", user.ID))

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Public(),
	}, nil
}

// Profile returns the stored profile of an authenticated user
func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.record(ctx, OpProfile, observability.OutcomeNotFound)
			return nil, NewDomainError(ErrorTypeNotFound, MsgUserNotFound, nil)
		}
		s.record(ctx, OpProfile, observability.OutcomeError)
		observability.ForRequest(ctx, s.logger).Error("failed to load profile",
			zap.Int64("user_id", userID), zap.Error(err))
		return nil, WrapInternal(MsgInternalServerError, err)
	}

	s.record(ctx, OpProfile, observability.OutcomeSuccess)
	profile := user.Profile()
	return &profile, nil
}

// ListUsers returns every profile ordered by id
func (s *AuthService) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		s.record(ctx, OpListUsers, observability.OutcomeError)
		observability.ForRequest(ctx, s.logger).Error("failed to list users", zap.Error(err))
		return nil, WrapInternal(MsgInternalServerError, err)
	}

	profiles := make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}

	s.record(ctx, OpListUsers, observability.OutcomeSuccess)
	return profiles, nil
}

func (s *AuthService) record(ctx context.Context, operation, outcome string) {
	s.metrics.RecordAuthEvent(ctx, observability.EventLabels{Operation: operation, Outcome: outcome})
}

// registerMessage picks the client message for a failed registration check.
// Missing fields win over a short password.
func registerMessage(err error) string {
	var vErr *utils.ValidationError
	if errors.As(err, &vErr) && !vErr.HasTag("required") && vErr.Tags["password"] == "min" {
		return MsgPasswordTooShort
	}
	return MsgAllFieldsRequired
}

func validationError(message string, err error) *DomainError {
	domainErr := NewDomainError(ErrorTypeValidation, message, err)
	if fields := utils.GetValidationFields(err); fields != nil {
		domainErr.WithDetail("fields", fields)
	}
	return domainErr
}
