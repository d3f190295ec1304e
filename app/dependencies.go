package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/auth-service/auth"
	"github.com/upb/auth-service/config"
	"github.com/upb/auth-service/handlers"
	"github.com/upb/auth-service/internal/observability"
	"github.com/upb/auth-service/middleware"
	"github.com/upb/auth-service/repositories"
	"github.com/upb/auth-service/repositories/memory"
	"github.com/upb/auth-service/repositories/postgres"
	"github.com/upb/auth-service/repositories/sqlite"
	"github.com/upb/auth-service/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.PrometheusMetrics

	// Storage
	Store     repositories.Store
	Users     repositories.UserRepository
	TxManager repositories.TransactionManager

	// Auth
	Hasher         *auth.PasswordHasher
	Tokens         *auth.TokenService
	AuthService    *services.AuthService
	AuthMiddleware *middleware.AuthMiddleware

	// HTTP
	AuthHandler   *handlers.AuthHandler
	UserHandler   *handlers.UserHandler
	HealthHandler *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewPrometheusMetrics(),
	}

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	if err := deps.initStore(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	deps.initServices()
	deps.initHandlers(cfg)

	logger.Info("all dependencies initialized successfully",
		zap.String("storage", deps.Store.Driver()),
		zap.String("environment", cfg.Environment))
	return deps, nil
}

// initAuth builds the hasher, the token service and the access gate
func (d *Dependencies) initAuth(cfg *config.Config) error {
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.JWTIssuer,
	})
	if err != nil {
		return err
	}

	d.Tokens = tokens
	d.Hasher = auth.NewPasswordHasher(d.Metrics)
	d.AuthMiddleware = middleware.NewAuthMiddleware(&tokenValidatorAdapter{tokens: tokens}, d.Metrics, d.Logger)
	return nil
}

// initStore opens the configured user store
func (d *Dependencies) initStore(ctx context.Context, cfg *config.Config) error {
	var store repositories.Store

	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.Storage.SQLitePath, d.Logger)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		store = s

	case config.DriverPostgres:
		factory, err := postgres.NewRepositoryFactory(ctx, cfg, d.Logger)
		if err != nil {
			return fmt.Errorf("failed to create repository factory: %w", err)
		}
		store = factory

	case config.DriverMemory:
		d.Logger.Warn("using in-memory storage, records are lost on restart")
		store = memory.NewStore()

	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	d.Store = store
	d.Users = store.NewRepositories().Users
	d.TxManager = store.GetTransactionManager()
	return nil
}

func (d *Dependencies) initServices() {
	d.AuthService = services.NewAuthService(d.Users, d.TxManager, d.Hasher, d.Tokens, d.Metrics, d.Logger)
}

func (d *Dependencies) initHandlers(cfg *config.Config) {
	d.AuthHandler = handlers.NewAuthHandler(d.AuthService, d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.AuthService, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.Store, handlers.StatusResponse{
		Version:     cfg.Version,
		Environment: cfg.Environment,
		Storage:     d.Store.Driver(),
	}, d.Logger)
}

// tokenValidatorAdapter adapts auth.TokenService to middleware.TokenValidator
type tokenValidatorAdapter struct {
	tokens *auth.TokenService
}

func (a *tokenValidatorAdapter) ValidateToken(_ context.Context, token string) (*middleware.Claims, error) {
	parsed, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return &middleware.Claims{
		UserID:    parsed.UserID,
		Username:  parsed.Username,
		Email:     parsed.Email,
		TokenID:   parsed.TokenID,
		IssuedAt:  parsed.IssuedAt,
		ExpiresAt: parsed.ExpiresAt,
	}, nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
		} else {
			d.Logger.Info("storage closed", zap.String("storage", d.Store.Driver()))
		}
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
