package handlers

import (
	"context"
	"net/http"

	"github.com/upb/auth-service/middleware"
	"github.com/upb/auth-service/models"
	"github.com/upb/auth-service/services"
	"github.com/upb/auth-service/utils"
	"go.uber.org/zap"
)

// AuthenticationService defines the registration and login operations
type AuthenticationService interface {
	Register(ctx context.Context, input services.RegisterInput) (*models.PublicUser, error)
	Login(ctx context.Context, input services.LoginInput) (*services.LoginResult, error)
}

// RegisterResponse is the body of a successful registration
type RegisterResponse struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
}

// LoginResponse is the body of a successful login
type LoginResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	service AuthenticationService
	logger  *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthenticationService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// HandleRegister handles POST /api/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		HandleDecodeError(w, err, h.logger)
		return
	}

	user, err := h.service.Register(r.Context(), input)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteCreated(w, RegisterResponse{
		Message: "User registered successfully",
		User:    *user,
	}); err != nil {
		h.logger.Error("failed to write register response", zap.Error(err))
	}
}

// HandleLogin handles POST /api/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		HandleDecodeError(w, err, h.logger)
		return
	}

	result, err := h.service.Login(r.Context(), input)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, LoginResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    result.User,
	}); err != nil {
		h.logger.Error("failed to write login response", zap.Error(err))
	}
}

// HandleLogout handles POST /api/logout.
// Tokens are stateless; the client discards its copy.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	h.logger.Info("user logged out",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.Int64("user_id", claims.UserID))

	_ = utils.WriteOK(w, utils.MessageResponse{Message: "Logout successful"})
}
