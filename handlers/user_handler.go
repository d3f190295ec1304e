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

// UserService defines the profile read operations
type UserService interface {
	Profile(ctx context.Context, userID int64) (*models.UserProfile, error)
	ListUsers(ctx context.Context) ([]models.UserProfile, error)
}

// ProfileResponse is the body of GET /api/profile
type ProfileResponse struct {
	User models.UserProfile `json:"user"`
}

// UsersResponse is the body of GET /api/users
type UsersResponse struct {
	Users []models.UserProfile `json:"users"`
}

// UserHandler serves profile reads for authenticated callers
type UserHandler struct {
	service UserService
	logger  *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// HandleProfile handles GET /api/profile
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.GetClaimsFromContext(ctx)
	if claims == nil {
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	profile, err := h.service.Profile(ctx, claims.UserID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, ProfileResponse{User: *profile}); err != nil {
		h.logger.Error("failed to write profile response", zap.Error(err))
	}
}

// HandleListUsers handles GET /api/users
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if users == nil {
		users = []models.UserProfile{}
	}

	if err := utils.WriteOK(w, UsersResponse{Users: users}); err != nil {
		h.logger.Error("failed to write users response", zap.Error(err))
	}
}
