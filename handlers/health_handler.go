package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/auth-service/repositories"
	"github.com/upb/auth-service/utils"
	"go.uber.org/zap"
)

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// StatusResponse describes the running build
type StatusResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Storage     string `json:"storage"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	store  repositories.HealthChecker
	status StatusResponse
	now    func() time.Time
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. store may be nil.
func NewHealthHandler(store repositories.HealthChecker, status StatusResponse, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		status: status,
		now:    time.Now,
		logger: logger,
	}
}

// HandleHealth handles GET /healthz.
// Liveness only; it never touches storage.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]string{"status": "ok"})
}

// HandleReadiness handles GET /readyz
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	if h.store == nil {
		checks["storage"] = "not_initialized"
		ready = false
	} else if err := h.store.HealthCheck(ctx); err != nil {
		h.logger.Warn("storage health check failed", zap.Error(err))
		checks["storage"] = "unhealthy"
		ready = false
	} else {
		checks["storage"] = "healthy"
	}

	status := "ready"
	httpStatus := http.StatusOK
	if !ready {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	response := ReadinessResponse{
		Status:    status,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, response); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// HandleStatus handles GET /api/status
func (h *HealthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.status)
}
