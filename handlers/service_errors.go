package handlers

import (
	"errors"
	"net/http"

	"github.com/upb/auth-service/services"
	"github.com/upb/auth-service/utils"
	"go.uber.org/zap"
)

const msgInvalidRequestBody = "Invalid request body"

// HandleServiceError maps domain errors to HTTP responses.
// Internal and unknown errors are logged with their cause and answered
// with a generic message.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var domainErr *services.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error("unhandled error type", zap.Error(err))
		writeResponse(w, logger, func() error {
			return utils.WriteInternalServerError(w, services.MsgInternalServerError)
		})
		return
	}

	message := domainErr.Message
	details := domainErr.Details

	switch domainErr.Type {
	case services.ErrorTypeValidation:
		writeResponse(w, logger, func() error { return utils.WriteBadRequest(w, message, details) })

	case services.ErrorTypeConflict:
		// Existing clients expect 400 for duplicate registrations.
		writeResponse(w, logger, func() error {
			return utils.WriteErrorCode(w, http.StatusBadRequest, "conflict", message, details)
		})

	case services.ErrorTypeInvalidCredentials:
		writeResponse(w, logger, func() error {
			return utils.WriteErrorCode(w, http.StatusUnauthorized, "invalid_credentials", message, nil)
		})

	case services.ErrorTypeUnauthorized:
		writeResponse(w, logger, func() error { return utils.WriteUnauthorized(w, message) })

	case services.ErrorTypeForbidden:
		writeResponse(w, logger, func() error { return utils.WriteForbidden(w, message) })

	case services.ErrorTypeNotFound:
		writeResponse(w, logger, func() error { return utils.WriteNotFound(w, message) })

	default:
		logger.Error("internal server error",
			zap.String("error_type", string(domainErr.Type)),
			zap.Error(err))
		writeResponse(w, logger, func() error {
			return utils.WriteInternalServerError(w, services.MsgInternalServerError)
		})
	}

	logger.Debug("handled service error",
		zap.String("type", string(domainErr.Type)),
		zap.String("message", domainErr.Message))
}

// HandleDecodeError answers a request whose JSON body could not be read
func HandleDecodeError(w http.ResponseWriter, err error, logger *zap.Logger) {
	logger.Debug("invalid request body", zap.Error(err))
	writeResponse(w, logger, func() error { return utils.WriteBadRequest(w, msgInvalidRequestBody, nil) })
}

func writeResponse(w http.ResponseWriter, logger *zap.Logger, write func() error) {
	if err := write(); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}
