package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-enrich/pkg/logging"
)

// failureText is the client-facing wording for one class of operation.
type failureText struct {
	// prefix is prepended to the upstream error for 500 responses.
	prefix string
	// timeout is the detail for 504 responses.
	timeout string
}

var (
	databaseFailure       = failureText{prefix: "Database error: ", timeout: "Request timed out"}
	generateTableFailure  = failureText{prefix: "Error generating description: ", timeout: "LLM request timed out. Please try again."}
	generateColumnFailure = failureText{prefix: "Error generating column descriptions: ", timeout: "LLM request timed out. Please try again."}
	updateTableFailure    = failureText{prefix: "Error updating description: ", timeout: "Update request timed out"}
	updateColumnFailure   = failureText{prefix: "Error updating column descriptions: ", timeout: "Update request timed out"}
	loginFailure          = failureText{prefix: "Login failed: ", timeout: "Request timed out"}
)

// writeServiceError maps a service error to a status code and JSON error body.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, text failureText) {
	status, code, detail := classifyServiceError(err, text)

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.Int("status", status),
			zap.String("error", logging.SanitizeError(err)))
	}

	if writeErr := ErrorResponse(w, status, code, detail); writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}

func classifyServiceError(err error, text failureText) (int, string, string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "Invalid credentials"
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized", "Not authenticated"
	case errors.Is(err, apperrors.ErrInvalidIdentifier):
		return http.StatusBadRequest, "invalid_identifier", err.Error()
	case errors.Is(err, apperrors.ErrEmptyDescription):
		return http.StatusBadRequest, "empty_description", err.Error()
	case errors.Is(err, apperrors.ErrWeakDescription):
		return http.StatusBadRequest, "weak_description", err.Error()
	case errors.Is(err, apperrors.ErrUnknownColumn):
		return http.StatusBadRequest, "unknown_column", err.Error()
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, apperrors.ErrDuplicateColumn):
		return http.StatusBadGateway, "invalid_model_response", text.prefix + err.Error()
	case errors.Is(err, apperrors.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, "timeout", text.timeout
	default:
		return http.StatusInternalServerError, "upstream_error", text.prefix + logging.SanitizeError(err)
	}
}
