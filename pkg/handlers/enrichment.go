package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-enrich/pkg/audit"
	"github.com/ekaya-inc/ekaya-enrich/pkg/auth"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
	"github.com/ekaya-inc/ekaya-enrich/pkg/services"
)

// --- Request Types ---

// UpdateDescriptionRequest is the body of POST /api/update-description.
type UpdateDescriptionRequest struct {
	Description string `json:"description"`
}

// UpdateColumnDescriptionsRequest is the body of POST /api/update-column-descriptions.
type UpdateColumnDescriptionsRequest struct {
	ColumnDescriptions map[string]string `json:"column_descriptions"`
}

// --- Response Types ---

// ColumnMetadataResponse lists a table's columns with their descriptions.
type ColumnMetadataResponse struct {
	Columns []models.ColumnMetadata `json:"columns"`
}

// GenerateDescriptionResponse carries a drafted table description.
type GenerateDescriptionResponse struct {
	GeneratedDescription string `json:"generated_description"`
}

// GenerateColumnDescriptionsResponse carries drafted column descriptions.
type GenerateColumnDescriptionsResponse struct {
	Columns []models.GeneratedColumnDescription `json:"columns"`
}

// UpdateResponse acknowledges a saved description.
type UpdateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// EnrichmentHandler serves description read, draft and approve endpoints.
type EnrichmentHandler struct {
	enrichmentService services.EnrichmentService
	auditor           *audit.SecurityAuditor
	logger            *zap.Logger
}

// NewEnrichmentHandler creates a new enrichment handler.
// Approved descriptions and rejected identifiers are reported to auditor.
func NewEnrichmentHandler(enrichmentService services.EnrichmentService, auditor *audit.SecurityAuditor, logger *zap.Logger) *EnrichmentHandler {
	return &EnrichmentHandler{
		enrichmentService: enrichmentService,
		auditor:           auditor,
		logger:            logger,
	}
}

// RegisterRoutes registers the enrichment handler's routes on the given mux.
func (h *EnrichmentHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/table-description", authMiddleware.RequireSession(h.GetTableDescription))
	mux.HandleFunc("GET /api/column-metadata", authMiddleware.RequireSession(h.GetColumnMetadata))
	mux.HandleFunc("POST /api/generate-description", authMiddleware.RequireSession(h.GenerateDescription))
	mux.HandleFunc("POST /api/generate-column-descriptions", authMiddleware.RequireSession(h.GenerateColumnDescriptions))
	mux.HandleFunc("POST /api/update-description", authMiddleware.RequireSession(h.UpdateDescription))
	mux.HandleFunc("POST /api/update-column-descriptions", authMiddleware.RequireSession(h.UpdateColumnDescriptions))
}

// GetTableDescription handles GET /api/table-description.
func (h *EnrichmentHandler) GetTableDescription(w http.ResponseWriter, r *http.Request) {
	ref, ok := ParseTableRef(w, r, h.logger)
	if !ok {
		return
	}

	desc, err := h.enrichmentService.GetTableDescription(r.Context(), ref)
	if err != nil {
		writeServiceError(w, h.logger, err, databaseFailure)
		return
	}

	if err := WriteJSON(w, http.StatusOK, desc); err != nil {
		h.logger.Error("Failed to encode table description", zap.Error(err))
	}
}

// GetColumnMetadata handles GET /api/column-metadata.
func (h *EnrichmentHandler) GetColumnMetadata(w http.ResponseWriter, r *http.Request) {
	ref, ok := ParseTableRef(w, r, h.logger)
	if !ok {
		return
	}

	columns, err := h.enrichmentService.GetColumnMetadata(r.Context(), ref)
	if err != nil {
		writeServiceError(w, h.logger, err, databaseFailure)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ColumnMetadataResponse{Columns: columns}); err != nil {
		h.logger.Error("Failed to encode column metadata", zap.Error(err))
	}
}

// GenerateDescription handles POST /api/generate-description.
// The draft is returned only; nothing is saved.
func (h *EnrichmentHandler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	ref, ok := ParseTableRef(w, r, h.logger)
	if !ok {
		return
	}

	desc, err := h.enrichmentService.GenerateTableDescription(r.Context(), ref)
	if err != nil {
		writeServiceError(w, h.logger, err, generateTableFailure)
		return
	}

	if err := WriteJSON(w, http.StatusOK, GenerateDescriptionResponse{GeneratedDescription: desc}); err != nil {
		h.logger.Error("Failed to encode generated description", zap.Error(err))
	}
}

// GenerateColumnDescriptions handles POST /api/generate-column-descriptions.
func (h *EnrichmentHandler) GenerateColumnDescriptions(w http.ResponseWriter, r *http.Request) {
	ref, ok := ParseTableRef(w, r, h.logger)
	if !ok {
		return
	}

	columns, err := h.enrichmentService.GenerateColumnDescriptions(r.Context(), ref)
	if err != nil {
		writeServiceError(w, h.logger, err, generateColumnFailure)
		return
	}

	if err := WriteJSON(w, http.StatusOK, GenerateColumnDescriptionsResponse{Columns: columns}); err != nil {
		h.logger.Error("Failed to encode generated column descriptions", zap.Error(err))
	}
}

// UpdateDescription handles POST /api/update-description.
func (h *EnrichmentHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	ref, ok := ParseTableRef(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateDescriptionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.enrichmentService.UpdateTableDescription(r.Context(), ref, req.Description); err != nil {
		h.auditRejection(r, ref, err)
		writeServiceError(w, h.logger, err, updateTableFailure)
		return
	}
	h.auditor.LogTableCommentUpdate(r.Context(), ref, req.Description, audit.ClientIP(r))

	response := UpdateResponse{Success: true, Message: "Table description updated successfully"}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode update response", zap.Error(err))
	}
}

// UpdateColumnDescriptions handles POST /api/update-column-descriptions.
func (h *EnrichmentHandler) UpdateColumnDescriptions(w http.ResponseWriter, r *http.Request) {
	ref, ok := ParseTableRef(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateColumnDescriptionsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.enrichmentService.UpdateColumnDescriptions(r.Context(), ref, req.ColumnDescriptions); err != nil {
		h.auditRejection(r, ref, err)
		writeServiceError(w, h.logger, err, updateColumnFailure)
		return
	}
	h.auditor.LogColumnCommentUpdate(r.Context(), ref, req.ColumnDescriptions, audit.ClientIP(r))

	response := UpdateResponse{Success: true, Message: "Column descriptions updated successfully"}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode update response", zap.Error(err))
	}
}

func (h *EnrichmentHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}

func (h *EnrichmentHandler) auditRejection(r *http.Request, ref models.TableRef, err error) {
	if errors.Is(err, apperrors.ErrInvalidIdentifier) {
		h.auditor.LogIdentifierRejected(r.Context(), ref, err.Error(), audit.ClientIP(r))
	}
}
