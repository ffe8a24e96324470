package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/auth"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
	"github.com/ekaya-inc/ekaya-enrich/pkg/services"
)

// CatalogsResponse lists catalog names.
type CatalogsResponse struct {
	Catalogs []string `json:"catalogs"`
}

// SchemasResponse lists schema names of a catalog.
type SchemasResponse struct {
	Schemas []string `json:"schemas"`
}

// TablesResponse lists the tables of catalog.schema.
type TablesResponse struct {
	Tables  []models.TableInfo `json:"tables"`
	Catalog string             `json:"catalog"`
	Schema  string             `json:"schema"`
}

// PreviewLimits bounds the limit query parameter of table previews.
type PreviewLimits struct {
	Default int
	Max     int
}

// CatalogHandler serves the catalog browser endpoints.
type CatalogHandler struct {
	catalogService services.CatalogService
	limits         PreviewLimits
	logger         *zap.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalogService services.CatalogService, limits PreviewLimits, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		limits:         limits,
		logger:         logger,
	}
}

// RegisterRoutes registers the catalog handler's routes on the given mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/catalogs", authMiddleware.RequireSession(h.ListCatalogs))
	mux.HandleFunc("GET /api/schemas", authMiddleware.RequireSession(h.ListSchemas))
	mux.HandleFunc("GET /api/tables", authMiddleware.RequireSession(h.ListTables))
	mux.HandleFunc("GET /api/table-preview", authMiddleware.RequireSession(h.PreviewTable))
}

// ListCatalogs handles GET /api/catalogs.
func (h *CatalogHandler) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	catalogs, err := h.catalogService.ListCatalogs(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, databaseFailure)
		return
	}

	if err := WriteJSON(w, http.StatusOK, CatalogsResponse{Catalogs: catalogs}); err != nil {
		h.logger.Error("Failed to encode catalogs response", zap.Error(err))
	}
}

// ListSchemas handles GET /api/schemas?catalog=.
func (h *CatalogHandler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	values, ok := requireQuery(w, r, h.logger, "catalog")
	if !ok {
		return
	}

	schemas, err := h.catalogService.ListSchemas(r.Context(), values[0])
	if err != nil {
		writeServiceError(w, h.logger, err, databaseFailure)
		return
	}

	if err := WriteJSON(w, http.StatusOK, SchemasResponse{Schemas: schemas}); err != nil {
		h.logger.Error("Failed to encode schemas response", zap.Error(err))
	}
}

// ListTables handles GET /api/tables?catalog=&schema=.
func (h *CatalogHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	values, ok := requireQuery(w, r, h.logger, "catalog", "schema")
	if !ok {
		return
	}
	catalog, schema := values[0], values[1]

	tables, err := h.catalogService.ListTables(r.Context(), catalog, schema)
	if err != nil {
		writeServiceError(w, h.logger, err, databaseFailure)
		return
	}

	response := TablesResponse{Tables: tables, Catalog: catalog, Schema: schema}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode tables response", zap.Error(err))
	}
}

// PreviewTable handles GET /api/table-preview?catalog=&schema=&table=&limit=.
func (h *CatalogHandler) PreviewTable(w http.ResponseWriter, r *http.Request) {
	ref, ok := ParseTableRef(w, r, h.logger)
	if !ok {
		return
	}
	limit, ok := ParseLimit(w, r, h.limits.Default, h.limits.Max, h.logger)
	if !ok {
		return
	}

	preview, err := h.catalogService.PreviewTable(r.Context(), ref, limit)
	if err != nil {
		writeServiceError(w, h.logger, err, databaseFailure)
		return
	}

	if err := WriteJSON(w, http.StatusOK, preview); err != nil {
		h.logger.Error("Failed to encode preview response", zap.Error(err))
	}
}
