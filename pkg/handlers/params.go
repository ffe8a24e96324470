package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

// requireQuery reads the named query parameters, all of which must be non-blank.
// Returns the values in order and true on success, or false on error
// (after writing an error response).
func requireQuery(w http.ResponseWriter, r *http.Request, logger *zap.Logger, names ...string) ([]string, bool) {
	query := r.URL.Query()
	values := make([]string, len(names))
	var missing []string
	for i, name := range names {
		values[i] = strings.TrimSpace(query.Get(name))
		if values[i] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		detail := fmt.Sprintf("Missing required query parameter: %s", strings.Join(missing, ", "))
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_parameters", detail); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return nil, false
	}
	return values, true
}

// ParseTableRef extracts catalog, schema and table from the query string.
// Returns the reference and true on success, or false on error
// (after writing an error response).
func ParseTableRef(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (models.TableRef, bool) {
	values, ok := requireQuery(w, r, logger, "catalog", "schema", "table")
	if !ok {
		return models.TableRef{}, false
	}
	return models.TableRef{Catalog: values[0], Schema: values[1], Table: values[2]}, true
}

// ParseLimit reads the optional limit query parameter.
// An absent limit returns defaultLimit; anything outside 1..maxLimit is rejected
// (after writing an error response).
func ParseLimit(w http.ResponseWriter, r *http.Request, defaultLimit, maxLimit int, logger *zap.Logger) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return defaultLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		detail := fmt.Sprintf("limit must be an integer between 1 and %d", maxLimit)
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", detail); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return limit, true
}
