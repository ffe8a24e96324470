package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"
)

// SPAHandler serves the single-page app from an asset filesystem.
// Paths without a matching file get index.html so client-side routes load.
// Unknown /api/ paths get a JSON 404 instead.
type SPAHandler struct {
	assets     fs.FS
	fileServer http.Handler
	logger     *zap.Logger
}

// NewSPAHandler creates a handler serving assets (rooted at the build output).
func NewSPAHandler(assets fs.FS, logger *zap.Logger) *SPAHandler {
	return &SPAHandler{
		assets:     assets,
		fileServer: http.FileServerFS(assets),
		logger:     logger,
	}
}

// RegisterRoutes registers the catch-all route on the given mux.
func (h *SPAHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/", h)
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", "Not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name != "" {
		if info, err := fs.Stat(h.assets, name); err == nil && !info.IsDir() {
			h.fileServer.ServeHTTP(w, r)
			return
		}
	}

	index, err := fs.ReadFile(h.assets, "index.html")
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.logger.Error("Failed to read index.html", zap.Error(err))
		}
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", "Frontend build not found."); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(index)
}
