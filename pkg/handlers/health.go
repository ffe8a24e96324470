package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/config"
	"github.com/ekaya-inc/ekaya-enrich/pkg/logging"
)

const readinessTimeout = 5 * time.Second

// ReadinessCheck reports whether one upstream the app depends on is usable.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
	Workspace   string `json:"workspace"`
	WarehouseID string `json:"warehouse_id"`
	LLMProvider string `json:"llm_provider"`
	LLMModel    string `json:"llm_model"`
}

// HealthHandler serves liveness, readiness and version endpoints.
type HealthHandler struct {
	cfg    *config.Config
	checks []ReadinessCheck
	logger *zap.Logger
}

// NewHealthHandler creates a HealthHandler. checks are run on every GET /api/health.
func NewHealthHandler(cfg *config.Config, logger *zap.Logger, checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{cfg: cfg, checks: checks, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.APIHealth)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// APIHealth reports readiness. Any failing check answers 503.
func (h *HealthHandler) APIHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	response := HealthResponse{Status: "ok", Message: "App is running"}
	status := http.StatusOK
	if len(h.checks) > 0 {
		response.Checks = make(map[string]string, len(h.checks))
	}
	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			h.logger.Warn("Readiness check failed",
				zap.String("check", c.Name),
				zap.String("error", logging.SanitizeError(err)))
			response.Checks[c.Name] = "failing"
			response.Status = "degraded"
			response.Message = "One or more upstreams are unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Checks[c.Name] = "ok"
	}

	if err := WriteJSON(w, status, response); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// Health is the liveness endpoint. It never touches upstreams.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping returns version and deployment details.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "ekaya-enrich",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
		Workspace:   h.cfg.Databricks.ServerHostname,
		WarehouseID: h.cfg.Databricks.WarehouseID(),
		LLMProvider: h.cfg.LLM.Provider,
		LLMModel:    h.cfg.LLM.Model,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
