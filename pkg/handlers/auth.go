package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/audit"
	"github.com/ekaya-inc/ekaya-enrich/pkg/auth"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
	"github.com/ekaya-inc/ekaya-enrich/pkg/services"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Success bool        `json:"success"`
	User    models.User `json:"user"`
}

// LogoutResponse represents the response for logout.
type LogoutResponse struct {
	Success bool `json:"success"`
}

// MeResponse describes the signed-in user.
type MeResponse struct {
	User models.User `json:"user"`
}

// AuthHandler handles login, logout and session lookup.
type AuthHandler struct {
	authService services.AuthService
	cookies     *auth.Cookies
	auditor     *audit.SecurityAuditor
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService services.AuthService, cookies *auth.Cookies, auditor *audit.SecurityAuditor, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		auditor:     auditor,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/logout", h.Logout)
	mux.HandleFunc("GET /api/me", authMiddleware.RequireSession(h.Me))
}

// Login handles POST /api/login.
// Credentials are checked against the Databricks workspace and a session cookie is set.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	h.auditor.LogLogin(req.Username, audit.ClientIP(r), err)
	if err != nil {
		writeServiceError(w, h.logger, err, loginFailure)
		return
	}

	if err := h.cookies.Set(w, r, session.ID); err != nil {
		h.logger.Error("Failed to set session cookie", zap.Error(err))
		h.authService.Logout(session.ID)
		if err := ErrorResponse(w, http.StatusInternalServerError, "session_error", "Failed to create session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, LoginResponse{Success: true, User: session.User}); err != nil {
		h.logger.Error("Failed to encode login response", zap.Error(err))
	}
}

// Logout handles POST /api/logout.
// Always succeeds; an unknown or missing session is simply cleared.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var username string
	if id, ok := h.cookies.SessionID(r); ok {
		if session, err := h.authService.Session(id); err == nil {
			username = session.User.Username
		}
		h.authService.Logout(id)
	}
	h.auditor.LogLogout(username, audit.ClientIP(r))

	if err := h.cookies.Clear(w, r); err != nil {
		h.logger.Warn("Failed to clear session cookie", zap.Error(err))
	}

	if err := WriteJSON(w, http.StatusOK, LogoutResponse{Success: true}); err != nil {
		h.logger.Error("Failed to encode logout response", zap.Error(err))
	}
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUser(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, loginFailure)
		return
	}

	if err := WriteJSON(w, http.StatusOK, MeResponse{User: user}); err != nil {
		h.logger.Error("Failed to encode user response", zap.Error(err))
	}
}
