package auth

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Middleware provides HTTP session middleware.
type Middleware struct {
	registry *Registry
	cookies  *Cookies
	logger   *zap.Logger
}

// NewMiddleware creates a new session middleware.
func NewMiddleware(registry *Registry, cookies *Cookies, logger *zap.Logger) *Middleware {
	return &Middleware{
		registry: registry,
		cookies:  cookies,
		logger:   logger,
	}
}

// RequireSession rejects requests without a live session cookie.
// The session is placed in the request context for downstream handlers.
func (m *Middleware) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.cookies.SessionID(r)
		if !ok {
			m.unauthorized(w)
			return
		}

		session, err := m.registry.Get(id)
		if err != nil {
			m.logger.Debug("Rejected stale session", zap.String("path", r.URL.Path))
			m.unauthorized(w)
			return
		}

		next(w, r.WithContext(WithSession(r.Context(), session)))
	}
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":  "unauthorized",
		"detail": "Not authenticated",
	})
}
