// Package auth manages login sessions: the in-memory session registry, the
// signed cookie that carries the session id, and the middleware that puts the
// signed-in session into request contexts.
package auth

import (
	"context"

	"github.com/ekaya-inc/ekaya-enrich/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

type contextKey string

// SessionKey is the context key for the authenticated *models.Session.
const SessionKey contextKey = "session"

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSession extracts the session from context.
func GetSession(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*models.Session)
	return session, ok && session != nil
}

// RequireUser returns the signed-in user or apperrors.ErrUnauthenticated.
func RequireUser(ctx context.Context) (models.User, error) {
	session, ok := GetSession(ctx)
	if !ok {
		return models.User{}, apperrors.ErrUnauthenticated
	}
	return session.User, nil
}
