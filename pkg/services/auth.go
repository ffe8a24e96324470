package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-enrich/pkg/auth"
	"github.com/ekaya-inc/ekaya-enrich/pkg/databricks"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

// CredentialVerifier checks workspace credentials.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (*databricks.Identity, error)
}

// AuthService signs users in against the Databricks workspace.
// Passwords are only forwarded for verification and never stored.
type AuthService interface {
	// Login verifies credentials and starts a session.
	// Rejected credentials return apperrors.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*models.Session, error)
	// Session returns the live session with id or apperrors.ErrUnauthenticated.
	Session(id string) (*models.Session, error)
	Logout(id string)
}

type authService struct {
	verifier CredentialVerifier
	registry *auth.Registry
	logger   *zap.Logger
}

// NewAuthService creates an auth service storing sessions in registry.
func NewAuthService(verifier CredentialVerifier, registry *auth.Registry, logger *zap.Logger) AuthService {
	return &authService{
		verifier: verifier,
		registry: registry,
		logger:   logger.Named("auth-service"),
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", apperrors.ErrInvalidRequest)
	}

	identity, err := s.verifier.VerifyCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	session := s.registry.Create(userFromIdentity(username, identity))
	s.logger.Info("User signed in", zap.String("username", session.User.Username))
	return session, nil
}

func (s *authService) Session(id string) (*models.Session, error) {
	return s.registry.Get(id)
}

func (s *authService) Logout(id string) {
	s.registry.Delete(id)
}

// userFromIdentity fills gaps in identity from the login name.
func userFromIdentity(username string, identity *databricks.Identity) models.User {
	user := models.User{
		Username: username,
		Name:     strings.SplitN(username, "@", 2)[0],
	}
	if strings.Contains(username, "@") {
		user.Email = username
	}
	if identity == nil {
		return user
	}
	if identity.Username != "" {
		user.Username = identity.Username
	}
	if identity.Name != "" {
		user.Name = identity.Name
	}
	if identity.Email != "" {
		user.Email = identity.Email
	}
	return user
}
