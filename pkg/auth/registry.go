package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ekaya-inc/ekaya-enrich/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

// DefaultSessionTTL is the login session lifetime when none is configured.
const DefaultSessionTTL = 8 * time.Hour

// Registry holds login sessions in memory. Sessions do not survive a restart.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry creates an empty registry. A non-positive ttl uses DefaultSessionTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a session for user and returns it.
func (r *Registry) Create(user models.User) *models.Session {
	now := r.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	return session
}

// Get returns the live session with id.
// Unknown and expired sessions return apperrors.ErrUnauthenticated; expired ones are removed.
func (r *Registry) Get(id string) (*models.Session, error) {
	if id == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	if session.Expired(r.now()) {
		delete(r.sessions, id)
		return nil, apperrors.ErrUnauthenticated
	}
	copied := *session
	return &copied, nil
}

// Delete ends the session with id. Unknown ids are ignored.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Sweep removes expired sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
