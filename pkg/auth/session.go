package auth

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

// SessionName is the name of the login session cookie.
const SessionName = "ekaya_enrich_session"

// sessionKeyID is the cookie value key holding the registry session id.
const sessionKeyID = "sid"

// Cookies reads and writes the signed session cookie.
// The cookie carries only the session id; the user lives in the Registry.
type Cookies struct {
	store *sessions.CookieStore
}

// NewCookies creates the cookie-based session store.
//
// The secret parameter is used to sign session cookies. It can be any
// passphrase - it will be SHA-256 hashed to derive a 32-byte key.
// The secret must be consistent across server restarts, or existing
// cookies stop validating.
//
// Security settings:
// - HttpOnly: true (inaccessible to JavaScript)
// - Secure: from settings (HTTPS only outside localhost)
// - SameSite: Lax
func NewCookies(secret string, ttl time.Duration, settings CookieSettings) *Cookies {
	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   settings.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   settings.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Cookies{store: store}
}

// SessionID returns the session id carried by the request cookie.
// A missing, tampered or empty cookie returns false.
func (c *Cookies) SessionID(r *http.Request) (string, bool) {
	session, err := c.store.Get(r, SessionName)
	if err != nil {
		return "", false
	}
	id, ok := session.Values[sessionKeyID].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Set writes a cookie carrying id.
func (c *Cookies) Set(w http.ResponseWriter, r *http.Request, id string) error {
	// Get returns a fresh session alongside the decode error for a bad cookie.
	session, _ := c.store.Get(r, SessionName)
	session.Values[sessionKeyID] = id
	return session.Save(r, w)
}

// Clear expires the cookie.
func (c *Cookies) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := c.store.Get(r, SessionName)
	delete(session.Values, sessionKeyID)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
