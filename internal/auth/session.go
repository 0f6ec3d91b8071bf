package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"
)

const (
	sessionCookieName = "cj_session"
	sessionTokenKey   = "token"
)

// SessionStore wraps the cookie session, which carries the login token and the flash messages
type SessionStore struct {
	store *sessions.CookieStore
}

func NewSessionStore(hashKey []byte, maxAge time.Duration, secure bool) *SessionStore {
	store := sessions.NewCookieStore(hashKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store}
}

func (s *SessionStore) session(r *http.Request) *sessions.Session {
	session, err := s.store.Get(r, sessionCookieName)
	if err != nil {
		// tampered or signed with an old key, a fresh session is returned anyway
		log.Debugf("session store, decode cookie: %s", err)
	}
	return session
}

func (s *SessionStore) Token(r *http.Request) string {
	token, _ := s.session(r).Values[sessionTokenKey].(string)
	return token
}

func (s *SessionStore) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	session := s.session(r)
	session.Values[sessionTokenKey] = token
	return session.Save(r, w)
}

// ClearToken forgets the login token but keeps pending flashes
func (s *SessionStore) ClearToken(w http.ResponseWriter, r *http.Request) error {
	session := s.session(r)
	delete(session.Values, sessionTokenKey)
	return session.Save(r, w)
}

// Touch re-issues the cookie, so it expires max-age after the last request
func (s *SessionStore) Touch(w http.ResponseWriter, r *http.Request) error {
	return s.session(r).Save(r, w)
}

func (s *SessionStore) AddFlash(w http.ResponseWriter, r *http.Request, message string) {
	session := s.session(r)
	session.AddFlash(message)
	if err := session.Save(r, w); err != nil {
		log.Errorf("session store, save flash [%s]: %s", message, err)
	}
}

// Flashes pops all pending flash messages
func (s *SessionStore) Flashes(w http.ResponseWriter, r *http.Request) []string {
	session := s.session(r)
	rawFlashes := session.Flashes()
	if len(rawFlashes) == 0 {
		return nil
	}

	if err := session.Save(r, w); err != nil {
		log.Errorf("session store, save after reading flashes: %s", err)
	}

	flashes := make([]string, 0, len(rawFlashes))
	for _, f := range rawFlashes {
		if msg, ok := f.(string); ok {
			flashes = append(flashes, msg)
		}
	}
	return flashes
}
