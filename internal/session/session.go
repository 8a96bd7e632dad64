package session

import (
	"net/http"

	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"
	"github.com/whatson/whatson/internal/config"
)

const (
	venueSession = "venue_id"
	adminSession = "platform_admin"

	maxAge = 24 * 60 * 60 // one day, matching the login expiry of the web app
)

// Store wraps the cookie session store used to keep venue owners and the
// platform admin logged in. Both sessions are httpOnly cookies.
type Store struct {
	cookies *sessions.CookieStore
}

func NewStore(cfg config.Session) *Store {
	cookies := sessions.NewCookieStore([]byte(cfg.Key))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: cookies}
}

// SetVenue stores the venue id in the owner session cookie.
func (s *Store) SetVenue(w http.ResponseWriter, r *http.Request, venueID string) error {
	sess, _ := s.cookies.Get(r, venueSession)
	sess.Values["id"] = venueID
	sess.Options.MaxAge = maxAge
	return sess.Save(r, w)
}

// VenueID returns the venue id from the owner session cookie, if present.
func (s *Store) VenueID(r *http.Request) (string, bool) {
	sess, err := s.cookies.Get(r, venueSession)
	if err != nil {
		log.Debugf("invalid venue session: %v", err)
		return "", false
	}
	venueID, ok := sess.Values["id"].(string)
	return venueID, ok && venueID != ""
}

// ClearVenue expires the owner session cookie.
func (s *Store) ClearVenue(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.cookies.Get(r, venueSession)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// SetPlatformAdmin stores the platform-admin flag in its own session cookie.
func (s *Store) SetPlatformAdmin(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.cookies.Get(r, adminSession)
	sess.Values["admin"] = true
	sess.Options.MaxAge = maxAge
	return sess.Save(r, w)
}

func (s *Store) IsPlatformAdmin(r *http.Request) bool {
	sess, err := s.cookies.Get(r, adminSession)
	if err != nil {
		log.Debugf("invalid admin session: %v", err)
		return false
	}
	isAdmin, ok := sess.Values["admin"].(bool)
	return ok && isAdmin
}

func (s *Store) ClearPlatformAdmin(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.cookies.Get(r, adminSession)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}
