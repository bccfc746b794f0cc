package auth

import (
	"net/http"
	"time"

	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/gorilla/sessions"
)

const (
	SessionCookieName = "campushub_session"

	sessionUserIDKey = "user_id"
	sessionRoleKey   = "role"
)

// Sessions keeps browser logins in a signed cookie. API clients use bearer
// tokens instead; both resolve to the same identity.
type Sessions struct {
	store *sessions.CookieStore
}

func NewSessions(secret string, maxAge time.Duration, secure bool) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

func (s *Sessions) Save(w http.ResponseWriter, r *http.Request, u user.User) error {
	sess, _ := s.store.Get(r, SessionCookieName)
	sess.Values[sessionUserIDKey] = u.ID
	sess.Values[sessionRoleKey] = string(u.Role)
	return sess.Save(r, w)
}

// Identity returns the user id and role stored in the session cookie.
func (s *Sessions) Identity(r *http.Request) (string, user.Role, bool) {
	sess, err := s.store.Get(r, SessionCookieName)
	if err != nil || sess.IsNew {
		return "", "", false
	}

	id, _ := sess.Values[sessionUserIDKey].(string)
	rawRole, _ := sess.Values[sessionRoleKey].(string)

	role := user.Role(rawRole)
	if id == "" || !role.Valid() {
		return "", "", false
	}
	return id, role, true
}

func (s *Sessions) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, SessionCookieName)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}
