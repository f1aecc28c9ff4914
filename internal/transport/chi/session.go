package chi

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/plasmidq/internal/logger"
)

const (
	// SessionHeader carries the session id for API clients.
	SessionHeader = "X-Session-ID"
	// SessionCookie carries the session id for browsers.
	SessionCookie = "plasmidq_session"
)

// sessionID returns the caller's session id, minting one when the request has
// none. The id is always echoed back in the header and the cookie.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	w.Header().Set(SessionHeader, id)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// withSession resolves the session id and tags the request logger with it.
func withSession(w http.ResponseWriter, r *http.Request) (*http.Request, string) {
	id := sessionID(w, r)
	return r.WithContext(logger.With(r.Context(), zap.String("session_id", id))), id
}
