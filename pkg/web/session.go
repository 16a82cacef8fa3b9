package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookieName identifies the browser session. The id keys per-session
// state like the toast store and rate-limit windows.
const SessionCookieName = "opsdesk_session"

var sessionKey = NewContextKey("session_id")

// SessionMiddleware assigns every request a stable session id, minting a
// cookie on first contact.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
			id = c.Value
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionID returns the request's session id, or "" when the middleware has
// not run.
func SessionID(ctx context.Context) string {
	return ContextValue[string](ctx, sessionKey)
}

// WithSessionID injects a session id directly, mainly for tests and
// service-level callers outside the HTTP path.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}
