package ratelimit

import (
	"net"
	"net/http"
	"strconv"

	"github.com/opsdesk/opsdesk/pkg/web"
)

// KeyFunc extracts the rate-limit key from a request.
type KeyFunc func(r *http.Request) string

// BySession keys the limit on the browser session, falling back to the
// client IP for requests that somehow bypassed the session middleware.
func BySession() KeyFunc {
	return func(r *http.Request) string {
		if id := web.SessionID(r.Context()); id != "" {
			return id
		}
		return clientIP(r)
	}
}

// ByIP keys the limit on the client address.
func ByIP() KeyFunc {
	return clientIP
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware enforces the limiter per extracted key, answering 429 with the
// usual X-RateLimit headers once the window is spent.
func Middleware(limiter *Limiter, keyFunc KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := limiter.Allow(r.Context(), keyFunc(r))
			if err != nil {
				// A broken limiter store must not take the site down.
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				if retry := int(result.RetryAfter().Seconds()); retry > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(retry))
				}
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
