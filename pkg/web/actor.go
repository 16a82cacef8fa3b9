package web

import (
	"context"
	"net/http"
)

// ActorHeader carries the authenticated user id from the auth proxy.
const ActorHeader = "X-Auth-User"

var actorKey = NewContextKey("actor_id")

// ActorMiddleware records who is making the request. Without an upstream
// identity the session id stands in, which is enough for the anonymous
// filing flow.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := r.Header.Get(ActorHeader)
		if actor == "" {
			actor = SessionID(r.Context())
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// ActorID returns the requester's identity, or "" when no middleware ran.
func ActorID(ctx context.Context) string {
	return ContextValue[string](ctx, actorKey)
}

// WithActorID injects an actor id directly, for tests and background jobs.
func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, actorKey, id)
}
