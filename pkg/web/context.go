package web

import (
	"context"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"
)

// Context wraps http.Request and http.ResponseWriter with the request's
// context.Context so handlers receive one value instead of three.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	SSE() *datastar.ServerSentEventGenerator
}

// NewContext creates a Context for the request. An SSE generator is set up
// lazily only for datastar requests.
func NewContext(w http.ResponseWriter, r *http.Request) Context {
	ctx := &httpContext{w: w, r: r}
	if IsDataStar(r) {
		ctx.sse = NewSSE(w, r)
	}
	return ctx
}

type httpContext struct {
	w   http.ResponseWriter
	r   *http.Request
	sse *datastar.ServerSentEventGenerator
}

func (c *httpContext) Request() *http.Request                  { return c.r }
func (c *httpContext) ResponseWriter() http.ResponseWriter     { return c.w }
func (c *httpContext) SSE() *datastar.ServerSentEventGenerator { return c.sse }
func (c *httpContext) Deadline() (deadline time.Time, ok bool) { return c.r.Context().Deadline() }
func (c *httpContext) Done() <-chan struct{}                   { return c.r.Context().Done() }
func (c *httpContext) Err() error                              { return c.r.Context().Err() }
func (c *httpContext) Value(key any) any                       { return c.r.Context().Value(key) }

// ContextKey is a collision-safe context key. Declare keys as package-level
// variables so the same pointer is used for set and get.
type ContextKey struct{ name string }

func (c *ContextKey) String() string { return c.name }

// NewContextKey creates a context key with a name for debugging.
func NewContextKey(name string) *ContextKey {
	return &ContextKey{name}
}

// ContextValue retrieves a typed value from the context, returning the zero
// value of T when the key is absent or holds a different type.
func ContextValue[T any](ctx context.Context, key any) T {
	val, _ := ctx.Value(key).(T)
	return val
}

// ContextValueOK is ContextValue with an ok bool, so callers can tell a
// missing key from a stored zero value.
func ContextValueOK[T any](ctx context.Context, key any) (T, bool) {
	val, ok := ctx.Value(key).(T)
	return val, ok
}
