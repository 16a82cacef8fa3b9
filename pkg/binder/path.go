package binder

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// Path binds chi route parameters into fields tagged `path:"name"`.
//
//	r.Get("/tickets/{id}", web.Wrap(show,
//		web.WithBinders[web.Context, showRequest](binder.Path()),
//	))
func Path() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		routeCtx := chi.RouteContext(r.Context())
		if routeCtx == nil {
			return ErrNotApplicable
		}

		values := url.Values{}
		params := routeCtx.URLParams
		for i, key := range params.Keys {
			if key == "*" {
				continue
			}
			values.Set(key, params.Values[i])
		}
		return bindValues(v, "path", values, ErrInvalidPath)
	}
}
