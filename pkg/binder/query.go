package binder

import "net/http"

// Query binds URL query parameters into fields tagged `query:"name"`.
// Multi-value parameters bind to slices; missing parameters leave the field
// untouched.
//
//	type listRequest struct {
//		Status string `query:"status"`
//		Page   int    `query:"page"`
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindValues(v, "query", r.URL.Query(), ErrInvalidQuery)
	}
}
