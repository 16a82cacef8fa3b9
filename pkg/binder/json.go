package binder

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// JSON decodes an application/json body into v. Unknown fields are
// rejected. Requests with a different content type get ErrNotApplicable so
// JSON can be chained with the form binder on endpoints accepting both.
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if r.Body == nil || r.ContentLength == 0 {
			return ErrNotApplicable
		}

		mediaType := r.Header.Get("Content-Type")
		if idx := strings.Index(mediaType, ";"); idx != -1 {
			mediaType = strings.TrimSpace(mediaType[:idx])
		}
		if mediaType != "application/json" {
			return ErrNotApplicable
		}

		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(v); err != nil {
			return errors.Join(ErrInvalidJSON, err)
		}
		return nil
	}
}
