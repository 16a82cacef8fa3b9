package binder

import (
	"errors"
	"net/http"
	"strings"
)

// 32 MB, same ceiling http.Request.ParseMultipartForm documents as sane.
const maxMultipartMemory = 32 << 20

// Form binds form fields into fields tagged `form:"name"`. It handles both
// urlencoded and multipart bodies and reports ErrNotApplicable for requests
// without a form payload so it can sit in a binder chain.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			return ErrNotApplicable
		}

		contentType := r.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
			if err := r.ParseForm(); err != nil {
				return errors.Join(ErrInvalidForm, err)
			}
		case strings.HasPrefix(contentType, "multipart/form-data"):
			if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
				return errors.Join(ErrInvalidForm, err)
			}
		default:
			return ErrNotApplicable
		}

		return bindValues(v, "form", r.PostForm, ErrInvalidForm)
	}
}
