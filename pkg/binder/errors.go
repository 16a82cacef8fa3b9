package binder

import "errors"

var (
	// ErrNotApplicable tells the handler wrap to skip this binder for the
	// current request (wrong method or content type, not a failure).
	ErrNotApplicable = errors.New("binder not applicable to request")

	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidJSON          = errors.New("invalid JSON")
	ErrInvalidForm          = errors.New("invalid form data")
	ErrInvalidQuery         = errors.New("invalid query parameter")
	ErrInvalidPath          = errors.New("invalid path parameter")
	ErrTargetMustBePointer  = errors.New("bind target must be a non-nil struct pointer")
)
