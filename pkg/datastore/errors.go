package datastore

import "errors"

var (
	// ErrConnect is returned when a backend cannot be reached at
	// construction time.
	ErrConnect = errors.New("datastore.connect_failed")

	// ErrRequest is returned when a backend rejects or fails an operation.
	ErrRequest = errors.New("datastore.request_failed")

	// ErrDecode is returned when a backend response cannot be decoded.
	ErrDecode = errors.New("datastore.decode_failed")
)
