package storage

import (
	"context"
	"io"
	"regexp"
	"strings"
)

// Storage persists ticket attachment blobs under opaque keys.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// URL returns the public address of a stored blob.
	URL(key string) string
}

var keyRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/\-]*$`)

// validKey rejects keys that could escape the storage root or confuse the
// backend: empty, absolute, dot-dot segments, or odd characters.
func validKey(key string) bool {
	if key == "" || len(key) > 512 || !keyRegex.MatchString(key) {
		return false
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return false
		}
	}
	return true
}
