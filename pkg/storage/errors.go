package storage

import "errors"

var (
	ErrInvalidConfig = errors.New("storage: invalid configuration")
	ErrInvalidKey    = errors.New("storage: invalid key")
	ErrNotFound      = errors.New("storage: object not found")
	ErrUpload        = errors.New("storage: upload failed")
	ErrDownload      = errors.New("storage: download failed")
	ErrDelete        = errors.New("storage: delete failed")
)
