package httpserver

import "errors"

var (
	// ErrStart indicates the server failed to start or serve.
	ErrStart = errors.New("httpserver: failed to start")
	// ErrShutdown indicates graceful shutdown did not complete.
	ErrShutdown = errors.New("httpserver: failed to shut down gracefully")
	// ErrAlreadyRunning indicates Run was called twice on the same Server.
	ErrAlreadyRunning = errors.New("httpserver: already running")
)
