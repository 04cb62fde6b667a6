package session

import "errors"

var (
	// ErrNotConnected is returned synchronously from Send when no port
	// handle is open. It is never retried.
	ErrNotConnected = errors.New("not connected")

	// ErrConnectTimeout marks an open attempt that exceeded the bounded
	// connect window. Classified as transient.
	ErrConnectTimeout = errors.New("connect timed out")

	// ErrShutdown is returned by operations invoked after the session has
	// been shut down.
	ErrShutdown = errors.New("session is shut down")
)
