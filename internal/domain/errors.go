package domain

import "errors"

// Domain errors represent error conditions in the flowsync runtime.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("flowsync: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("flowsync: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("flowsync: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("flowsync: invalid configuration")

	// ErrUnknownFlow is returned when a threshold update names a flow that is
	// not registered.
	ErrUnknownFlow = errors.New("flowsync: unknown flow")
)
