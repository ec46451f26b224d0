package flowsync

import "github.com/bft-labs/flowsync/internal/domain"

// Errors returned by the runtime. Check with errors.Is.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrUnknownFlow     = domain.ErrUnknownFlow
)
