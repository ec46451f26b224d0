package flow

import "errors"

// Reader errors. Wait primitives return these (possibly wrapped); check with errors.Is.
var (
	// ErrTimeout is returned when the deadline expired before the data became available.
	ErrTimeout = errors.New("flow: timeout")

	// ErrFlowInvalid is returned when the flow was closed or is otherwise unusable.
	ErrFlowInvalid = errors.New("flow: invalid flow")

	// ErrOutOfRange is returned when the requested index is no longer retained.
	ErrOutOfRange = errors.New("flow: index out of range")
)
