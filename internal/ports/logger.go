package ports

import (
	"github.com/bft-labs/flowsync/pkg/log"
	"github.com/bft-labs/flowsync/pkg/timing"
)

// Logger is the structured logging port.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Clock is the TAI time source port.
type Clock = timing.Source

// Field constructors re-exported for the application layer.
var (
	String   = log.String
	Int      = log.Int
	Uint64   = log.Uint64
	Duration = log.Duration
	Err      = log.Err
)
