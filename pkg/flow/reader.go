package flow

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bft-labs/flowsync/pkg/rational"
	"github.com/bft-labs/flowsync/pkg/timing"
)

// UndefinedIndex marks an index that is unknown, e.g. the head of a flow
// that has not committed anything yet.
const UndefinedIndex = rational.UndefinedIndex

// Kind distinguishes discrete from continuous flows.
type Kind uint8

const (
	KindDiscrete Kind = iota
	KindContinuous
)

// String returns the kind name as used in configuration files.
func (k Kind) String() string {
	switch k {
	case KindDiscrete:
		return "discrete"
	case KindContinuous:
		return "continuous"
	default:
		return "unknown"
	}
}

// ParseKind parses a kind name produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "discrete":
		return KindDiscrete, nil
	case "continuous":
		return KindContinuous, nil
	default:
		return 0, fmt.Errorf("flow: unknown kind %q", s)
	}
}

// Config is the static description of a flow, read once when a reader is
// registered with a consumer.
type Config struct {
	// ID uniquely identifies the flow.
	ID uuid.UUID

	// Name is a human-readable label used in logs.
	Name string

	// Kind is the flow variant.
	Kind Kind

	// Rate is the grain rate (discrete) or sample rate (continuous).
	Rate rational.Rate

	// SlicesPerGrain is the number of slices in a full grain. Zero for continuous flows.
	SlicesPerGrain uint16
}

// Reader is the capability shared by both flow variants.
//
// A synchronization group identifies readers by interface equality, so
// implementations must be comparable. Pointer receivers are the usual choice;
// readers that cannot be compared are not registered.
type Reader interface {
	// Config returns the static flow configuration.
	Config() Config

	// HeadIndex returns the highest index with fully committed data, or
	// UndefinedIndex if nothing was committed yet. It never blocks and is
	// safe to call concurrently with writers.
	HeadIndex() uint64
}

// DiscreteReader reads grain-oriented flows.
type DiscreteReader interface {
	Reader

	// WaitForGrain blocks until the grain at index has at least
	// minValidSlices committed slices, or until deadline (TAI).
	WaitForGrain(index uint64, minValidSlices uint16, deadline timing.Timepoint) error
}

// ContinuousReader reads sample-oriented flows.
type ContinuousReader interface {
	Reader

	// WaitForSamples blocks until the sample at index is committed, or until
	// deadline (TAI).
	WaitForSamples(index uint64, deadline timing.Timepoint) error
}
