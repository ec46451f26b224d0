package ports

import "github.com/bft-labs/flowsync/pkg/flow"

// GrainWriter publishes grains into a discrete flow.
type GrainWriter interface {
	Config() flow.Config
	// CommitSlices raises the valid slice count of the grain at index.
	CommitSlices(index uint64, validSlices uint16) error
}

// SampleWriter publishes samples into a continuous flow.
type SampleWriter interface {
	Config() flow.Config
	// CommitSamples publishes count samples starting at first.
	CommitSamples(first, count uint64) error
}
