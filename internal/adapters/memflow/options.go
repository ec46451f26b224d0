// Package memflow implements in-process flows that satisfy the flow reader
// capability. Writers commit grains or samples by index; readers observe the
// head index and block until an index becomes available.
//
// Only commit bookkeeping is kept, not media payloads.
package memflow

import (
	"github.com/google/uuid"

	"github.com/bft-labs/flowsync/pkg/rational"
	"github.com/bft-labs/flowsync/pkg/timing"
)

// DefaultHistory is the number of indices a flow retains when none is set.
const DefaultHistory = 256

// Options describes a flow to create.
type Options struct {
	ID             uuid.UUID
	Name           string
	Rate           rational.Rate
	SlicesPerGrain uint16
	// History is the number of most recent indices that remain readable.
	History uint64
	// Clock converts TAI deadlines into timers. Defaults to the system TAI clock.
	Clock timing.Source
}

func (o *Options) setDefaults() {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.History == 0 {
		o.History = DefaultHistory
	}
	if o.Clock == nil {
		o.Clock = timing.DefaultSource
	}
}
