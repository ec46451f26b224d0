package domain

import (
	"errors"
	"time"

	"github.com/bft-labs/flowsync/pkg/flow"
)

// CycleStats counts consumer cycles by outcome.
type CycleStats struct {
	Cycles   uint64 `json:"cycles"`
	Ready    uint64 `json:"ready"`
	Timeouts uint64 `json:"timeouts"`
	Errors   uint64 `json:"errors"`
}

// Record classifies the result of one cycle.
func (s *CycleStats) Record(err error) {
	s.Cycles++
	switch {
	case err == nil:
		s.Ready++
	case errors.Is(err, flow.ErrTimeout):
		s.Timeouts++
	default:
		s.Errors++
	}
}

// FlowReport describes one registered flow at the end of a session.
type FlowReport struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Kind           string        `json:"kind"`
	Rate           string        `json:"rate"`
	MinValidSlices uint16        `json:"min_valid_slices,omitempty"`
	MaxSourceDelay time.Duration `json:"max_source_delay_ns"`
}

// Report is the outcome of a consumer session. Flows are listed in the final
// scan order of the synchronization group.
type Report struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Stats      CycleStats   `json:"stats"`
	Flows      []FlowReport `json:"flows"`
}
