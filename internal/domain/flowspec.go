package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/rational"
)

// FlowSpec declares one flow: how it is produced and how the consumer reads it.
type FlowSpec struct {
	ID   uuid.UUID
	Name string
	Kind flow.Kind
	Rate rational.Rate

	// Slices is the number of slices per grain (discrete flows only).
	Slices uint16
	// MinValidSlices is the readiness threshold the consumer registers
	// (discrete flows only). Zero means the full grain.
	MinValidSlices uint16

	// SourceDelay is how late the producer publishes each index relative to
	// the index's nominal timestamp.
	SourceDelay time.Duration
	// Jitter is the upper bound of a random extra delay per publish.
	Jitter time.Duration

	// Batch is the number of samples per commit (continuous flows only).
	Batch uint64
	// History is the number of indices the flow retains.
	History uint64
}

// Validate reports the first problem with the flow declaration, wrapped in ErrInvalidConfig.
func (s FlowSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: flow name is required", ErrInvalidConfig)
	}
	if !s.Rate.IsValid() {
		return fmt.Errorf("%w: flow %q: rate %s is not valid", ErrInvalidConfig, s.Name, s.Rate)
	}
	switch s.Kind {
	case flow.KindDiscrete:
		if s.Slices == 0 {
			return fmt.Errorf("%w: flow %q: slices must be positive", ErrInvalidConfig, s.Name)
		}
		if s.MinValidSlices > s.Slices {
			return fmt.Errorf("%w: flow %q: min_valid_slices %d exceeds slices %d",
				ErrInvalidConfig, s.Name, s.MinValidSlices, s.Slices)
		}
	case flow.KindContinuous:
		if s.Batch == 0 {
			return fmt.Errorf("%w: flow %q: batch must be positive", ErrInvalidConfig, s.Name)
		}
	default:
		return fmt.Errorf("%w: flow %q: unknown kind", ErrInvalidConfig, s.Name)
	}
	if s.SourceDelay < 0 || s.Jitter < 0 {
		return fmt.Errorf("%w: flow %q: delays must not be negative", ErrInvalidConfig, s.Name)
	}
	return nil
}

// ValidateFlows checks every spec and that names are unique.
func ValidateFlows(specs []FlowSpec) error {
	if len(specs) == 0 {
		return fmt.Errorf("%w: at least one flow is required", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("%w: duplicate flow name %q", ErrInvalidConfig, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}
