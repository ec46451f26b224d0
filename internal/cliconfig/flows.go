package cliconfig

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/flowsync/internal/domain"
	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/rational"
)

// flowNamespace scopes flow IDs derived from names.
var flowNamespace = uuid.MustParse("5b0e8a3c-7f55-4c1e-9d0a-6f2d1c8b9e47")

// ParseFlows converts file entries into flow specs. Entries without an id
// get one derived from their name, so reloading a file yields the same IDs.
func ParseFlows(entries []FileFlow) ([]domain.FlowSpec, error) {
	specs := make([]domain.FlowSpec, 0, len(entries))
	for i, e := range entries {
		spec, err := parseFlow(e)
		if err != nil {
			return nil, fmt.Errorf("flows[%d]: %w", i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseFlow(e FileFlow) (domain.FlowSpec, error) {
	var spec domain.FlowSpec

	kind, err := flow.ParseKind(e.Kind)
	if err != nil {
		return spec, err
	}
	rate, err := rational.ParseRate(e.Rate)
	if err != nil {
		return spec, err
	}
	if e.ID != "" {
		if _, err := uuid.Parse(e.ID); err != nil {
			return spec, fmt.Errorf("id %q: %w", e.ID, err)
		}
	}
	if e.Slices < 0 || e.Slices > math.MaxUint16 || e.MinValidSlices < 0 || e.MinValidSlices > math.MaxUint16 {
		return spec, fmt.Errorf("slices out of range")
	}
	if e.Batch < 0 || e.History < 0 {
		return spec, fmt.Errorf("batch and history must not be negative")
	}

	spec = domain.FlowSpec{
		ID:             flowID(e.ID, e.Name),
		Name:           e.Name,
		Kind:           kind,
		Rate:           rate,
		Slices:         uint16(e.Slices),
		MinValidSlices: uint16(e.MinValidSlices),
		Batch:          uint64(e.Batch),
		History:        uint64(e.History),
	}
	if spec.SourceDelay, err = parseOptionalDuration(e.SourceDelay); err != nil {
		return spec, fmt.Errorf("source_delay: %w", err)
	}
	if spec.Jitter, err = parseOptionalDuration(e.Jitter); err != nil {
		return spec, fmt.Errorf("jitter: %w", err)
	}
	return spec, nil
}

func flowID(id, name string) uuid.UUID {
	if id != "" {
		if u, err := uuid.Parse(id); err == nil {
			return u
		}
	}
	return uuid.NewSHA1(flowNamespace, []byte(name))
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
