package syncgroup

import (
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/rational"
	"github.com/bft-labs/flowsync/pkg/timing"
)

// member is a registered reader together with its variant-specific wait.
type member interface {
	reader() flow.Reader
	headIndex() uint64
	waitReady(index uint64, deadline timing.Timepoint) error
}

type discreteMember struct {
	r              flow.DiscreteReader
	minValidSlices uint16
}

func (m *discreteMember) reader() flow.Reader { return m.r }
func (m *discreteMember) headIndex() uint64   { return m.r.HeadIndex() }

func (m *discreteMember) waitReady(index uint64, deadline timing.Timepoint) error {
	return m.r.WaitForGrain(index, m.minValidSlices, deadline)
}

type continuousMember struct {
	r flow.ContinuousReader
}

func (m *continuousMember) reader() flow.Reader { return m.r }
func (m *continuousMember) headIndex() uint64   { return m.r.HeadIndex() }

func (m *continuousMember) waitReady(index uint64, deadline timing.Timepoint) error {
	return m.r.WaitForSamples(index, deadline)
}

// entry is the group's record of one registered reader.
type entry struct {
	member member
	kind   flow.Kind

	// rate is cached at registration and never refreshed.
	rate rational.Rate

	flowID uuid.UUID
	name   string

	// maxDelay only grows until the reader is removed.
	maxDelay time.Duration
}

func newEntry(m member, kind flow.Kind) entry {
	cfg := m.reader().Config()
	return entry{
		member: m,
		kind:   kind,
		rate:   cfg.Rate,
		flowID: cfg.ID,
		name:   cfg.Name,
	}
}

func (e *entry) minValidSlices() uint16 {
	if d, ok := e.member.(*discreteMember); ok {
		return d.minValidSlices
	}
	return 0
}

func (e *entry) info() EntryInfo {
	return EntryInfo{
		FlowID:         e.flowID,
		Name:           e.name,
		Kind:           e.kind,
		Rate:           e.rate,
		MinValidSlices: e.minValidSlices(),
		MaxSourceDelay: e.maxDelay,
	}
}

// EntryInfo describes one registered reader, in scan order when returned by
// Group.Snapshot.
type EntryInfo struct {
	FlowID         uuid.UUID
	Name           string
	Kind           flow.Kind
	Rate           rational.Rate
	MinValidSlices uint16
	MaxSourceDelay time.Duration
}
