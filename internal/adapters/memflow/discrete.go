package memflow

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/timing"
)

type grainSlot struct {
	index uint64
	valid uint16
	used  bool
}

// DiscreteFlow is an in-memory grain flow. The head index advances when a
// grain has all of its slices committed.
type DiscreteFlow struct {
	cfg     flow.Config
	history uint64
	clock   timing.Source

	head atomic.Uint64

	mu      sync.Mutex
	grains  []grainSlot
	changed chan struct{}
	closed  bool
}

// NewDiscreteFlow creates an empty grain flow. SlicesPerGrain defaults to 1.
func NewDiscreteFlow(opts Options) *DiscreteFlow {
	opts.setDefaults()
	if opts.SlicesPerGrain == 0 {
		opts.SlicesPerGrain = 1
	}
	f := &DiscreteFlow{
		cfg: flow.Config{
			ID:             opts.ID,
			Name:           opts.Name,
			Kind:           flow.KindDiscrete,
			Rate:           opts.Rate,
			SlicesPerGrain: opts.SlicesPerGrain,
		},
		history: opts.History,
		clock:   opts.Clock,
		grains:  make([]grainSlot, opts.History),
		changed: make(chan struct{}),
	}
	f.head.Store(flow.UndefinedIndex)
	return f
}

// Config returns the flow configuration.
func (f *DiscreteFlow) Config() flow.Config { return f.cfg }

// HeadIndex returns the highest fully committed grain index.
func (f *DiscreteFlow) HeadIndex() uint64 { return f.head.Load() }

// CommitSlices raises the number of valid slices of the grain at index to
// validSlices. Committing to an index older than the retained history fails
// with flow.ErrOutOfRange.
func (f *DiscreteFlow) CommitSlices(index uint64, validSlices uint16) error {
	if index == flow.UndefinedIndex {
		return fmt.Errorf("commit grain: %w", flow.ErrOutOfRange)
	}
	if validSlices > f.cfg.SlicesPerGrain {
		validSlices = f.cfg.SlicesPerGrain
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return flow.ErrFlowInvalid
	}
	head := f.head.Load()
	if head != flow.UndefinedIndex && head >= f.history && index <= head-f.history {
		return fmt.Errorf("commit grain %d: %w", index, flow.ErrOutOfRange)
	}

	s := &f.grains[index%f.history]
	if !s.used || s.index != index {
		*s = grainSlot{index: index, used: true}
	}
	if validSlices > s.valid {
		s.valid = validSlices
	}
	if s.valid == f.cfg.SlicesPerGrain && (head == flow.UndefinedIndex || index > head) {
		f.head.Store(index)
	}

	close(f.changed)
	f.changed = make(chan struct{})
	return nil
}

// CommitGrain commits every slice of the grain at index.
func (f *DiscreteFlow) CommitGrain(index uint64) error {
	return f.CommitSlices(index, f.cfg.SlicesPerGrain)
}

// WaitForGrain blocks until the grain at index has minValidSlices slices.
// Zero, or a value above the grain's slice count, waits for the full grain.
func (f *DiscreteFlow) WaitForGrain(index uint64, minValidSlices uint16, deadline timing.Timepoint) error {
	if minValidSlices == 0 || minValidSlices > f.cfg.SlicesPerGrain {
		minValidSlices = f.cfg.SlicesPerGrain
	}
	return waitUntil(f.clock, deadline, func() (bool, error) {
		return f.grainReady(index, minValidSlices)
	}, f.changedCh)
}

// ValidSlices returns the committed slice count of the grain at index, or 0
// when the grain is not retained.
func (f *DiscreteFlow) ValidSlices(index uint64) uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.grains[index%f.history]
	if !s.used || s.index != index {
		return 0
	}
	return s.valid
}

// Close marks the flow invalid and wakes all waiters.
func (f *DiscreteFlow) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.changed)
	f.changed = make(chan struct{})
	return nil
}

func (f *DiscreteFlow) grainReady(index uint64, minValidSlices uint16) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false, flow.ErrFlowInvalid
	}
	if index == flow.UndefinedIndex {
		return false, nil
	}
	s := f.grains[index%f.history]
	if s.used && s.index == index {
		return s.valid >= minValidSlices, nil
	}
	if s.used && s.index > index {
		return false, fmt.Errorf("grain %d: %w", index, flow.ErrOutOfRange)
	}
	return false, nil
}

func (f *DiscreteFlow) changedCh() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.changed
}

var _ flow.DiscreteReader = (*DiscreteFlow)(nil)
