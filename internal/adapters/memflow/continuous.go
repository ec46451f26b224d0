package memflow

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/timing"
)

// ContinuousFlow is an in-memory sample flow. Samples are committed in
// contiguous batches and the head index is the last committed sample.
type ContinuousFlow struct {
	cfg     flow.Config
	history uint64
	clock   timing.Source

	head atomic.Uint64

	mu      sync.Mutex
	changed chan struct{}
	closed  bool
}

// NewContinuousFlow creates an empty sample flow.
func NewContinuousFlow(opts Options) *ContinuousFlow {
	opts.setDefaults()
	f := &ContinuousFlow{
		cfg: flow.Config{
			ID:   opts.ID,
			Name: opts.Name,
			Kind: flow.KindContinuous,
			Rate: opts.Rate,
		},
		history: opts.History,
		clock:   opts.Clock,
		changed: make(chan struct{}),
	}
	f.head.Store(flow.UndefinedIndex)
	return f
}

// Config returns the flow configuration.
func (f *ContinuousFlow) Config() flow.Config { return f.cfg }

// HeadIndex returns the last committed sample index.
func (f *ContinuousFlow) HeadIndex() uint64 { return f.head.Load() }

// CommitSamples commits count samples starting at first. The head only moves
// forward; committing an older range is accepted and has no effect.
func (f *ContinuousFlow) CommitSamples(first, count uint64) error {
	if count == 0 {
		return nil
	}
	last := first + count - 1
	if last < first || last == flow.UndefinedIndex {
		return fmt.Errorf("commit samples at %d: %w", first, flow.ErrOutOfRange)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return flow.ErrFlowInvalid
	}
	head := f.head.Load()
	if head == flow.UndefinedIndex || last > head {
		f.head.Store(last)
	}

	close(f.changed)
	f.changed = make(chan struct{})
	return nil
}

// WaitForSamples blocks until the sample at index is committed.
func (f *ContinuousFlow) WaitForSamples(index uint64, deadline timing.Timepoint) error {
	return waitUntil(f.clock, deadline, func() (bool, error) {
		return f.sampleReady(index)
	}, f.changedCh)
}

// Close marks the flow invalid and wakes all waiters.
func (f *ContinuousFlow) Close() error {
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

func (f *ContinuousFlow) sampleReady(index uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false, flow.ErrFlowInvalid
	}
	head := f.head.Load()
	if head == flow.UndefinedIndex || index == flow.UndefinedIndex || index > head {
		return false, nil
	}
	if head >= f.history && index <= head-f.history {
		return false, fmt.Errorf("sample %d: %w", index, flow.ErrOutOfRange)
	}
	return true, nil
}

func (f *ContinuousFlow) changedCh() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.changed
}

var _ flow.ContinuousReader = (*ContinuousFlow)(nil)
