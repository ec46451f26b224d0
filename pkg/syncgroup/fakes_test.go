package syncgroup

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/flowsync/internal/testutil"
	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/rational"
	"github.com/bft-labs/flowsync/pkg/timing"
)

type waitCall struct {
	index          uint64
	minValidSlices uint16
	deadline       timing.Timepoint
}

// fakeReader implements both reader variants. Its wait sets the shared clock
// to the nominal arrival of the requested index plus lateness, mimicking data
// that shows up that late.
type fakeReader struct {
	mu         sync.Mutex
	cfg        flow.Config
	head       uint64
	lateness   time.Duration
	err        error
	clock      *testutil.ManualClock
	calls      []waitCall
	headReads  int
	configRead int
}

func newFakeReader(name string, rate rational.Rate, clock *testutil.ManualClock) *fakeReader {
	return &fakeReader{
		cfg:   flow.Config{ID: uuid.New(), Name: name, Rate: rate},
		head:  flow.UndefinedIndex,
		clock: clock,
	}
}

func (f *fakeReader) Config() flow.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configRead++
	return f.cfg
}

func (f *fakeReader) HeadIndex() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headReads++
	return f.head
}

func (f *fakeReader) WaitForGrain(index uint64, minValidSlices uint16, deadline timing.Timepoint) error {
	return f.wait(waitCall{index: index, minValidSlices: minValidSlices, deadline: deadline})
}

func (f *fakeReader) WaitForSamples(index uint64, deadline timing.Timepoint) error {
	return f.wait(waitCall{index: index, deadline: deadline})
}

func (f *fakeReader) wait(c waitCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if f.err != nil {
		return f.err
	}
	if f.clock != nil && f.cfg.Rate.IsValid() {
		f.clock.Set(rational.IndexToTimestamp(f.cfg.Rate, c.index).Add(f.lateness))
	}
	return nil
}

func (f *fakeReader) setHead(head uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head = head
}

func (f *fakeReader) setLateness(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lateness = d
}

func (f *fakeReader) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeReader) headReadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headReads
}

func (f *fakeReader) waitCalls() []waitCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]waitCall(nil), f.calls...)
}

type recordingObserver struct {
	promoted []string
	failed   []string
	errs     []error
}

func (o *recordingObserver) OnPromote(info EntryInfo) {
	o.promoted = append(o.promoted, info.Name)
}

func (o *recordingObserver) OnWaitFailed(info EntryInfo, index uint64, err error) {
	o.failed = append(o.failed, info.Name)
	o.errs = append(o.errs, err)
}

func names(infos []EntryInfo) []string {
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.Name
	}
	return out
}

// second is one second past the epoch: index 25 at 25 fps, 48000 at 48 kHz.
const second = timing.Timepoint(time.Second)

// valueReader is a non-pointer reader whose dynamic value cannot be compared.
type valueReader struct {
	attrs map[string]string
}

func (valueReader) Config() flow.Config {
	return flow.Config{Name: "value", Rate: rational.Rate25}
}

func (valueReader) HeadIndex() uint64 { return flow.UndefinedIndex }

func (valueReader) WaitForGrain(uint64, uint16, timing.Timepoint) error { return nil }

func (valueReader) WaitForSamples(uint64, timing.Timepoint) error { return nil }

// keyedReader is a comparable value reader.
type keyedReader struct {
	name string
}

func (k keyedReader) Config() flow.Config {
	return flow.Config{Name: k.name, Rate: rational.Rate25}
}

func (keyedReader) HeadIndex() uint64 { return 1 << 40 }

func (keyedReader) WaitForSamples(uint64, timing.Timepoint) error { return nil }
