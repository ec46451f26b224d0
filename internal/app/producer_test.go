package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/flowsync/internal/adapters/memflow"
	"github.com/bft-labs/flowsync/internal/domain"
	"github.com/bft-labs/flowsync/internal/testutil"
	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/log"
	"github.com/bft-labs/flowsync/pkg/rational"
	"github.com/bft-labs/flowsync/pkg/timing"
)

var rate1k = rational.Rate{Numerator: 1000, Denominator: 1}

func TestProducer_Samples(t *testing.T) {
	spec := domain.FlowSpec{
		Name: "audio", Kind: flow.KindContinuous, Rate: rate1k,
		Batch: 10, History: 1000, SourceDelay: 5 * time.Millisecond,
	}
	f := memflow.NewContinuousFlow(memflow.Options{Name: spec.Name, Rate: spec.Rate, History: spec.History})
	p := NewSampleProducer(spec, f, timing.DefaultSource, log.NewNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Run(ctx), context.DeadlineExceeded)

	head := f.HeadIndex()
	require.NotEqual(t, flow.UndefinedIndex, head)
	// Every committed sample was due by now.
	now := timing.DefaultSource.Now()
	assert.False(t, rational.IndexToTimestamp(rate1k, head).After(now.Add(-spec.SourceDelay)))
	// The producer keeps up with the clock.
	assert.Less(t, rational.CurrentIndex(rate1k, timing.DefaultSource)-head, uint64(100))
}

func TestProducer_Grains(t *testing.T) {
	spec := domain.FlowSpec{
		Name: "video", Kind: flow.KindDiscrete, Rate: rational.Rate{Numerator: 200, Denominator: 1},
		Slices: 4, History: 64, Jitter: time.Millisecond,
	}
	f := memflow.NewDiscreteFlow(memflow.Options{
		Name: spec.Name, Rate: spec.Rate, SlicesPerGrain: spec.Slices, History: spec.History,
	})
	p := NewGrainProducer(spec, f, timing.DefaultSource, log.NewNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Run(ctx), context.DeadlineExceeded)

	head := f.HeadIndex()
	require.NotEqual(t, flow.UndefinedIndex, head)
	assert.Equal(t, uint16(4), f.ValidSlices(head))
	assert.Equal(t, uint16(4), f.ValidSlices(head-1))
}

func TestProducer_StopsOnClosedFlow(t *testing.T) {
	spec := domain.FlowSpec{Name: "audio", Kind: flow.KindContinuous, Rate: rate1k, Batch: 1}
	f := memflow.NewContinuousFlow(memflow.Options{Name: spec.Name, Rate: spec.Rate})
	require.NoError(t, f.Close())

	p := NewSampleProducer(spec, f, timing.DefaultSource, log.NewNoopLogger())

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("producer did not stop on closed flow")
	}
}

func TestProducer_SkipAhead(t *testing.T) {
	clock := testutil.NewManualClock(rational.IndexToTimestamp(rate1k, 1000))
	spec := domain.FlowSpec{Name: "audio", Kind: flow.KindContinuous, Rate: rate1k, Batch: 10, History: 100}
	p := NewSampleProducer(spec, memflow.NewContinuousFlow(memflow.Options{Rate: rate1k}), clock, log.NewNoopLogger())

	assert.Equal(t, uint64(1000), p.skipAhead(0, 10))
	assert.Equal(t, uint64(993), p.skipAhead(3, 10), "stays aligned to the batch")
	assert.Equal(t, uint64(950), p.skipAhead(950, 10), "within history")

	spec.History = 0
	p = NewSampleProducer(spec, memflow.NewContinuousFlow(memflow.Options{Rate: rate1k}), clock, log.NewNoopLogger())
	assert.Equal(t, uint64(0), p.skipAhead(0, 10), "no history, no skipping")
}

func TestProducer_DelayWithinJitter(t *testing.T) {
	spec := domain.FlowSpec{Name: "v", Rate: rate1k, SourceDelay: 3 * time.Millisecond, Jitter: 2 * time.Millisecond}
	p := NewGrainProducer(spec, memflow.NewDiscreteFlow(memflow.Options{Rate: rate1k}), timing.DefaultSource, log.NewNoopLogger())

	for i := 0; i < 100; i++ {
		d := p.delay()
		assert.GreaterOrEqual(t, d, 3*time.Millisecond)
		assert.Less(t, d, 5*time.Millisecond)
	}
}
