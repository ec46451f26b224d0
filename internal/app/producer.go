package app

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/bft-labs/flowsync/internal/domain"
	"github.com/bft-labs/flowsync/internal/ports"
	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/rational"
	"github.com/bft-labs/flowsync/pkg/timing"
)

// Producer publishes a flow in real time. Index i is published at its
// nominal timestamp plus the source delay and a random jitter in [0, Jitter).
type Producer struct {
	spec    domain.FlowSpec
	grains  ports.GrainWriter
	samples ports.SampleWriter
	clock   ports.Clock
	logger  ports.Logger
	rnd     *rand.Rand
}

// NewGrainProducer creates a producer for a discrete flow. Each grain is
// published in two steps: half of its slices half a grain early, then the
// rest on time.
func NewGrainProducer(spec domain.FlowSpec, w ports.GrainWriter, clock ports.Clock, logger ports.Logger) *Producer {
	return newProducer(spec, clock, logger, func(p *Producer) { p.grains = w })
}

// NewSampleProducer creates a producer for a continuous flow that commits
// spec.Batch samples at a time.
func NewSampleProducer(spec domain.FlowSpec, w ports.SampleWriter, clock ports.Clock, logger ports.Logger) *Producer {
	return newProducer(spec, clock, logger, func(p *Producer) { p.samples = w })
}

func newProducer(spec domain.FlowSpec, clock ports.Clock, logger ports.Logger, set func(*Producer)) *Producer {
	p := &Producer{
		spec:   spec,
		clock:  clock,
		logger: logger.With(ports.String("flow", spec.Name)),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	set(p)
	return p
}

// Run publishes until the context is canceled or the flow is closed.
func (p *Producer) Run(ctx context.Context) error {
	if p.grains != nil {
		return p.runGrains(ctx)
	}
	return p.runSamples(ctx)
}

func (p *Producer) runGrains(ctx context.Context) error {
	rate := p.spec.Rate
	half := rational.GrainDuration(rate) / 2
	slices := p.spec.Slices

	next := rational.CurrentIndex(rate, p.clock)
	for {
		next = p.skipAhead(next, 1)
		due := rational.IndexToTimestamp(rate, next).Add(p.delay())

		if slices > 1 {
			if err := p.sleepUntil(ctx, due.Add(-half)); err != nil {
				return err
			}
			if stop := p.commitErr(p.grains.CommitSlices(next, slices/2), next); stop {
				return nil
			}
		}
		if err := p.sleepUntil(ctx, due); err != nil {
			return err
		}
		if stop := p.commitErr(p.grains.CommitSlices(next, slices), next); stop {
			return nil
		}
		next++
	}
}

func (p *Producer) runSamples(ctx context.Context) error {
	rate := p.spec.Rate
	batch := p.spec.Batch

	next := rational.CurrentIndex(rate, p.clock)
	for {
		next = p.skipAhead(next, batch)
		due := rational.IndexToTimestamp(rate, next+batch-1).Add(p.delay())
		if err := p.sleepUntil(ctx, due); err != nil {
			return err
		}
		if stop := p.commitErr(p.samples.CommitSamples(next, batch), next); stop {
			return nil
		}
		next += batch
	}
}

// skipAhead jumps to the current index when the producer fell further behind
// than the flow retains, aligned down to step.
func (p *Producer) skipAhead(next, step uint64) uint64 {
	if p.spec.History == 0 {
		return next
	}
	cur := rational.CurrentIndex(p.spec.Rate, p.clock)
	if cur == flow.UndefinedIndex || cur < next+p.spec.History {
		return next
	}
	p.logger.Warn("producer fell behind, skipping ahead",
		ports.Uint64("from", next),
		ports.Uint64("to", cur))
	return next + (cur-next)/step*step
}

func (p *Producer) delay() time.Duration {
	d := p.spec.SourceDelay
	if p.spec.Jitter > 0 {
		d += time.Duration(p.rnd.Int63n(int64(p.spec.Jitter)))
	}
	return d
}

func (p *Producer) sleepUntil(ctx context.Context, due timing.Timepoint) error {
	d := timing.Until(p.clock, due)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// commitErr logs a failed commit and reports whether the producer must stop.
func (p *Producer) commitErr(err error, index uint64) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, flow.ErrFlowInvalid) {
		p.logger.Info("flow closed, producer stopping")
		return true
	}
	p.logger.Warn("commit failed", ports.Uint64("index", index), ports.Err(err))
	return false
}
