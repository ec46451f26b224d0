// Package flowsync synchronizes reads across media flows that share a clock.
//
// The core type is Group, which holds grain (discrete) and sample
// (continuous) flow readers and waits, for a given origin time, until every
// flow has the data captured at that time:
//
//	g := flowsync.NewGroup()
//	g.AddDiscreteReader(video, 1080)
//	g.AddContinuousReader(audio)
//	err := g.WaitForDataAt(origin, deadline)
//
// For a complete runtime with in-memory flows, producers and a consumer
// loop, use Run or the pkg/flowsync package directly.
package flowsync

import (
	"context"
	"errors"

	"github.com/bft-labs/flowsync/pkg/flow"
	runtime "github.com/bft-labs/flowsync/pkg/flowsync"
	"github.com/bft-labs/flowsync/pkg/rational"
	"github.com/bft-labs/flowsync/pkg/syncgroup"
	"github.com/bft-labs/flowsync/pkg/timing"
)

// Group waits for data across a set of flows. It is not safe for concurrent use.
type Group = syncgroup.Group

// GroupOption configures a Group.
type GroupOption = syncgroup.Option

// Rate is a rational grain or sample rate.
type Rate = rational.Rate

// Timepoint is a TAI timestamp in nanoseconds.
type Timepoint = timing.Timepoint

// DiscreteReader reads a grain-oriented flow.
type DiscreteReader = flow.DiscreteReader

// ContinuousReader reads a sample-oriented flow.
type ContinuousReader = flow.ContinuousReader

// Config holds the runtime configuration used by Run.
type Config = runtime.Config

// UndefinedIndex marks an index that is unknown or cannot be computed.
const UndefinedIndex = rational.UndefinedIndex

// Wait errors.
var (
	ErrTimeout     = flow.ErrTimeout
	ErrFlowInvalid = flow.ErrFlowInvalid
	ErrOutOfRange  = flow.ErrOutOfRange
)

// NewGroup returns an empty Group.
func NewGroup(opts ...GroupOption) *Group {
	return syncgroup.New(opts...)
}

// ParseRate parses "25", "25/1" or "30000/1001".
func ParseRate(s string) (Rate, error) {
	return rational.ParseRate(s)
}

// TimestampToIndex returns the index nearest to ts at the given rate.
func TimestampToIndex(rate Rate, ts Timepoint) uint64 {
	return rational.TimestampToIndex(rate, ts)
}

// IndexToTimestamp returns the timepoint at which index is expected.
func IndexToTimestamp(rate Rate, index uint64) Timepoint {
	return rational.IndexToTimestamp(rate, index)
}

// Run starts a runtime with the given configuration and blocks until it
// completes cfg.Cycles cycles or ctx is cancelled.
func Run(ctx context.Context, cfg Config, opts ...runtime.Option) (runtime.Report, error) {
	r, err := runtime.New(cfg, opts...)
	if err != nil {
		return runtime.Report{}, err
	}
	if err := r.Start(ctx); err != nil {
		return runtime.Report{}, err
	}

	select {
	case <-ctx.Done():
	case <-r.Done():
	}
	if err := r.Stop(); err != nil && !errors.Is(err, runtime.ErrNotRunning) {
		return r.Report(), err
	}
	return r.Report(), r.Err()
}
