package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/flowsync/internal/adapters/memflow"
	"github.com/bft-labs/flowsync/internal/domain"
	"github.com/bft-labs/flowsync/internal/testutil"
	"github.com/bft-labs/flowsync/pkg/log"
	"github.com/bft-labs/flowsync/pkg/rational"
	"github.com/bft-labs/flowsync/pkg/syncgroup"
)

const (
	testLatency = 40 * time.Millisecond
	// grain index the session asks for on every cycle
	targetGrain = 1000
	// sample index at the same instant: 1000 grains at 25 Hz is 40 s of 48 kHz audio
	targetSample = 1920000
)

type memReports struct {
	mu    sync.Mutex
	saved []domain.Report
}

func (m *memReports) Load(ctx context.Context) (domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return domain.Report{}, nil
	}
	return m.saved[len(m.saved)-1], nil
}

func (m *memReports) Save(ctx context.Context, r domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, r)
	return nil
}

type sessionFixture struct {
	clock   *testutil.ManualClock
	video   *memflow.DiscreteFlow
	audio   *memflow.ContinuousFlow
	reports *memReports
	session *Session
}

// newSessionFixture pins the clock so that every cycle targets targetGrain.
func newSessionFixture(t *testing.T, cfg SessionConfig, videoThreshold uint16) *sessionFixture {
	t.Helper()
	clock := testutil.NewManualClock(rational.IndexToTimestamp(rational.Rate25, targetGrain).Add(testLatency))

	video := memflow.NewDiscreteFlow(memflow.Options{
		Name: "video", Rate: rational.Rate25, SlicesPerGrain: 4, Clock: clock,
	})
	audio := memflow.NewContinuousFlow(memflow.Options{
		Name: "audio", Rate: rational.Rate48kHz, History: 4096, Clock: clock,
	})

	cfg.PresentationLatency = testLatency
	if cfg.WaitTimeout == 0 {
		cfg.WaitTimeout = 10 * time.Millisecond
	}
	if cfg.CycleInterval == 0 {
		cfg.CycleInterval = time.Millisecond
	}

	group := syncgroup.New(syncgroup.WithClock(clock))
	reports := &memReports{}
	s := NewSession(cfg, group, clock, reports, log.NewNoopLogger())
	s.AddDiscrete(video, videoThreshold)
	s.AddContinuous(audio)

	return &sessionFixture{clock: clock, video: video, audio: audio, reports: reports, session: s}
}

func (f *sessionFixture) publishAll(t *testing.T) {
	t.Helper()
	require.NoError(t, f.video.CommitGrain(targetGrain))
	require.NoError(t, f.audio.CommitSamples(targetSample-99, 100))
}

func TestSession_ReadyCycles(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Cycles: 3}, 4)
	f.publishAll(t)

	require.NoError(t, f.session.Run(context.Background()))

	assert.Equal(t, domain.CycleStats{Cycles: 3, Ready: 3}, f.session.Stats())

	require.Len(t, f.reports.saved, 1)
	report := f.reports.saved[0]
	assert.Equal(t, uint64(3), report.Stats.Ready)
	assert.False(t, report.StartedAt.IsZero())
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
	require.Len(t, report.Flows, 2)
	assert.Equal(t, "video", report.Flows[0].Name)
	assert.Equal(t, "discrete", report.Flows[0].Kind)
	assert.Equal(t, "25/1", report.Flows[0].Rate)
	assert.Equal(t, uint16(4), report.Flows[0].MinValidSlices)
	assert.Equal(t, "audio", report.Flows[1].Name)
	assert.Zero(t, report.Flows[1].MinValidSlices)
}

func TestSession_TimeoutsAreCounted(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Cycles: 2}, 4)

	require.NoError(t, f.session.Run(context.Background()))
	assert.Equal(t, domain.CycleStats{Cycles: 2, Timeouts: 2}, f.session.Stats())
}

func TestSession_ReaderErrorsBackOff(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Cycles: 2}, 4)
	require.NoError(t, f.video.Close())

	start := time.Now()
	require.NoError(t, f.session.Run(context.Background()))

	assert.Equal(t, domain.CycleStats{Cycles: 2, Errors: 2}, f.session.Stats())
	// 50ms then 100ms, each ±20%
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestSession_UpdateThreshold(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Cycles: 1}, 4)
	require.NoError(t, f.video.CommitSlices(targetGrain, 2))
	require.NoError(t, f.audio.CommitSamples(targetSample, 1))

	err := f.session.UpdateThreshold("audio", 1)
	assert.ErrorIs(t, err, domain.ErrUnknownFlow, "only grain flows carry a threshold")
	assert.ErrorIs(t, f.session.UpdateThreshold("nope", 1), domain.ErrUnknownFlow)

	require.NoError(t, f.session.UpdateThreshold("video", 2))
	require.NoError(t, f.session.Run(context.Background()))

	assert.Equal(t, uint64(1), f.session.Stats().Ready)
	report := f.session.Report()
	assert.Equal(t, uint16(2), report.Flows[0].MinValidSlices)
}

func TestSession_Canceled(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{CycleInterval: 5 * time.Millisecond}, 4)
	f.publishAll(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := f.session.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	stats := f.session.Stats()
	assert.Positive(t, stats.Cycles)
	assert.Equal(t, stats.Cycles, stats.Ready)
	assert.Len(t, f.reports.saved, 1, "report is saved on cancellation too")
}
