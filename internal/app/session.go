package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/flowsync/internal/domain"
	"github.com/bft-labs/flowsync/internal/ports"
	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/syncgroup"
)

// SessionConfig contains configuration for the consumer loop.
type SessionConfig struct {
	// CycleInterval is the period between synchronization cycles.
	CycleInterval time.Duration
	// WaitTimeout bounds each cycle: deadline = now + WaitTimeout.
	WaitTimeout time.Duration
	// PresentationLatency shifts the origin into the past: origin = now - latency.
	PresentationLatency time.Duration
	// Cycles stops the session after this many cycles. Zero runs until canceled.
	Cycles uint64
}

// Session is the consumer loop. Every cycle it asks the synchronization group
// for data at (now - latency) and records the outcome.
type Session struct {
	config  SessionConfig
	group   *syncgroup.Group
	clock   ports.Clock
	reports ports.ReportRepository
	logger  ports.Logger

	mu       sync.Mutex
	discrete map[string]flow.DiscreteReader
	pending  map[string]uint16
	stats    domain.CycleStats
	started  time.Time
	report   domain.Report
}

// NewSession creates a session reading through group. reports may be nil.
func NewSession(
	config SessionConfig,
	group *syncgroup.Group,
	clock ports.Clock,
	reports ports.ReportRepository,
	logger ports.Logger,
) *Session {
	return &Session{
		config:   config,
		group:    group,
		clock:    clock,
		reports:  reports,
		logger:   logger,
		discrete: make(map[string]flow.DiscreteReader),
		pending:  make(map[string]uint16),
	}
}

// AddDiscrete registers a grain flow with its readiness threshold.
func (s *Session) AddDiscrete(r flow.DiscreteReader, minValidSlices uint16) {
	s.mu.Lock()
	s.discrete[r.Config().Name] = r
	s.mu.Unlock()
	s.group.AddDiscreteReader(r, minValidSlices)
}

// AddContinuous registers a sample flow.
func (s *Session) AddContinuous(r flow.ContinuousReader) {
	s.group.AddContinuousReader(r)
}

// UpdateThreshold queues a new readiness threshold for the named grain flow.
// It is applied before the next cycle so a cycle never sees a half-applied
// update.
func (s *Session) UpdateThreshold(name string, minValidSlices uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.discrete[name]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFlow, name)
	}
	s.pending[name] = minValidSlices
	return nil
}

// Stats returns the cycle counters so far.
func (s *Session) Stats() domain.CycleStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Report returns the report built when Run last returned.
func (s *Session) Report() domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// buildReport must run on the goroutine that owns the group.
func (s *Session) buildReport() domain.Report {
	s.mu.Lock()
	report := domain.Report{
		StartedAt:  s.started,
		FinishedAt: time.Now(),
		Stats:      s.stats,
	}
	s.mu.Unlock()

	for _, info := range s.group.Snapshot() {
		fr := domain.FlowReport{
			ID:             info.FlowID.String(),
			Name:           info.Name,
			Kind:           info.Kind.String(),
			Rate:           info.Rate.String(),
			MaxSourceDelay: info.MaxSourceDelay,
		}
		if info.Kind == flow.KindDiscrete {
			fr.MinValidSlices = info.MinValidSlices
		}
		report.Flows = append(report.Flows, fr)
	}
	return report
}

// Run executes cycles until the context is canceled or the configured number
// of cycles completed. Timeouts are counted and the loop carries on; other
// reader errors back off before the next cycle.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()
	defer s.finish()

	interval := s.config.CycleInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bo := newBackoff(DefaultBackoffInitial, DefaultBackoffMax)

	for {
		s.applyPending()

		now := s.clock.Now()
		origin := now.Add(-s.config.PresentationLatency)
		err := s.group.WaitForDataAt(origin, now.Add(s.config.WaitTimeout))
		cycles := s.record(err)

		switch {
		case err == nil:
			bo.Reset()
		case errors.Is(err, flow.ErrTimeout):
			s.logger.Warn("cycle timed out",
				ports.String("origin", origin.String()),
				ports.Uint64("cycle", cycles))
		default:
			s.logger.Error("cycle failed",
				ports.Err(err),
				ports.Uint64("cycle", cycles),
				ports.Duration("backoff", bo.Current()))
			if err := bo.Sleep(ctx); err != nil {
				return err
			}
		}

		if s.config.Cycles > 0 && cycles >= s.config.Cycles {
			s.logger.Info("session complete", ports.Uint64("cycles", cycles))
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Session) record(err error) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Record(err)
	return s.stats.Cycles
}

func (s *Session) applyPending() {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	type update struct {
		r      flow.DiscreteReader
		slices uint16
	}
	updates := make([]update, 0, len(s.pending))
	for name, slices := range s.pending {
		updates = append(updates, update{s.discrete[name], slices})
		delete(s.pending, name)
	}
	s.mu.Unlock()

	for _, u := range updates {
		s.group.AddDiscreteReader(u.r, u.slices)
		s.logger.Info("threshold updated",
			ports.String("flow", u.r.Config().Name),
			ports.Int("min_valid_slices", int(u.slices)))
	}
}

func (s *Session) finish() {
	report := s.buildReport()
	s.mu.Lock()
	s.report = report
	s.mu.Unlock()

	if s.reports == nil {
		return
	}
	if err := s.reports.Save(context.Background(), report); err != nil {
		s.logger.Error("failed to save report", ports.Err(err))
	}
}
