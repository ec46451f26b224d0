package flowsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/flowsync/internal/adapters/fs"
	"github.com/bft-labs/flowsync/internal/adapters/memflow"
	"github.com/bft-labs/flowsync/internal/app"
	"github.com/bft-labs/flowsync/internal/domain"
	"github.com/bft-labs/flowsync/internal/ports"
	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/log"
	"github.com/bft-labs/flowsync/pkg/rational"
	"github.com/bft-labs/flowsync/pkg/syncgroup"
	"github.com/bft-labs/flowsync/pkg/timing"
)

// Runner is an embeddable flow synchronization runtime.
// Use New() to create an instance, then Start() to begin.
type Runner struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	logger    log.Logger
	events    eventBridge

	mu       sync.RWMutex
	session  *app.Session
	done     chan struct{}
	err      error
	report   domain.Report
	shutdown func()
}

// New creates a Runner in StateStopped. Returns an error if the
// configuration is invalid.
func New(cfg Config, opts ...Option) (*Runner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	events := eventBridge{handler: o.eventHandler}
	closed := make(chan struct{})
	close(closed)

	return &Runner{
		config:    cfg,
		opts:      o,
		lifecycle: app.NewLifecycle(o.logger, events),
		logger:    o.logger,
		events:    events,
		done:      closed,
	}, nil
}

// runtime is everything one Start builds.
type runtime struct {
	session   *app.Session
	producers []*app.Producer
	flows     []io.Closer
}

func (r *Runner) build() *runtime {
	clock := r.opts.clock
	group := syncgroup.New(
		syncgroup.WithLogger(r.logger),
		syncgroup.WithClock(clock),
		syncgroup.WithObserver(r.events),
	)

	var reports ports.ReportRepository
	if r.config.ReportDir != "" {
		reports = fs.NewReportFileRepository(r.config.ReportDir)
	}

	session := app.NewSession(app.SessionConfig{
		CycleInterval:       r.config.CycleInterval,
		WaitTimeout:         r.config.WaitTimeout,
		PresentationLatency: r.config.PresentationLatency,
		Cycles:              r.config.Cycles,
	}, group, clock, reports, r.logger)

	rt := &runtime{session: session}
	for _, spec := range r.config.Flows {
		mo := memflow.Options{
			ID:             spec.ID,
			Name:           spec.Name,
			Rate:           spec.Rate,
			SlicesPerGrain: spec.Slices,
			History:        spec.History,
			Clock:          clock,
		}
		switch spec.Kind {
		case flow.KindDiscrete:
			f := memflow.NewDiscreteFlow(mo)
			session.AddDiscrete(f, spec.MinValidSlices)
			rt.producers = append(rt.producers, app.NewGrainProducer(spec, f, clock, r.logger))
			rt.flows = append(rt.flows, f)
		case flow.KindContinuous:
			f := memflow.NewContinuousFlow(mo)
			session.AddContinuous(f)
			rt.producers = append(rt.producers, app.NewSampleProducer(spec, f, clock, r.logger))
			rt.flows = append(rt.flows, f)
		}
		r.logger.Info("flow created",
			log.String("flow", spec.Name),
			log.Stringer("kind", spec.Kind),
			log.Stringer("rate", spec.Rate),
			log.Duration("grain", rational.GrainDuration(spec.Rate)))
	}
	return rt
}

// Start builds the flows and runs producers and the session in the
// background. Returns immediately. The context bounds the whole run.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.lifecycle.CanStart() {
		return ErrAlreadyRunning
	}
	if err := r.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.lifecycle.SetCancel(cancel)

	rt := r.build()
	r.session = rt.session
	r.done = make(chan struct{})
	r.err = nil

	pluginCfg := PluginConfig{
		ConfigPath: r.config.ConfigPath,
		Logger:     r.logger,
		Thresholds: r,
	}
	var initialized []Plugin
	for _, p := range r.opts.plugins {
		if err := initPlugin(runCtx, p, pluginCfg); err != nil {
			r.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			shutdownPlugins(initialized, r.logger)
			close(r.done)
			_ = r.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		initialized = append(initialized, p)
		r.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}
	var once sync.Once
	r.shutdown = func() { once.Do(func() { shutdownPlugins(initialized, r.logger) }) }

	done := r.done
	shutdown := r.shutdown
	r.lifecycle.AddWorker()
	go func() {
		defer r.lifecycle.WorkerDone()
		defer close(done)

		if err := r.lifecycle.TransitionTo(app.StateRunning, "runtime starting"); err != nil {
			r.logger.Error("failed to transition to running", log.Err(err))
			cancel()
			return
		}

		err := run(runCtx, rt)
		for _, f := range rt.flows {
			_ = f.Close()
		}

		r.mu.Lock()
		r.err = err
		r.report = rt.session.Report()
		r.mu.Unlock()

		if err != nil {
			r.logger.Error("runtime error", log.Err(err))
			shutdown()
			_ = r.lifecycle.TransitionTo(app.StateCrashed, err.Error())
			return
		}
		// Finished on its own (cycle count reached or parent context ended).
		if r.lifecycle.TransitionFrom(app.StateRunning, app.StateStopped, "session complete") == nil {
			shutdown()
			cancel()
		}
	}()

	return nil
}

// run supervises producers and the session. Producers stop when the session ends.
func run(ctx context.Context, rt *runtime) error {
	g, gctx := errgroup.WithContext(ctx)
	prodCtx, stopProducers := context.WithCancel(gctx)

	for _, p := range rt.producers {
		p := p
		g.Go(func() error {
			return ignoreCanceled(p.Run(prodCtx))
		})
	}
	g.Go(func() error {
		defer stopProducers()
		return ignoreCanceled(rt.session.Run(gctx))
	})

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Stop cancels the run, waits for producers and the session, then shuts
// plugins down. Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (r *Runner) Stop() error {
	r.mu.Lock()

	if !r.lifecycle.CanStop() {
		r.mu.Unlock()
		return ErrNotRunning
	}
	if err := r.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		r.mu.Unlock()
		return err
	}
	shutdown := r.shutdown
	r.mu.Unlock()

	r.lifecycle.Cancel()
	err := r.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	if shutdown != nil {
		shutdown()
	}

	if err != nil {
		_ = r.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = r.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (r *Runner) Status() State {
	return r.lifecycle.State()
}

// Done returns a channel closed when the current run ended, whatever the
// reason. Before the first Start it is already closed.
func (r *Runner) Done() <-chan struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.done
}

// Err returns the error that ended the last run, if any.
func (r *Runner) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Report returns the report of the last completed run.
func (r *Runner) Report() Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.report
}

// Stats returns the cycle counters of the current or last run.
func (r *Runner) Stats() CycleStats {
	r.mu.RLock()
	s := r.session
	r.mu.RUnlock()
	if s == nil {
		return CycleStats{}
	}
	return s.Stats()
}

// UpdateThreshold changes the readiness threshold of a grain flow of the
// running session.
func (r *Runner) UpdateThreshold(name string, minValidSlices uint16) error {
	var spec *FlowConfig
	for i := range r.config.Flows {
		if r.config.Flows[i].Name == name {
			spec = &r.config.Flows[i]
			break
		}
	}
	if spec == nil || spec.Kind != flow.KindDiscrete {
		return fmt.Errorf("%w: %q", ErrUnknownFlow, name)
	}
	if minValidSlices > spec.Slices {
		return fmt.Errorf("%w: flow %q: min_valid_slices %d exceeds slices %d",
			ErrInvalidConfig, name, minValidSlices, spec.Slices)
	}

	r.mu.RLock()
	s := r.session
	r.mu.RUnlock()
	if s == nil {
		return ErrNotRunning
	}
	return s.UpdateThreshold(name, minValidSlices)
}

func initPlugin(ctx context.Context, p Plugin, cfg PluginConfig) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("plugin %s panicked: %v", p.Name(), rec)
		}
	}()
	return p.Initialize(ctx, cfg)
}

func shutdownPlugins(plugins []Plugin, logger log.Logger) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := shutdownPlugin(ctx, p); err != nil {
			logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			continue
		}
		logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
	}
}

func shutdownPlugin(ctx context.Context, p Plugin) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("plugin %s panicked: %v", p.Name(), rec)
		}
	}()
	return p.Shutdown(ctx)
}

var _ ThresholdUpdater = (*Runner)(nil)

// validateModuleVersions checks that all module versions are compatible.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"rational":  {rational.Version, rational.MinCompatibleVersion},
		"timing":    {timing.Version, timing.MinCompatibleVersion},
		"flow":      {flow.Version, flow.MinCompatibleVersion},
		"syncgroup": {syncgroup.Version, syncgroup.MinCompatibleVersion},
		"log":       {log.Version, log.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible checks if version >= minVersion ("major.minor.patch").
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
