// Package configwatcher reloads readiness thresholds from the flowsync
// configuration file. When the file changes, the min_valid_slices of every
// grain flow is re-read and changed values are pushed to the running session.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/flowsync/internal/cliconfig"
	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/flowsync"
	"github.com/bft-labs/flowsync/pkg/log"
)

// Plugin implements config watching functionality.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration

	path       string
	logger     log.Logger
	thresholds flowsync.ThresholdUpdater
	applied    map[string]uint16
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	debounce   *time.Timer
	reloads    int
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before reloading.
	// Editors often write a file in several steps.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		applied:       make(map[string]uint16),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize records the thresholds currently in the file and starts watching it.
func (p *Plugin) Initialize(ctx context.Context, cfg flowsync.PluginConfig) error {
	p.mu.Lock()
	p.path = cfg.ConfigPath
	p.logger = cfg.Logger
	p.thresholds = cfg.Thresholds
	p.mu.Unlock()

	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}
	if p.path == "" || p.thresholds == nil || !cliconfig.FileExists(p.path) {
		p.logger.Warn("config watcher disabled: no config file", log.String("path", p.path))
		return nil
	}

	if flows, err := cliconfig.LoadFlows(p.path); err == nil {
		p.mu.Lock()
		for _, f := range flows {
			if f.Kind == flow.KindDiscrete {
				p.applied[f.Name] = f.MinValidSlices
			}
		}
		p.mu.Unlock()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace files by rename, which drops a
	// watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	p.logger.Info("config watcher plugin initialized", log.String("path", p.path))
	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// Reloads returns how many times the file was reloaded.
func (p *Plugin) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

// reload pushes every changed threshold. A file that fails to parse is
// ignored; the previous thresholds stay in effect.
func (p *Plugin) reload() {
	flows, err := cliconfig.LoadFlows(p.path)
	if err != nil {
		p.logger.Warn("config watcher: reload failed", log.Err(err))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloads++

	for _, f := range flows {
		if f.Kind != flow.KindDiscrete {
			continue
		}
		if prev, ok := p.applied[f.Name]; ok && prev == f.MinValidSlices {
			continue
		}
		if err := p.thresholds.UpdateThreshold(f.Name, f.MinValidSlices); err != nil {
			p.logger.Warn("config watcher: threshold rejected",
				log.String("flow", f.Name),
				log.Err(err))
			continue
		}
		p.applied[f.Name] = f.MinValidSlices
		p.logger.Info("config watcher: threshold changed",
			log.String("flow", f.Name),
			log.Uint16("min_valid_slices", f.MinValidSlices))
	}
}

// Ensure Plugin implements flowsync.Plugin.
var _ flowsync.Plugin = (*Plugin)(nil)
