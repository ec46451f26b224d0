package flowsync

import (
	"context"

	"github.com/bft-labs/flowsync/pkg/log"
)

// Plugin extends a Runner. Plugins are initialized on Start in registration
// order and shut down on Stop in reverse order.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize starts the plugin. The context ends when the runtime stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and waits for its goroutines.
	Shutdown(ctx context.Context) error
}

// ThresholdUpdater changes the readiness threshold of a grain flow. Updates
// take effect before the next cycle.
type ThresholdUpdater interface {
	UpdateThreshold(flow string, minValidSlices uint16) error
}

// PluginConfig is what a plugin gets from the runtime.
type PluginConfig struct {
	ConfigPath string
	Logger     log.Logger
	Thresholds ThresholdUpdater
}

// BasePlugin implements Plugin with no-op lifecycle methods.
type BasePlugin struct {
	name string
}

// NewBasePlugin creates a BasePlugin with the given name.
func NewBasePlugin(name string) BasePlugin {
	return BasePlugin{name: name}
}

// Name returns the plugin name.
func (p BasePlugin) Name() string { return p.name }

// Initialize does nothing.
func (BasePlugin) Initialize(ctx context.Context, cfg PluginConfig) error { return nil }

// Shutdown does nothing.
func (BasePlugin) Shutdown(ctx context.Context) error { return nil }
