package flowsync

import (
	"github.com/bft-labs/flowsync/pkg/log"
	"github.com/bft-labs/flowsync/pkg/timing"
)

// Option configures optional behavior of a Runner.
type Option func(*options)

type options struct {
	logger       log.Logger
	clock        timing.Source
	eventHandler EventHandler
	plugins      []Plugin
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		clock:  timing.DefaultSource,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the TAI time source shared by producers, flows and the session.
func WithClock(clock timing.Source) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithEventHandler sets a handler for runtime events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the Runner starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
