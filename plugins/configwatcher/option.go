package configwatcher

import "github.com/bft-labs/flowsync/pkg/flowsync"

// WithConfigWatcher returns a flowsync Option that enables config file
// watching. The runner's Config.ConfigPath names the watched file.
//
// Usage:
//
//	r, err := flowsync.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) flowsync.Option {
	return flowsync.WithPlugin(New(cfg))
}

// WithDefaultConfigWatcher enables config watching with default settings.
func WithDefaultConfigWatcher() flowsync.Option {
	return WithConfigWatcher(DefaultConfig())
}
