package syncgroup

import (
	"github.com/bft-labs/flowsync/pkg/log"
	"github.com/bft-labs/flowsync/pkg/timing"
)

// Option configures optional behavior of a Group.
type Option func(*options)

type options struct {
	logger   log.Logger
	clock    timing.Source
	observer Observer
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		clock:  timing.DefaultSource,
	}
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the TAI clock used to measure source delay.
// If not provided, the system TAI clock is used.
func WithClock(clock timing.Source) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithObserver registers an observer for promotions and failed waits.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// Observer receives notifications from WaitForDataAt. Callbacks run
// synchronously on the goroutine calling WaitForDataAt and must return quickly.
type Observer interface {
	// OnPromote is called when an entry moved to the front of the scan order.
	OnPromote(info EntryInfo)

	// OnWaitFailed is called when a reader wait returned an error.
	OnWaitFailed(info EntryInfo, index uint64, err error)
}
