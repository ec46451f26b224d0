package flowsync

import (
	"fmt"
	"time"

	"github.com/bft-labs/flowsync/internal/domain"
)

// FlowConfig declares one flow of the runtime.
type FlowConfig = domain.FlowSpec

// Report is the outcome of a consumer session.
type Report = domain.Report

// FlowReport describes one flow in a Report.
type FlowReport = domain.FlowReport

// CycleStats counts session cycles by outcome.
type CycleStats = domain.CycleStats

// Default runtime settings.
const (
	DefaultCycleInterval = 20 * time.Millisecond
	DefaultWaitTimeout   = 100 * time.Millisecond
)

// Config holds the runtime configuration.
type Config struct {
	// Flows are created, published and read by the runtime. Names must be unique.
	Flows []FlowConfig

	// CycleInterval is the period between synchronization cycles.
	CycleInterval time.Duration
	// WaitTimeout bounds the wait of each cycle.
	WaitTimeout time.Duration
	// PresentationLatency is how far in the past each cycle's origin lies.
	PresentationLatency time.Duration
	// Cycles stops the runtime after this many cycles. Zero runs until Stop.
	Cycles uint64

	// ReportDir is where the session report is written. Empty disables it.
	ReportDir string
	// ConfigPath is handed to plugins that watch the configuration file.
	ConfigPath string
}

// SetDefaults fills zero durations with defaults.
func (c *Config) SetDefaults() {
	if c.CycleInterval <= 0 {
		c.CycleInterval = DefaultCycleInterval
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if c.PresentationLatency < 0 {
		return fmt.Errorf("%w: presentation latency must not be negative", ErrInvalidConfig)
	}
	return domain.ValidateFlows(c.Flows)
}
