package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/flowsync/internal/domain"
	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/rational"
)

// Config holds CLI configuration for flowsync.
type Config struct {
	LogLevel string

	CycleInterval       time.Duration
	WaitTimeout         time.Duration
	PresentationLatency time.Duration
	Cycles              int

	ReportDir   string
	WatchConfig bool

	Flows []domain.FlowSpec
}

// DefaultConfig returns a Config with default values and a demo flow set.
func DefaultConfig() Config {
	return Config{
		LogLevel:            "info",
		CycleInterval:       20 * time.Millisecond,
		WaitTimeout:         100 * time.Millisecond,
		PresentationLatency: 60 * time.Millisecond,
		Flows:               DefaultFlows(),
	}
}

// DefaultFlows returns one 50 Hz video flow and one 48 kHz audio flow.
func DefaultFlows() []domain.FlowSpec {
	return []domain.FlowSpec{
		{
			ID:             flowID("", "video"),
			Name:           "video",
			Kind:           flow.KindDiscrete,
			Rate:           rational.Rate50,
			Slices:         1080,
			MinValidSlices: 1080,
			SourceDelay:    5 * time.Millisecond,
			Jitter:         10 * time.Millisecond,
			History:        64,
		},
		{
			ID:          flowID("", "audio"),
			Name:        "audio",
			Kind:        flow.KindContinuous,
			Rate:        rational.Rate48kHz,
			SourceDelay: 2 * time.Millisecond,
			Jitter:      5 * time.Millisecond,
			Batch:       480,
			History:     48000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", domain.ErrInvalidConfig, c.LogLevel)
	}
	if c.CycleInterval <= 0 {
		return fmt.Errorf("%w: cycle interval must be positive", domain.ErrInvalidConfig)
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("%w: wait timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.PresentationLatency < 0 {
		return fmt.Errorf("%w: presentation latency must not be negative", domain.ErrInvalidConfig)
	}
	if c.Cycles < 0 {
		return fmt.Errorf("%w: cycles must not be negative", domain.ErrInvalidConfig)
	}
	return domain.ValidateFlows(c.Flows)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
