package cliconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/flowsync/internal/domain"
	"github.com/bft-labs/flowsync/pkg/flow"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Flows, 2)
	assert.Equal(t, flow.KindDiscrete, cfg.Flows[0].Kind)
	assert.Equal(t, flow.KindContinuous, cfg.Flows[1].Kind)
	assert.NotEqual(t, cfg.Flows[0].ID, cfg.Flows[1].ID)
	assert.Zero(t, cfg.Cycles, "runs until signalled by default")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero cycle interval", func(c *Config) { c.CycleInterval = 0 }},
		{"zero wait timeout", func(c *Config) { c.WaitTimeout = 0 }},
		{"negative latency", func(c *Config) { c.PresentationLatency = -time.Millisecond }},
		{"negative cycles", func(c *Config) { c.Cycles = -1 }},
		{"no flows", func(c *Config) { c.Flows = nil }},
		{"duplicate flow names", func(c *Config) { c.Flows[1].Name = c.Flows[0].Name }},
		{"threshold above slices", func(c *Config) { c.Flows[0].MinValidSlices = c.Flows[0].Slices + 1 }},
		{"continuous without batch", func(c *Config) { c.Flows[1].Batch = 0 }},
		{"undefined rate", func(c *Config) { c.Flows[0].Rate.Denominator = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidConfig)
		})
	}
}

func TestConfig_Validate_AcceptsZeroLatency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PresentationLatency = 0
	cfg.LogLevel = "WARNING"
	assert.NoError(t, cfg.Validate())
}

func TestParseFlows(t *testing.T) {
	specs, err := ParseFlows([]FileFlow{
		{Name: "a", Kind: "discrete", Rate: "25/1", Slices: 1},
		{Name: "a", Kind: "continuous", Rate: "48000", Batch: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, specs[0].ID, specs[1].ID, "same name derives the same id")

	bad := []FileFlow{
		{Name: "k", Kind: "audio", Rate: "1/1"},
		{Name: "r", Kind: "discrete", Rate: "1/x"},
		{Name: "i", Kind: "discrete", Rate: "1/1", ID: "not-a-uuid"},
		{Name: "s", Kind: "discrete", Rate: "1/1", Slices: 70000},
		{Name: "d", Kind: "discrete", Rate: "1/1", SourceDelay: "later"},
		{Name: "j", Kind: "discrete", Rate: "1/1", Jitter: "x"},
		{Name: "b", Kind: "continuous", Rate: "1/1", Batch: -1},
	}
	for _, e := range bad {
		_, err := ParseFlows([]FileFlow{e})
		assert.Error(t, err, "entry %q", e.Name)
	}
}
