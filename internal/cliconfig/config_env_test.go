package cliconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"FLOWSYNC_LOG_LEVEL":            "warn",
				"FLOWSYNC_CYCLE_INTERVAL":       "5ms",
				"FLOWSYNC_WAIT_TIMEOUT":         "1s",
				"FLOWSYNC_PRESENTATION_LATENCY": "30ms",
				"FLOWSYNC_CYCLES":               "42",
				"FLOWSYNC_REPORT_DIR":           "/tmp/reports",
				"FLOWSYNC_WATCH_CONFIG":         "1",
			},
			changed: map[string]bool{},
			expected: Config{
				LogLevel:            "warn",
				CycleInterval:       5 * time.Millisecond,
				WaitTimeout:         time.Second,
				PresentationLatency: 30 * time.Millisecond,
				Cycles:              42,
				ReportDir:           "/tmp/reports",
				WatchConfig:         true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"FLOWSYNC_LOG_LEVEL": "error",
				"FLOWSYNC_CYCLES":    "7",
			},
			changed:  map[string]bool{"log-level": true},
			initial:  Config{LogLevel: "debug"},
			expected: Config{LogLevel: "debug", Cycles: 7},
		},
		{
			name:     "non-positive cycles are ignored",
			envVars:  map[string]string{"FLOWSYNC_CYCLES": "0"},
			changed:  map[string]bool{},
			initial:  Config{Cycles: 3},
			expected: Config{Cycles: 3},
		},
		{
			name:     "watch config false",
			envVars:  map[string]string{"FLOWSYNC_WATCH_CONFIG": "no"},
			changed:  map[string]bool{},
			initial:  Config{WatchConfig: true},
			expected: Config{WatchConfig: false},
		},
		{
			name:    "invalid duration",
			envVars: map[string]string{"FLOWSYNC_WAIT_TIMEOUT": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "invalid int",
			envVars: map[string]string{"FLOWSYNC_CYCLES": "many"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
		})
	}
}
