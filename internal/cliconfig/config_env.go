package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (FLOWSYNC_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", os.Getenv("FLOWSYNC_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("report-dir", os.Getenv("FLOWSYNC_REPORT_DIR"), &cfg.ReportDir)

	if err := s.setDuration("cycle-interval", os.Getenv("FLOWSYNC_CYCLE_INTERVAL"), &cfg.CycleInterval); err != nil {
		return err
	}
	if err := s.setDuration("wait-timeout", os.Getenv("FLOWSYNC_WAIT_TIMEOUT"), &cfg.WaitTimeout); err != nil {
		return err
	}
	if err := s.setDuration("latency", os.Getenv("FLOWSYNC_PRESENTATION_LATENCY"), &cfg.PresentationLatency); err != nil {
		return err
	}
	if err := s.setIntFromString("cycles", os.Getenv("FLOWSYNC_CYCLES"), &cfg.Cycles); err != nil {
		return err
	}

	s.setBoolFromString("watch-config", os.Getenv("FLOWSYNC_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
