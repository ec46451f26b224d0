package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/bft-labs/flowsync/internal/domain"
)

// FileConfig mirrors Config but uses strings for durations and rates to keep
// the file format friendly. The same struct is decoded from TOML and YAML.
type FileConfig struct {
	LogLevel            string     `toml:"log_level" yaml:"log_level"`
	CycleInterval       string     `toml:"cycle_interval" yaml:"cycle_interval"`
	WaitTimeout         string     `toml:"wait_timeout" yaml:"wait_timeout"`
	PresentationLatency string     `toml:"presentation_latency" yaml:"presentation_latency"`
	Cycles              int        `toml:"cycles" yaml:"cycles"`
	ReportDir           string     `toml:"report_dir" yaml:"report_dir"`
	WatchConfig         *bool      `toml:"watch_config" yaml:"watch_config"`
	Flows               []FileFlow `toml:"flows" yaml:"flows"`
}

// FileFlow is one [[flows]] entry.
type FileFlow struct {
	ID             string `toml:"id" yaml:"id"`
	Name           string `toml:"name" yaml:"name"`
	Kind           string `toml:"kind" yaml:"kind"`
	Rate           string `toml:"rate" yaml:"rate"`
	Slices         int    `toml:"slices" yaml:"slices"`
	MinValidSlices int    `toml:"min_valid_slices" yaml:"min_valid_slices"`
	SourceDelay    string `toml:"source_delay" yaml:"source_delay"`
	Jitter         string `toml:"jitter" yaml:"jitter"`
	Batch          int    `toml:"batch" yaml:"batch"`
	History        int    `toml:"history" yaml:"history"`
}

// LoadFileConfig reads and parses a config file. Files ending in .yaml or
// .yml are parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if isYAML(path) {
		err = yaml.Unmarshal(b, &fc)
	} else {
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return fc, nil
}

// LoadFlows reads and parses only the flow declarations of a config file.
func LoadFlows(path string) ([]domain.FlowSpec, error) {
	fc, err := LoadFileConfig(path)
	if err != nil {
		return nil, err
	}
	if len(fc.Flows) == 0 {
		return nil, fmt.Errorf("%s declares no flows", filepath.Base(path))
	}
	return ParseFlows(fc.Flows)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.flowsync/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".flowsync", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map). Flows have
// no flags; a file that declares flows replaces the default set.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("report-dir", fc.ReportDir, &cfg.ReportDir)

	if err := s.setDuration("cycle-interval", fc.CycleInterval, &cfg.CycleInterval); err != nil {
		return err
	}
	if err := s.setDuration("wait-timeout", fc.WaitTimeout, &cfg.WaitTimeout); err != nil {
		return err
	}
	if err := s.setDuration("latency", fc.PresentationLatency, &cfg.PresentationLatency); err != nil {
		return err
	}

	s.setInt("cycles", fc.Cycles, &cfg.Cycles)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	if len(fc.Flows) > 0 {
		flows, err := ParseFlows(fc.Flows)
		if err != nil {
			return err
		}
		cfg.Flows = flows
	}
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
