package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/flowsync/internal/cliconfig"
	"github.com/bft-labs/flowsync/pkg/flowsync"
	"github.com/bft-labs/flowsync/pkg/log"
	"github.com/bft-labs/flowsync/plugins/configwatcher"
)

const longHelp = `
Synchronize a set of grain and sample flows against a shared clock.

flowsync publishes the configured flows in memory and runs a consumer that,
every cycle, waits until each flow holds the data that was captured at the
presentation origin. Flows that are found late are promoted to the front of
the scan order so the next cycle waits on them first.

Configuration is read from a TOML or YAML file, then FLOWSYNC_* environment
variables, then flags.`

var exampleUsage = strings.TrimSpace(`
  flowsync run --cycles 500 --report-dir /tmp/flowsync
  flowsync run --config $HOME/.flowsync/config.yaml --watch-config
  flowsync convert --rate 30000/1001 --index 1800
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	root := &cobra.Command{
		Use:           "flowsync",
		Short:         "Synchronize media flows against a shared clock",
		Long:          strings.TrimSpace(longHelp),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand(), newConvertCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "flowsync:", err)
		os.Exit(1)
	}
}

func newRunCommand() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Publish the configured flows and synchronize them until stopped",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s not found", cfgPath)
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := log.NewZerologAdapter(os.Stderr, cfg.LogLevel)
			logger.Info("configuration",
				log.String("config_path", cfgFile),
				log.Int("flows", len(cfg.Flows)),
				log.Duration("cycle_interval", cfg.CycleInterval),
				log.Duration("wait_timeout", cfg.WaitTimeout),
				log.Duration("presentation_latency", cfg.PresentationLatency),
				log.Int("cycles", cfg.Cycles),
			)

			return run(cmd.Context(), cfg, cfgFile, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.flowsync/config.toml)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flags.DurationVar(&cfg.CycleInterval, "cycle-interval", cfg.CycleInterval, "period between synchronization cycles")
	flags.DurationVar(&cfg.WaitTimeout, "wait-timeout", cfg.WaitTimeout, "upper bound on the wait of one cycle")
	flags.DurationVar(&cfg.PresentationLatency, "latency", cfg.PresentationLatency, "distance between now and the presentation origin")
	flags.IntVar(&cfg.Cycles, "cycles", cfg.Cycles, "stop after this many cycles (0 runs until interrupted)")
	flags.StringVar(&cfg.ReportDir, "report-dir", cfg.ReportDir, "directory for report.json (empty disables the report file)")
	flags.BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload min_valid_slices when the config file changes")

	return cmd
}

func run(parent context.Context, cfg cliconfig.Config, cfgFile string, logger *log.ZerologAdapter) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	libCfg := flowsync.Config{
		Flows:               cfg.Flows,
		CycleInterval:       cfg.CycleInterval,
		WaitTimeout:         cfg.WaitTimeout,
		PresentationLatency: cfg.PresentationLatency,
		Cycles:              uint64(cfg.Cycles),
		ReportDir:           cfg.ReportDir,
		ConfigPath:          cfgFile,
	}

	opts := []flowsync.Option{
		flowsync.WithLogger(logger),
		flowsync.WithEventHandler(promoteLogger{logger: logger}),
	}
	if cfg.WatchConfig {
		opts = append(opts, configwatcher.WithDefaultConfigWatcher())
	}

	r, err := flowsync.New(libCfg, opts...)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	if err := r.Start(ctx); err != nil {
		return fmt.Errorf("start runner: %w", err)
	}

	select {
	case <-ctx.Done():
		logger.Info("received signal, stopping")
	case <-r.Done():
	}

	if err := r.Stop(); err != nil && !errors.Is(err, flowsync.ErrNotRunning) {
		return fmt.Errorf("stop runner: %w", err)
	}
	if err := r.Err(); err != nil {
		return err
	}

	printReport(os.Stdout, r.Report())
	return nil
}

// promoteLogger logs scan-order changes at debug level.
type promoteLogger struct {
	flowsync.BaseEventHandler
	logger log.Logger
}

func (p promoteLogger) OnPromote(e flowsync.PromoteEvent) {
	p.logger.Debug("flow promoted",
		log.String("flow", e.Flow),
		log.Duration("max_source_delay", e.MaxSourceDelay),
	)
}
