package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/flowsync/pkg/flowsync"
	"github.com/bft-labs/flowsync/pkg/rational"
	"github.com/bft-labs/flowsync/pkg/timing"
)

func newConvertCommand() *cobra.Command {
	var (
		rateText  string
		timestamp string
		index     uint64
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert between TAI timestamps and grain indices",
		Example: `  flowsync convert --rate 25 --timestamp 2024-01-01T00:00:00Z
  flowsync convert --rate 48000 --index 96000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := rational.ParseRate(rateText)
			if err != nil {
				return err
			}
			hasTS := cmd.Flags().Changed("timestamp")
			hasIndex := cmd.Flags().Changed("index")
			if hasTS == hasIndex {
				return errors.New("exactly one of --timestamp or --index is required")
			}

			out := cmd.OutOrStdout()
			if hasIndex {
				ts := rational.IndexToTimestamp(rate, index)
				fmt.Fprintf(out, "index %d at %s -> timestamp %s (%s UTC)\n",
					index, rate, ts, ts.Time().Format(time.RFC3339Nano))
				return nil
			}

			ts, err := parseTimestamp(timestamp)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "timestamp %s at %s -> index %d\n",
				ts, rate, rational.TimestampToIndex(rate, ts))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&rateText, "rate", "", "rate as N/D or N (e.g. 30000/1001)")
	flags.StringVar(&timestamp, "timestamp", "", "TAI nanoseconds, or an RFC 3339 UTC time")
	flags.Uint64Var(&index, "index", 0, "grain or sample index")
	_ = cmd.MarkFlagRequired("rate")

	return cmd
}

// parseTimestamp accepts raw TAI nanoseconds or an RFC 3339 wall-clock time.
func parseTimestamp(s string) (timing.Timepoint, error) {
	if ns, err := strconv.ParseInt(s, 10, 64); err == nil {
		return timing.Timepoint(ns), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("parse timestamp %q: want nanoseconds or RFC 3339", s)
	}
	return timing.FromTime(t), nil
}

func printReport(w io.Writer, rep flowsync.Report) {
	s := rep.Stats
	fmt.Fprintf(w, "cycles: %d ready: %d timeouts: %d errors: %d\n",
		s.Cycles, s.Ready, s.Timeouts, s.Errors)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FLOW\tKIND\tRATE\tMIN SLICES\tMAX DELAY")
	for _, f := range rep.Flows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", f.Name, f.Kind, f.Rate, f.MinValidSlices, f.MaxSourceDelay)
	}
	_ = tw.Flush()
}
