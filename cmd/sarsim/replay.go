package main

import (
	"os"

	"github.com/spf13/cobra"

	"sarsim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayEvents    bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded state or event log",
	Long:  "replay feeds rows from a JSONL log back into GreptimeDB or STDOUT, preserving the recorded pacing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		writer, eventWriter, err := baseWriters(nil, replayPrintOnly, false)
		if err != nil {
			return err
		}
		if replayEvents {
			f, err := os.Open(replayInput)
			if err != nil {
				return err
			}
			defer f.Close()
			return sim.ReplayEvents(f, eventWriter, replaySpeed)
		}
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to JSONL log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 replays instantly)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	replayCmd.Flags().BoolVar(&replayEvents, "events", false, "Replay a detection event log instead of drone state")
	replayCmd.MarkFlagRequired("input")
}
