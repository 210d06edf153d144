package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sarsim/internal/admin"
	"sarsim/internal/config"
	"sarsim/internal/logging"
	"sarsim/internal/scenario"
	"sarsim/internal/sim"
)

var (
	simPrintOnly  bool
	simTUI        bool
	simConfigPath string
	simSchemaPath string
	simLogFile    string
	simAdminAddr  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time SAR drone simulator",
	Long:  "simulate starts a search-and-rescue mission emitting drone state and detection events.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}
		scn := buildScenario(cfg, scenario.WithCreatedAt(time.Now()))

		logger := logging.New()
		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), logger))
		defer cancel()

		var (
			writer      sim.StateWriter
			eventWriter sim.EventWriter
			tui         *sim.TUIWriter
			cleanup     = func() {}
		)
		if simTUI {
			tui = sim.NewTUIWriter(scn)
			writer, eventWriter = tui, tui
			if simLogFile != "" {
				fw, err := sim.NewFileWriter(simLogFile, simLogFile+".events")
				if err != nil {
					return err
				}
				cleanup = func() { fw.Close() }
				mw := sim.NewMultiWriter([]sim.StateWriter{tui, fw}, []sim.EventWriter{tui, fw})
				writer, eventWriter = mw, mw
			}
		} else {
			interactive := term.IsTerminal(int(os.Stdout.Fd()))
			writer, eventWriter, cleanup, err = newWriters(scn, simPrintOnly, interactive, simLogFile)
			if err != nil {
				return err
			}
		}
		defer cleanup()

		simulator := sim.NewSimulator(cfg, scn, writer, eventWriter)

		if tui != nil {
			tui.SetWaypointFn(simulator.SetWaypoint)
			tui.SetRTBFn(simulator.ReturnToBase)
			tui.SetPartitionFn(func() { simulator.RunPartition(nil) })
			tui.SetCoverageFn(func() {
				simulator.StartCoverage(coverageSpacing(cfg), cfg.Coverage.OverlapRatio)
			})
		}

		if simAdminAddr != "" {
			srv := admin.NewServer(simulator)
			go func() {
				logger.Info("admin API listening", "addr", simAdminAddr)
				if err := srv.Start(simAdminAddr); err != nil {
					logger.Error("admin server failed", "error", err)
				}
			}()
			if tui != nil {
				tui.SetAdminStatus(true)
			}
		}

		go simulator.Run(ctx)
		go simulator.RunDetection(ctx)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		cancel()
		if tui != nil {
			tui.Close()
		}
		logger.Info("simulation stopped")
		return nil
	},
}

// buildScenario regenerates the sector from the configured seed. Extra
// options are appended after preset and name so callers can override both.
func buildScenario(cfg *config.SimulationConfig, extra ...scenario.Option) *scenario.Scenario {
	opts := []scenario.Option{}
	if preset, ok := scenario.Presets[cfg.Scenario.Preset]; ok {
		opts = append(opts, scenario.WithAnomalyConfig(preset))
	}
	if cfg.Scenario.Name != "" {
		opts = append(opts, scenario.WithName(cfg.Scenario.Name))
	}
	opts = append(opts, extra...)
	bounds := scenario.KmBounds{Width: cfg.Scenario.WidthKm, Height: cfg.Scenario.HeightKm}
	return scenario.Generate(cfg.Scenario.Seed, bounds, opts...)
}

func coverageSpacing(cfg *config.SimulationConfig) float64 {
	if cfg.Coverage.SpacingMeters > 0 {
		return cfg.Coverage.SpacingMeters
	}
	return 250
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print state rows to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Run the interactive terminal dashboard")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export state/event logs (JSONL)")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", ":8080", "Admin API listen address (empty disables)")
}
