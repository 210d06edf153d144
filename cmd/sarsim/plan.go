package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"sarsim/internal/config"
	"sarsim/internal/plan"
	"sarsim/internal/sim"
)

var (
	planConfigPath string
	planSchemaPath string
	planSpacing    float64
	planOverlap    float64
)

// planOutput is the JSON document printed by the plan command.
type planOutput struct {
	Cells []plan.Cell         `json:"cells"`
	Plans []plan.CoveragePlan `json:"plans"`
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Partition the sector and print coverage plans",
	Long:  "plan regenerates the configured scenario, splits the sector across the fleet, and prints the resulting cells and sweep paths as JSON without running the simulation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(planConfigPath, planSchemaPath)
		if err != nil {
			return err
		}
		scn := buildScenario(cfg)

		spacing := planSpacing
		if spacing <= 0 {
			spacing = coverageSpacing(cfg)
		}
		overlap := planOverlap
		if overlap <= 0 {
			overlap = cfg.Coverage.OverlapRatio
		}

		simulator := sim.NewSimulator(cfg, scn, sim.NewJSONStdoutWriter(), nil)
		out := planOutput{
			Cells: simulator.RunPartition(nil),
			Plans: simulator.StartCoverage(spacing, overlap),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	planCmd.Flags().StringVar(&planConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	planCmd.Flags().StringVar(&planSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	planCmd.Flags().Float64Var(&planSpacing, "spacing", 0, "Lane spacing in meters (default from config)")
	planCmd.Flags().Float64Var(&planOverlap, "overlap", 0, "Lane overlap ratio (default from config)")
}
