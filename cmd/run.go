package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/policylab/fiscalsim/internal/montecarlo"
	"github.com/policylab/fiscalsim/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation and write a report",
	Long: `Draws joint cost/revenue scenarios from the active parameter basket and
reports summary statistics, threshold exceedance, and sensitivity.

Examples:
  # Reference run: 10,000 draws, $2.0B threshold, seed 42
  fiscalsim run

  # More draws against a higher threshold, parallel column draws
  fiscalsim run --simulations 100000 --threshold 5.0 --workers 4

  # Non-reproducible run (seed from entropy)
  fiscalsim run --random-seed

  # Custom basket, full table as CSV
  fiscalsim run --scenario basket.yaml --format csv --output scenarios.csv

  # Workbook with summary, sensitivity, and scenario sheets
  fiscalsim run --format xlsx --output results.xlsx`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.Int("simulations", 0, "number of scenario draws (default from config)")
	f.Float64("threshold", -1, "budget threshold in billions (default from config)")
	f.Uint64("seed", 0, "random seed (default from config)")
	f.Bool("random-seed", false, "ignore the configured seed and draw one from entropy")
	f.Int("workers", 0, "parallel column draws; 1 = single sequential stream")
	f.String("scenario", "", "scenario YAML file (default: built-in basket)")
	f.String("format", "table", "output format: table, json, csv, or xlsx")
	f.String("output", "", "output file path (default: stdout; required for xlsx)")

	rootCmd.AddCommand(runCmd)
}

// runOptions builds engine options from config defaults and flag overrides.
func runOptions(cmd *cobra.Command) montecarlo.Options {
	opts := montecarlo.Options{
		Simulations: cfg.Sim.Simulations,
		Threshold:   cfg.Sim.Threshold,
		Seed:        montecarlo.FixedSeed(cfg.Sim.Seed),
		Workers:     cfg.Sim.Workers,
	}

	if n, _ := cmd.Flags().GetInt("simulations"); n != 0 {
		opts.Simulations = n
	}
	if t, _ := cmd.Flags().GetFloat64("threshold"); t >= 0 {
		opts.Threshold = t
	}
	if cmd.Flags().Changed("seed") {
		s, _ := cmd.Flags().GetUint64("seed")
		opts.Seed = montecarlo.FixedSeed(s)
	}
	if random, _ := cmd.Flags().GetBool("random-seed"); random {
		opts.Seed = nil
	}
	if w, _ := cmd.Flags().GetInt("workers"); w != 0 {
		opts.Workers = w
	}

	return opts
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "run"))

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	scenarioPath, _ := cmd.Flags().GetString("scenario")

	switch format {
	case "table", "json", "csv", "xlsx":
	default:
		return eris.Errorf("run: --format must be table, json, csv, or xlsx (got %q)", format)
	}
	if format == "xlsx" && outputPath == "" {
		return eris.New("run: --output is required with --format xlsx")
	}

	sc, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}
	set, err := sc.ParamSet()
	if err != nil {
		return err
	}

	opts := runOptions(cmd)
	sample, err := montecarlo.Run(ctx, set, opts)
	if err != nil {
		return err
	}
	summary, err := montecarlo.Summarize(sample, opts.Threshold)
	if err != nil {
		return err
	}

	log.Info("simulation summarized",
		zap.String("scenario", sc.Name),
		zap.String("run_id", summary.RunID),
		zap.Float64("mean_total_cost", summary.TotalCost.Mean),
		zap.Float64("exceedance_prob", summary.ExceedanceProb),
	)

	if format == "xlsx" {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return eris.Wrapf(err, "run: create output dir for %s", outputPath)
		}
		return report.WriteXLSX(outputPath, sample, summary)
	}

	out := cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "run: create %s", outputPath)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "table":
		return report.WriteText(out, sc, summary)
	case "json":
		return report.WriteJSON(out, summary)
	case "csv":
		return report.WriteCSV(out, sample)
	}
	return nil
}
