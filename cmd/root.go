package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/policylab/fiscalsim/internal/config"
	"github.com/policylab/fiscalsim/internal/scenario"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fiscalsim",
	Short: "Monte Carlo fiscal-risk estimator for policy baskets",
	Long:  "Samples annual cost and revenue scenarios for a basket of policy proposals and estimates the probability that total cost exceeds a budget threshold.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// loadScenario resolves the active scenario: the --scenario flag if set,
// then the configured file, then the built-in basket.
func loadScenario(flagPath string) (*scenario.Scenario, error) {
	path := flagPath
	if path == "" {
		path = cfg.Scenario.File
	}
	if path == "" {
		return scenario.Default(), nil
	}
	return scenario.Load(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
