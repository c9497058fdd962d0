package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Show the active parameter basket",
	Long: `Prints the parameters of the active scenario with their distributions
and ±2σ estimate ranges, without running a simulation.`,
	RunE: runScenario,
}

func init() {
	scenarioCmd.Flags().String("scenario", "", "scenario YAML file (default: built-in basket)")
	rootCmd.AddCommand(scenarioCmd)
}

func runScenario(cmd *cobra.Command, _ []string) error {
	scenarioPath, _ := cmd.Flags().GetString("scenario")
	sc, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Fprintf(out, "%s\n", sc.Description)
	}
	fmt.Fprintf(out, "Budget threshold: $%.1fB\n\n", sc.Threshold)

	for _, def := range sc.Parameters {
		low, high := def.Range()
		fmt.Fprintf(out, "%s [%s]\n", def.Name, def.Category)
		fmt.Fprintf(out, "  key: %s\n", def.Key)
		fmt.Fprintf(out, "  distribution: N(%.3f, %.3f), range $%.2fB - $%.2fB\n", def.Mean, def.StdDev, low, high)
		if def.Description != "" {
			fmt.Fprintf(out, "  %s\n", def.Description)
		}
		if def.Source != "" {
			fmt.Fprintf(out, "  source: %s\n", def.Source)
		}
		fmt.Fprintln(out)
	}

	return nil
}
