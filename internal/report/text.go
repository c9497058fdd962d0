// Package report renders engine output for human and machine consumers.
// It only formats; all numbers come from the montecarlo package.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/policylab/fiscalsim/internal/montecarlo"
	"github.com/policylab/fiscalsim/internal/scenario"
)

// WriteText renders the sectioned summary report.
func WriteText(w io.Writer, sc *scenario.Scenario, sum *montecarlo.Summary) error {
	p := message.NewPrinter(language.English)
	names := displayNames(sc)
	nameFor := func(key string) string {
		if n, ok := names[key]; ok {
			return n
		}
		return key
	}

	line := func(format string, args ...any) error {
		_, err := p.Fprintf(w, format+"\n", args...)
		return err
	}

	title := "scenario"
	if sc != nil && sc.Name != "" {
		title = sc.Name
	}

	rule := "======================================================================"
	if err := line("%s", rule); err != nil {
		return eris.Wrap(err, "report: write text")
	}
	_ = line("MONTE CARLO SIMULATION RESULTS: %s", title)
	_ = line("%s", rule)
	_ = line("")
	_ = line("Run ID:           %s", sum.RunID)
	_ = line("Simulations run:  %d", sum.Simulations)
	_ = line("Budget threshold: $%.1fB", sum.Threshold)

	writeMetric := func(title string, m montecarlo.Metric) {
		_ = line("")
		_ = line("--- %s ---", title)
		_ = line("Mean:   $%.2fB", m.Mean)
		_ = line("Median: $%.2fB", m.Median)
		_ = line("Std:    $%.2fB", m.StdDev)
		_ = line("Range:  $%.2fB - $%.2fB", m.Min, m.Max)
		_ = line("Percentiles: 5th $%.2fB, 25th $%.2fB, 75th $%.2fB, 95th $%.2fB",
			m.P5, m.P25, m.P75, m.P95)
		_ = line("95%% CI for mean: $%.2fB - $%.2fB", m.CI95Lower, m.CI95Upper)
	}

	writeMetric("TOTAL POLICY COSTS", sum.TotalCost)
	writeMetric("REVENUE PROJECTIONS", sum.TotalRevenue)
	writeMetric("NET BUDGET IMPACT (Cost - Revenue)", sum.NetImpact)

	_ = line("")
	if sum.NetImpact.Mean > 0 {
		_ = line("Average deficit: $%.2fB", sum.NetImpact.Mean)
	} else {
		_ = line("Average surplus: $%.2fB", -sum.NetImpact.Mean)
	}

	_ = line("")
	_ = line("--- THRESHOLD ANALYSIS ---")
	_ = line("Times total cost exceeded $%.1fB: %d", sum.Threshold, sum.Exceedances)
	_ = line("Probability: %.4f", sum.ExceedanceProb)
	_ = line("Percentage:  %.2f%%", 100*sum.ExceedanceProb)

	_ = line("")
	_ = line("--- INDIVIDUAL PARAMETERS ---")
	for _, ps := range sum.Parameters {
		_ = line("%s (%s):", nameFor(ps.Key), ps.Category)
		_ = line("  Mean: $%.2fB, Median: $%.2fB, Std: $%.2fB", ps.Mean, ps.Median, ps.StdDev)
		_ = line("  Share of category mean: %.1f%%", 100*ps.MeanShare)
	}

	_ = line("")
	_ = line("--- VARIANCE CONTRIBUTION (sensitivity) ---")
	for _, ps := range bySensitivity(sum.Parameters) {
		_ = line("  %s: %.1f%%", nameFor(ps.Key), 100*ps.VarianceShare)
	}

	_ = line("")
	if err := line("%s", rule); err != nil {
		return eris.Wrap(err, "report: write text")
	}
	return nil
}

// WriteJSON writes the indented summary.
func WriteJSON(w io.Writer, sum *montecarlo.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sum); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}

// bySensitivity orders parameters by descending variance share, the order
// the sensitivity section reads best in.
func bySensitivity(params []montecarlo.ParameterStats) []montecarlo.ParameterStats {
	out := make([]montecarlo.ParameterStats, len(params))
	copy(out, params)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VarianceShare > out[j].VarianceShare
	})
	return out
}

// displayNames maps parameter keys to scenario display names, falling back
// to the key itself.
func displayNames(sc *scenario.Scenario) map[string]string {
	names := make(map[string]string)
	if sc == nil {
		return names
	}
	for _, def := range sc.Parameters {
		if def.Name != "" {
			names[def.Key] = def.Name
		} else {
			names[def.Key] = def.Key
		}
	}
	return names
}

// FormatBillions renders a dollar amount given in billions.
func FormatBillions(v float64) string {
	return fmt.Sprintf("$%.2fB", v)
}
