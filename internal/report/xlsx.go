package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/policylab/fiscalsim/internal/montecarlo"
)

// WriteXLSX writes a workbook with the summary, per-parameter sensitivity,
// and the full scenario table.
func WriteXLSX(path string, s *montecarlo.Sample, sum *montecarlo.Summary) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, sum); err != nil {
		return err
	}
	if err := addSensitivitySheet(f, sum); err != nil {
		return err
	}
	if err := addScenarioSheet(f, s); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save xlsx %s", path)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, sum *montecarlo.Summary) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	kv := func(key string, set func(*xlsx.Cell)) {
		row := sheet.AddRow()
		row.AddCell().Value = key
		set(row.AddCell())
	}

	kv("run_id", func(c *xlsx.Cell) { c.Value = sum.RunID })
	kv("simulations", func(c *xlsx.Cell) { c.SetInt(sum.Simulations) })
	kv("threshold", func(c *xlsx.Cell) { c.SetFloat(sum.Threshold) })
	kv("exceedances", func(c *xlsx.Cell) { c.SetInt(sum.Exceedances) })
	kv("exceedance_prob", func(c *xlsx.Cell) { c.SetFloat(sum.ExceedanceProb) })

	sheet.AddRow()
	header := sheet.AddRow()
	for _, h := range []string{"metric", "mean", "median", "std_dev", "min", "max", "p5", "p25", "p75", "p95", "ci95_lower", "ci95_upper"} {
		header.AddCell().Value = h
	}
	addMetric := func(name string, m montecarlo.Metric) {
		row := sheet.AddRow()
		row.AddCell().Value = name
		for _, v := range []float64{m.Mean, m.Median, m.StdDev, m.Min, m.Max, m.P5, m.P25, m.P75, m.P95, m.CI95Lower, m.CI95Upper} {
			row.AddCell().SetFloat(v)
		}
	}
	addMetric("total_cost", sum.TotalCost)
	addMetric("total_revenue", sum.TotalRevenue)
	addMetric("net_impact", sum.NetImpact)

	return nil
}

func addSensitivitySheet(f *xlsx.File, sum *montecarlo.Summary) error {
	sheet, err := f.AddSheet("Sensitivity")
	if err != nil {
		return eris.Wrap(err, "report: add sensitivity sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"key", "category", "mean", "median", "std_dev", "mean_share", "variance_share"} {
		header.AddCell().Value = h
	}
	for _, ps := range bySensitivity(sum.Parameters) {
		row := sheet.AddRow()
		row.AddCell().Value = ps.Key
		row.AddCell().Value = string(ps.Category)
		row.AddCell().SetFloat(ps.Mean)
		row.AddCell().SetFloat(ps.Median)
		row.AddCell().SetFloat(ps.StdDev)
		row.AddCell().SetFloat(ps.MeanShare)
		row.AddCell().SetFloat(ps.VarianceShare)
	}

	return nil
}

func addScenarioSheet(f *xlsx.File, s *montecarlo.Sample) error {
	sheet, err := f.AddSheet("Scenarios")
	if err != nil {
		return eris.Wrap(err, "report: add scenarios sheet")
	}

	header := sheet.AddRow()
	for _, k := range s.Keys {
		header.AddCell().Value = k
	}
	for _, h := range []string{"total_cost", "total_revenue", "net_impact", "exceeds_threshold"} {
		header.AddCell().Value = h
	}

	for r := 0; r < s.Rows(); r++ {
		row := sheet.AddRow()
		for _, col := range s.Columns {
			row.AddCell().SetFloat(col[r])
		}
		row.AddCell().SetFloat(s.TotalCost[r])
		row.AddCell().SetFloat(s.TotalRevenue[r])
		row.AddCell().SetFloat(s.NetImpact[r])
		row.AddCell().SetBool(s.Exceeds[r])
	}

	return nil
}
