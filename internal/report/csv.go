package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/policylab/fiscalsim/internal/montecarlo"
)

// WriteCSV writes the scenario table: one row per draw, one column per
// parameter in insertion order, then the derived columns.
func WriteCSV(w io.Writer, s *montecarlo.Sample) error {
	cw := csv.NewWriter(w)

	header := append([]string{}, s.Keys...)
	header = append(header, "total_cost", "total_revenue", "net_impact", "exceeds_threshold")
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}

	row := make([]string, 0, len(header))
	for r := 0; r < s.Rows(); r++ {
		row = row[:0]
		for _, col := range s.Columns {
			row = append(row, formatFloat(col[r]))
		}
		row = append(row,
			formatFloat(s.TotalCost[r]),
			formatFloat(s.TotalRevenue[r]),
			formatFloat(s.NetImpact[r]),
			strconv.FormatBool(s.Exceeds[r]),
		)
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "report: write csv row %d", r)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
