package montecarlo

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/policylab/fiscalsim/internal/param"
)

// ErrEmptySample is returned when Summarize is handed a zero-row sample.
var ErrEmptySample = eris.New("empty sample")

// confidenceLevel for the aggregate metric intervals.
const confidenceLevel = 0.95

// Metric summarizes one aggregate column of the sample. StdDev uses the
// unbiased sample formula; percentiles interpolate linearly between order
// statistics.
type Metric struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P5     float64 `json:"p5"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	P95    float64 `json:"p95"`
	// CI95Lower/CI95Upper bound the Student-t 95% confidence interval for
	// the mean.
	CI95Lower float64 `json:"ci95_lower"`
	CI95Upper float64 `json:"ci95_upper"`
}

// ParameterStats summarizes one parameter column.
type ParameterStats struct {
	Key      string         `json:"key"`
	Category param.Category `json:"category"`
	Mean     float64        `json:"mean"`
	Median   float64        `json:"median"`
	StdDev   float64        `json:"std_dev"`
	// MeanShare is the parameter's share of its category's total mean.
	MeanShare float64 `json:"mean_share"`
	// VarianceShare is the parameter's sample variance divided by the sum
	// of all parameters' sample variances. Under the independence
	// assumption this tracks the share of the total's variance, but it is a
	// deliberate simplification, not a Sobol-style decomposition; the
	// shares always sum to one.
	VarianceShare float64 `json:"variance_share"`
}

// Correlation is the pairwise Pearson matrix over parameter columns,
// ordered like Keys. Off-diagonal entries are expected near zero because
// parameters are drawn independently.
type Correlation struct {
	Keys   []string    `json:"keys"`
	Matrix [][]float64 `json:"matrix"`
}

// Summary is a read-only snapshot computed from a sample. It is derived on
// demand and never mutated.
type Summary struct {
	RunID       string  `json:"run_id"`
	Simulations int     `json:"simulations"`
	Threshold   float64 `json:"threshold"`

	TotalCost    Metric `json:"total_cost"`
	TotalRevenue Metric `json:"total_revenue"`
	NetImpact    Metric `json:"net_impact"`

	Exceedances    int     `json:"exceedances"`
	ExceedanceProb float64 `json:"exceedance_prob"`

	Parameters  []ParameterStats `json:"parameters"`
	Correlation Correlation      `json:"correlation"`
}

// Summarize reduces a sample against the given threshold. The threshold is
// passed rather than read from the sample so a caller can re-evaluate a
// different limit without redrawing.
func Summarize(s *Sample, threshold float64) (*Summary, error) {
	if s == nil || s.Rows() == 0 {
		return nil, eris.Wrap(ErrEmptySample, "summarize")
	}
	if threshold < 0 {
		return nil, eris.Wrapf(ErrInvalidArgument, "threshold %g must be non-negative", threshold)
	}

	n := s.Rows()
	sum := &Summary{
		RunID:        s.RunID,
		Simulations:  n,
		Threshold:    threshold,
		TotalCost:    metricOf(s.TotalCost),
		TotalRevenue: metricOf(s.TotalRevenue),
		NetImpact:    metricOf(s.NetImpact),
	}

	for _, v := range s.TotalCost {
		if v > threshold {
			sum.Exceedances++
		}
	}
	sum.ExceedanceProb = float64(sum.Exceedances) / float64(n)

	sum.Parameters = parameterStats(s)
	sum.Correlation = correlationOf(s)

	return sum, nil
}

// metricOf computes the aggregate statistics for one column.
func metricOf(values []float64) Metric {
	n := len(values)

	mean := stat.Mean(values, nil)
	sd := 0.0
	if n > 1 {
		sd = stat.StdDev(values, nil)
	}
	min, _ := mstats.Min(values)
	max, _ := mstats.Max(values)
	median, _ := mstats.Median(values)

	sorted := sortedCopy(values)
	m := Metric{
		Mean:   mean,
		Median: median,
		StdDev: sd,
		Min:    min,
		Max:    max,
		P5:     percentile(sorted, 5),
		P25:    percentile(sorted, 25),
		P75:    percentile(sorted, 75),
		P95:    percentile(sorted, 95),
	}

	m.CI95Lower, m.CI95Upper = mean, mean
	if n > 1 && sd > 0 {
		sem := sd / math.Sqrt(float64(n))
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
		q := t.Quantile(0.5 + confidenceLevel/2)
		m.CI95Lower = mean - q*sem
		m.CI95Upper = mean + q*sem
	}

	return m
}

// parameterStats computes per-parameter statistics and the simplified
// variance-share sensitivity.
func parameterStats(s *Sample) []ParameterStats {
	variances := make([]float64, len(s.Columns))
	var varTotal float64
	meanTotals := map[param.Category]float64{}
	means := make([]float64, len(s.Columns))

	for i, col := range s.Columns {
		means[i] = stat.Mean(col, nil)
		meanTotals[s.Categories[i]] += means[i]
		if len(col) > 1 {
			variances[i] = stat.Variance(col, nil)
		}
		varTotal += variances[i]
	}

	out := make([]ParameterStats, len(s.Columns))
	for i, col := range s.Columns {
		median, _ := mstats.Median(col)
		ps := ParameterStats{
			Key:      s.Keys[i],
			Category: s.Categories[i],
			Mean:     means[i],
			Median:   median,
			StdDev:   math.Sqrt(variances[i]),
		}
		if mt := meanTotals[ps.Category]; mt != 0 {
			ps.MeanShare = means[i] / mt
		}
		if varTotal > 0 {
			ps.VarianceShare = variances[i] / varTotal
		}
		out[i] = ps
	}
	return out
}

// correlationOf builds the pairwise Pearson matrix over parameter columns.
func correlationOf(s *Sample) Correlation {
	k := len(s.Columns)
	c := Correlation{
		Keys:   s.Keys,
		Matrix: make([][]float64, k),
	}
	for i := range c.Matrix {
		c.Matrix[i] = make([]float64, k)
		c.Matrix[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			r := stat.Correlation(s.Columns[i], s.Columns[j], nil)
			if math.IsNaN(r) {
				// Zero-variance column; correlation is undefined.
				r = 0
			}
			c.Matrix[i][j] = r
			c.Matrix[j][i] = r
		}
	}
	return c
}
