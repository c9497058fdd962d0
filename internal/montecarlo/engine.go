// Package montecarlo draws joint scenarios from a parameter set and reduces
// them to summary statistics. Sampling is deterministic for a given seed and
// parameter order; there is no process-global generator, so concurrent runs
// with different seeds are independent.
package montecarlo

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/policylab/fiscalsim/internal/param"
)

// ErrInvalidArgument is returned for out-of-range run options.
var ErrInvalidArgument = eris.New("invalid argument")

// MaxSimulations bounds a single run. The sample is held fully in memory,
// so the ceiling guards against unbounded allocation.
const MaxSimulations = 10_000_000

// Default run knobs, matching the reference scenario.
const (
	DefaultSimulations = 10_000
	DefaultThreshold   = 2.0 // billions
	DefaultSeed        = 42
)

// Options holds the three scalar knobs of a run plus the worker count.
type Options struct {
	// Simulations is the number of scenario rows to draw.
	Simulations int
	// Threshold is the budget threshold in billions; exceedance is the
	// event total cost > Threshold.
	Threshold float64
	// Seed fixes the generator. Nil means a seed is taken from the process
	// entropy source and the run is not reproducible.
	Seed *uint64
	// Workers > 1 draws parameter columns concurrently, each from its own
	// substream keyed by (seed, column index). A parallel run is itself
	// reproducible but is a different draw sequence than the sequential
	// single-stream run.
	Workers int
}

// FixedSeed is a convenience for building Options literals.
func FixedSeed(v uint64) *uint64 { return &v }

// DefaultOptions returns the reference configuration: 10,000 draws against
// a $2.0B threshold at seed 42, sequential.
func DefaultOptions() Options {
	return Options{
		Simulations: DefaultSimulations,
		Threshold:   DefaultThreshold,
		Seed:        FixedSeed(DefaultSeed),
		Workers:     1,
	}
}

// Validate checks the run options.
func (o Options) Validate() error {
	if o.Simulations <= 0 {
		return eris.Wrapf(ErrInvalidArgument, "simulations %d must be positive", o.Simulations)
	}
	if o.Simulations > MaxSimulations {
		return eris.Wrapf(ErrInvalidArgument, "simulations %d exceeds ceiling %d", o.Simulations, MaxSimulations)
	}
	if o.Threshold < 0 {
		return eris.Wrapf(ErrInvalidArgument, "threshold %g must be non-negative", o.Threshold)
	}
	if o.Workers < 0 {
		return eris.Wrapf(ErrInvalidArgument, "workers %d must be non-negative", o.Workers)
	}
	return nil
}

// Sample is the scenario table: one row per draw, one column per parameter
// in set insertion order, plus the derived columns. It is fully populated on
// return from Run and treated as read-only by every consumer.
type Sample struct {
	// RunID tags the run for logs and report metadata.
	RunID string `json:"run_id"`
	// Keys holds parameter keys in column order.
	Keys []string `json:"keys"`
	// Categories aligns with Keys.
	Categories []param.Category `json:"categories"`
	// Columns aligns with Keys; Columns[i][r] is parameter i in scenario r.
	Columns [][]float64 `json:"columns"`

	TotalCost    []float64 `json:"total_cost"`
	TotalRevenue []float64 `json:"total_revenue"`
	NetImpact    []float64 `json:"net_impact"`
	Exceeds      []bool    `json:"exceeds_threshold"`

	// Threshold is the value Exceeds was computed against at sampling time.
	// Summarize takes its own threshold, so a sample can be re-evaluated
	// against a different limit without redrawing.
	Threshold float64 `json:"threshold"`
	// Seed is the effective seed the run used.
	Seed uint64 `json:"seed"`
}

// Rows returns the number of scenarios.
func (s *Sample) Rows() int { return len(s.TotalCost) }

// Column returns the values drawn for one parameter key.
func (s *Sample) Column(key string) ([]float64, bool) {
	for i, k := range s.Keys {
		if k == key {
			return s.Columns[i], true
		}
	}
	return nil, false
}

// Exceedances counts rows whose total cost exceeded the sampling threshold.
func (s *Sample) Exceedances() int {
	n := 0
	for _, e := range s.Exceeds {
		if e {
			n++
		}
	}
	return n
}

// Run draws opts.Simulations joint scenarios from set and derives the
// aggregate columns. The full draw sequence is a deterministic function of
// (seed, set insertion order, simulation count); two runs with identical
// inputs produce identical tables.
func Run(ctx context.Context, set *param.Set, opts Options) (*Sample, error) {
	if set == nil {
		return nil, eris.Wrap(ErrInvalidArgument, "nil parameter set")
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	seed := rand.Uint64()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	s := &Sample{
		RunID:     uuid.New().String(),
		Keys:      set.Keys(),
		Columns:   make([][]float64, set.Len()),
		Threshold: opts.Threshold,
		Seed:      seed,
	}
	for p := range set.All() {
		s.Categories = append(s.Categories, p.Category)
	}

	var err error
	if opts.Workers > 1 {
		err = drawParallel(ctx, set, opts, seed, s.Columns)
	} else {
		err = drawSequential(ctx, set, opts, seed, s.Columns)
	}
	if err != nil {
		return nil, err
	}

	derive(s, opts)

	zap.L().Info("montecarlo: run complete",
		zap.String("run_id", s.RunID),
		zap.Int("simulations", opts.Simulations),
		zap.Int("parameters", set.Len()),
		zap.Float64("threshold", opts.Threshold),
		zap.Uint64("seed", seed),
		zap.Int("workers", opts.Workers),
		zap.Int("exceedances", s.Exceedances()),
	)

	return s, nil
}

// drawSequential fills every column from one PCG stream, column by column
// in insertion order.
func drawSequential(ctx context.Context, set *param.Set, opts Options, seed uint64, cols [][]float64) error {
	src := rand.NewPCG(seed, 0)

	i := 0
	for p := range set.All() {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "montecarlo: draw canceled")
		}
		col, err := drawColumn(p, src, opts.Simulations)
		if err != nil {
			return err
		}
		cols[i] = col
		i++
	}
	return nil
}

// drawParallel fills each column from its own substream. Substream seeds
// are keyed by column index, so the result is reproducible regardless of
// scheduling.
func drawParallel(ctx context.Context, set *param.Set, opts Options, seed uint64, cols [][]float64) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	i := 0
	for p := range set.All() {
		idx := i
		i++
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "montecarlo: draw canceled")
			}
			src := rand.NewPCG(seed, uint64(idx)+1)
			col, err := drawColumn(p, src, opts.Simulations)
			if err != nil {
				return err
			}
			cols[idx] = col
			return nil
		})
	}
	return g.Wait()
}

func drawColumn(p param.Parameter, src rand.Source, n int) ([]float64, error) {
	draw, err := p.Distribution.Sampler(src)
	if err != nil {
		return nil, eris.Wrapf(err, "parameter %q", p.Key)
	}
	col := make([]float64, n)
	for r := range col {
		col[r] = draw()
	}
	return col, nil
}

// derive computes the per-row aggregate columns.
func derive(s *Sample, opts Options) {
	n := opts.Simulations
	s.TotalCost = make([]float64, n)
	s.TotalRevenue = make([]float64, n)
	s.NetImpact = make([]float64, n)
	s.Exceeds = make([]bool, n)

	for i, col := range s.Columns {
		switch s.Categories[i] {
		case param.Cost:
			for r, v := range col {
				s.TotalCost[r] += v
			}
		case param.Revenue:
			for r, v := range col {
				s.TotalRevenue[r] += v
			}
		}
	}

	for r := 0; r < n; r++ {
		s.NetImpact[r] = s.TotalCost[r] - s.TotalRevenue[r]
		s.Exceeds[r] = s.TotalCost[r] > opts.Threshold
	}
}
