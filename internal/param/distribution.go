// Package param defines the universe of random inputs for a simulation run:
// cost and revenue parameters, their distributions, and the ordered set the
// engine samples from.
package param

import (
	"math/rand/v2"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidDistribution is returned when a distribution's numeric
// parameters are out of range (e.g. a negative standard deviation).
var ErrInvalidDistribution = eris.New("invalid distribution")

// Kind tags the distribution family.
type Kind string

// KindNormal is the only shipped family. The tagged-variant shape leaves
// room for lognormal, triangular, etc. without touching the engine.
const KindNormal Kind = "normal"

// Distribution is a draw-once specification: a family tag plus its numeric
// parameters, in billions of dollars per year.
type Distribution struct {
	Kind   Kind    `json:"kind" yaml:"kind"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`

	// ClampNegative floors negative draws to zero rather than redrawing or
	// reflecting them. This biases the sample mean upward when Mean is within
	// a few StdDev of zero; the approximation is accepted.
	ClampNegative bool `json:"clamp_negative" yaml:"clamp_negative"`
}

// Normal builds a clamped normal distribution, the shape every default
// scenario parameter uses.
func Normal(mean, stdDev float64) Distribution {
	return Distribution{Kind: KindNormal, Mean: mean, StdDev: stdDev, ClampNegative: true}
}

// Validate checks the distribution's numeric parameters.
func (d Distribution) Validate() error {
	if d.Kind != KindNormal {
		return eris.Wrapf(ErrInvalidDistribution, "unknown kind %q", d.Kind)
	}
	if d.StdDev < 0 {
		return eris.Wrapf(ErrInvalidDistribution, "std_dev %g < 0", d.StdDev)
	}
	return nil
}

// Sampler returns a draw function bound to src. Each call produces one
// independent value; clamping is applied per draw.
func (d Distribution) Sampler(src rand.Source) (func() float64, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	switch d.Kind {
	case KindNormal:
		n := distuv.Normal{Mu: d.Mean, Sigma: d.StdDev, Src: src}
		if d.ClampNegative {
			return func() float64 {
				v := n.Rand()
				if v < 0 {
					return 0
				}
				return v
			}, nil
		}
		return n.Rand, nil
	default:
		return nil, eris.Wrapf(ErrInvalidDistribution, "unknown kind %q", d.Kind)
	}
}
