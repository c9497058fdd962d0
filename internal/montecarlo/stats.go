package montecarlo

import (
	"math"
	"slices"
)

func sortedCopy(values []float64) []float64 {
	out := slices.Clone(values)
	slices.Sort(out)
	return out
}

// percentile computes the pth percentile (0..100) of pre-sorted values by
// linear interpolation between order statistics: the index h = p/100·(n−1)
// is interpolated, not truncated. Reports downstream depend on this exact
// method, so it is written out rather than delegated to a library that
// interpolates differently.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	h := p / 100 * float64(n-1)
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
