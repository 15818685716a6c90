package risk

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultHistogramBins = 30
	DefaultDensityPoints = 200

	// densityWidth is the half-width of the density curve in sigma_h units
	densityWidth = 4.0
)

// Histogram buckets values into bins equal-width bins spanning [min, max]
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 || bins < 1 {
		return nil
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		pad := math.Max(math.Abs(lo)*1e-3, 1e-9)
		lo, hi = lo-pad, hi+pad
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// the upper divider is exclusive
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{
			Lower: dividers[i],
			Upper: dividers[i+1],
			Count: int(counts[i]),
		}
	}
	return out
}

// DensityCurve samples the fitted N(mu, sigma_h) density over mu +- 4 sigma_h
// and flags the points at or below the quantile return.
func DensityCurve(q Quantile, points int) []DensityPoint {
	if points < 2 || q.SigmaH <= 0 {
		return nil
	}

	dist := distuv.Normal{Mu: q.Mu, Sigma: q.SigmaH}
	xs := floats.Span(make([]float64, points), q.Mu-densityWidth*q.SigmaH, q.Mu+densityWidth*q.SigmaH)

	out := make([]DensityPoint, points)
	for i, x := range xs {
		out[i] = DensityPoint{
			X:       x,
			Density: dist.Prob(x),
			Tail:    x <= q.Return,
		}
	}
	return out
}
