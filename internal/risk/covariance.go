package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// pdTolerance is relative to the largest eigenvalue magnitude
const pdTolerance = 1e-10

// CovarianceMatrix returns the N x N sample covariance (n-1 denominator)
// of N equally long return series.
func CovarianceMatrix(returns [][]float64) (*mat.SymDense, error) {
	if len(returns) == 0 {
		return nil, fmt.Errorf("%w: no return series", ErrInsufficientData)
	}

	obs := len(returns[0])
	if obs < 2 {
		return nil, fmt.Errorf("%w: need at least 2 returns, got %d", ErrInsufficientData, obs)
	}

	// observations in rows, tickers in columns
	x := mat.NewDense(obs, len(returns), nil)
	for j, r := range returns {
		if len(r) != obs {
			return nil, fmt.Errorf("%w: return series %d has length %d, want %d", ErrInsufficientData, j, len(r), obs)
		}
		x.SetCol(j, r)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, x, nil)
	return &cov, nil
}

// CheckPositiveDefinite verifies that every eigenvalue of cov exceeds
// 1e-10 x the largest eigenvalue magnitude. An all-zero matrix means no
// asset moved at all and is reported as ErrZeroVolatility.
func CheckPositiveDefinite(cov *mat.SymDense) error {
	if cov == nil || cov.SymmetricDim() == 0 {
		return fmt.Errorf("%w: empty covariance matrix", ErrInsufficientData)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, false); !ok {
		return fmt.Errorf("%w: eigendecomposition did not converge", ErrNotPositiveDefinite)
	}
	values := eig.Values(nil)

	var maxAbs float64
	for _, v := range values {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: NaN eigenvalue", ErrNotPositiveDefinite)
		}
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	if maxAbs == 0 {
		return ErrZeroVolatility
	}

	tol := pdTolerance * maxAbs
	for i, v := range values {
		if v <= tol {
			return fmt.Errorf("%w: eigenvalue %d is %.3g (tolerance %.3g)", ErrNotPositiveDefinite, i, v, tol)
		}
	}
	return nil
}

// Correlation derives the correlation matrix from a covariance matrix.
// Zero-variance assets get zero correlation off the diagonal.
func Correlation(cov *mat.SymDense) [][]float64 {
	n := cov.SymmetricDim()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				out[i][j] = 1
				continue
			}
			d := math.Sqrt(cov.At(i, i) * cov.At(j, j))
			if d > 0 {
				out[i][j] = cov.At(i, j) / d
			}
		}
	}
	return out
}

// toRows copies a symmetric matrix into nested slices for reporting
func toRows(m *mat.SymDense) [][]float64 {
	n := m.SymmetricDim()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}
