package risk

import (
	"fmt"
	"math"
)

// LogReturns converts prices into ln(p_t / p_{t-1}).
// The result has one element fewer than prices; the undefined leading
// return is dropped.
func LogReturns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 prices, got %d", ErrInsufficientData, len(prices))
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1], prices[i]
		if prev <= 0 || cur <= 0 || !isFinite(prev) || !isFinite(cur) {
			return nil, fmt.Errorf("%w: invalid price at index %d", ErrNoData, i)
		}
		returns[i-1] = math.Log(cur / prev)
	}
	return returns, nil
}

// PortfolioReturns is the weighted daily return series sum_i w_i * r_i,t
func PortfolioReturns(returns [][]float64, weights []float64) ([]float64, error) {
	if len(returns) == 0 || len(returns) != len(weights) {
		return nil, fmt.Errorf("%w: %d series for %d weights", ErrInvalidWeights, len(returns), len(weights))
	}

	n := len(returns[0])
	out := make([]float64, n)
	for i, r := range returns {
		if len(r) != n {
			return nil, fmt.Errorf("%w: return series %d has length %d, want %d", ErrInsufficientData, i, len(r), n)
		}
		for t, v := range r {
			out[t] += weights[i] * v
		}
	}
	return out, nil
}
