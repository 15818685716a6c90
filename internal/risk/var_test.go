package risk

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func workedExample(t *testing.T) (mu, sigma float64) {
	t.Helper()
	cov := mat.NewSymDense(2, []float64{
		0.0004, 0.0001,
		0.0001, 0.0003,
	})
	mu, sigma, err := PortfolioStats([]float64{0.001, 0.0005}, cov, []float64{0.5, 0.5})
	require.NoError(t, err)
	return mu, sigma
}

func TestParametricVaRWorkedExample(t *testing.T) {
	mu, sigma := workedExample(t)
	// 0.25*0.0004 + 0.25*0.0003 + 2*0.25*0.0001
	assert.InDelta(t, 0.00075, mu, 1e-15)
	assert.InDelta(t, 0.000225, sigma*sigma, 1e-15)
	assert.InDelta(t, 0.015, sigma, 1e-12)

	q, err := ParametricVaR(mu, sigma, 0.95, 1, 10000)
	require.NoError(t, err)

	assert.InDelta(t, -239.23, q.VaR, 0.01)
	assert.InDelta(t, -1.6449, q.Z, 1e-4)
	assert.Equal(t, q.Sigma, q.SigmaH, "horizon 1 leaves sigma unchanged")
	assert.InDelta(t, -301.91, q.ExpectedShortfall, 0.01)
	assert.Less(t, q.ExpectedShortfall, q.VaR, "shortfall lies beyond the quantile")
}

func TestParametricVaRPortfolioVariance(t *testing.T) {
	// uncorrelated assets with wᵀΣw = 0.0002
	cov := mat.NewSymDense(2, []float64{
		0.0004, 0,
		0, 0.0004,
	})
	mu, sigma, err := PortfolioStats([]float64{0.001, 0.0005}, cov, []float64{0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.0002, sigma*sigma, 1e-15)

	q, err := ParametricVaR(mu, sigma, 0.95, 1, 10000)
	require.NoError(t, err)

	assert.InDelta(t, -225.12, q.VaR, 0.01)
	assert.InDelta(t, -284.21, q.ExpectedShortfall, 0.01)
}

func TestParametricVaRMonotonicInConfidence(t *testing.T) {
	mu, sigma := workedExample(t)

	prev := 0.0
	for i, c := range []float64{0.90, 0.95, 0.99} {
		q, err := ParametricVaR(mu, sigma, c, 1, 10000)
		require.NoError(t, err)
		if i > 0 {
			assert.Less(t, q.VaR, prev, "confidence %.2f", c)
		}
		prev = q.VaR
	}
}

func TestParametricVaRHorizonScaling(t *testing.T) {
	mu, sigma := workedExample(t)

	q1, err := ParametricVaR(mu, sigma, 0.95, 1, 1)
	require.NoError(t, err)
	q4, err := ParametricVaR(mu, sigma, 0.95, 4, 1)
	require.NoError(t, err)

	assert.InDelta(t, 2*q1.SigmaH, q4.SigmaH, 1e-15)
	// mean is not scaled, so only the deviation term doubles
	assert.InDelta(t, 2*(q1.Return-mu), q4.Return-mu, 1e-12)
}

func TestParametricVaRErrors(t *testing.T) {
	tests := []struct {
		name       string
		sigma      float64
		confidence float64
		horizon    int
		wantErr    error
	}{
		{"zero volatility", 0, 0.95, 1, ErrZeroVolatility},
		{"negative volatility", -0.01, 0.95, 1, ErrInvalidRequest},
		{"confidence zero", 0.01, 0, 1, ErrInvalidRequest},
		{"confidence one", 0.01, 1, 1, ErrInvalidRequest},
		{"horizon zero", 0.01, 0.95, 0, ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParametricVaR(0, tt.sigma, tt.confidence, tt.horizon, 1)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func ExampleParametricVaR() {
	cov := mat.NewSymDense(2, []float64{0.0004, 0.0001, 0.0001, 0.0003})
	mu, sigma, _ := PortfolioStats([]float64{0.001, 0.0005}, cov, []float64{0.5, 0.5})

	q, _ := ParametricVaR(mu, sigma, 0.95, 1, 10000)
	fmt.Printf("VaR(95%%, 1d) = %.2f\n", q.VaR)
	// Output: VaR(95%, 1d) = -239.23
}
