package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/varcalc/internal/marketdata"
	"github.com/wonny/varcalc/pkg/logger"
)

// =============================================================================
// Estimator - fetch + pure computation
// =============================================================================

// Estimator runs parametric VaR estimates against a market-data provider.
// It holds no per-estimate state and is safe for concurrent use.
type Estimator struct {
	provider marketdata.Provider
	logger   *logger.Logger
}

// NewEstimator creates a new estimator
func NewEstimator(provider marketdata.Provider, log *logger.Logger) *Estimator {
	return &Estimator{
		provider: provider,
		logger:   log.WithComponent("risk"),
	}
}

// Estimate validates req, fetches aligned prices and computes the VaR.
// The fetch completes or fails before any statistic is computed.
func (e *Estimator) Estimate(ctx context.Context, req Request) (*Result, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	series, err := marketdata.Fetch(ctx, e.provider, req.Tickers, req.Start, req.End)
	if err != nil {
		e.logger.WithError(err).WithField("tickers", req.Tickers).Warn("Price fetch failed")
		return nil, err
	}

	result, err := Compute(series, req)
	if err != nil {
		e.logger.WithError(err).WithField("tickers", req.Tickers).Warn("Estimate failed")
		return nil, err
	}

	e.logger.WithFields(map[string]interface{}{
		"run_id":       result.RunID,
		"tickers":      req.Tickers,
		"observations": result.Diagnostics.Observations,
		"confidence":   req.Confidence,
		"horizon":      req.Horizon,
		"var":          result.VaR,
		"duration":     time.Since(startTime),
	}).Info("Estimate completed")

	return result, nil
}

// =============================================================================
// Compute (Pure)
// =============================================================================

// Compute runs every step after the fetch: alignment, FX scaling, log
// returns, covariance, positive-definiteness check, portfolio moments and
// the parametric quantile.
// Monetary convention: VaR = quantile return x Amount x FX.
func Compute(series []marketdata.Series, req Request) (*Result, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	aligned, err := marketdata.Align(series)
	if err != nil {
		return nil, err
	}
	if req.FX != 1 {
		aligned = marketdata.Scale(aligned, req.FX)
	}

	n := len(aligned)
	weights := req.Weights
	if len(weights) == 0 {
		weights = UniformWeights(n)
	} else if err := ValidateWeights(weights, n); err != nil {
		return nil, err
	}

	tickers := make([]string, n)
	prices := make([][]float64, n)
	returns := make([][]float64, n)
	for i, s := range aligned {
		tickers[i] = s.Ticker
		prices[i] = s.Closes()
		r, err := LogReturns(prices[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Ticker, err)
		}
		returns[i] = r
	}

	cov, err := CovarianceMatrix(returns)
	if err != nil {
		return nil, err
	}
	if err := CheckPositiveDefinite(cov); err != nil {
		return nil, err
	}

	means := make([]float64, n)
	vols := make([]float64, n)
	for i, r := range returns {
		means[i], vols[i] = stat.MeanStdDev(r, nil)
	}

	mu, sigma, err := PortfolioStats(means, cov, weights)
	if err != nil {
		return nil, err
	}

	q, err := ParametricVaR(mu, sigma, req.Confidence, req.Horizon, req.Amount*req.FX)
	if err != nil {
		return nil, err
	}

	portfolio, err := PortfolioReturns(returns, weights)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:   uuid.New().String(),
		Request: req,
		VaR:     q.VaR,
		Diagnostics: Diagnostics{
			Tickers:          tickers,
			Dates:            aligned[0].Dates(),
			Prices:           prices,
			Observations:     len(returns[0]),
			Means:            means,
			Volatilities:     vols,
			Covariance:       toRows(cov),
			Correlation:      Correlation(cov),
			Weights:          weights,
			Quantile:         q,
			PortfolioReturns: portfolio,
			Histogram:        Histogram(portfolio, DefaultHistogramBins),
			Density:          DensityCurve(q, DefaultDensityPoints),
		},
		ComputedAt: time.Now(),
	}, nil
}
