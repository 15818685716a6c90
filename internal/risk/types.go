package risk

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wonny/varcalc/internal/marketdata"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNoData is the market-data sentinel, re-exported so callers only
	// need this package to classify estimate failures
	ErrNoData = marketdata.ErrNoData

	ErrInsufficientData    = errors.New("insufficient data")
	ErrNotPositiveDefinite = errors.New("covariance matrix is not positive definite")
	ErrZeroVolatility      = errors.New("portfolio volatility is zero")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidWeights      = errors.New("invalid weights")
)

// =============================================================================
// Request
// =============================================================================

const (
	DefaultHorizon = 1
	DefaultFX      = 1.0

	// MinUIConfidence and MaxUIConfidence bound the confidence slider
	MinUIConfidence = 0.90
	MaxUIConfidence = 0.99
)

// Request is one VaR estimate
// ⭐ SSOT: every estimate (CLI, web form, JSON API) is described by this struct
type Request struct {
	Tickers    []string  `json:"tickers"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Amount     float64   `json:"amount"`     // exposure in the quote currency of the prices
	Confidence float64   `json:"confidence"` // e.g. 0.95
	Horizon    int       `json:"horizon"`    // trading days
	FX         float64   `json:"fx"`         // quote -> target currency factor
	Weights    []float64 `json:"weights,omitempty"`
}

// WithDefaults fills zero-valued Horizon and FX
func (r Request) WithDefaults() Request {
	if r.Horizon == 0 {
		r.Horizon = DefaultHorizon
	}
	if r.FX == 0 {
		r.FX = DefaultFX
	}
	return r
}

// Validate checks the request before any data is fetched
func (r Request) Validate() error {
	if len(r.Tickers) == 0 {
		return fmt.Errorf("%w: at least one ticker is required", ErrInvalidRequest)
	}
	for _, t := range r.Tickers {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: empty ticker", ErrInvalidRequest)
		}
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidRequest)
	}
	if !r.Start.Before(r.End) {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidRequest,
			r.Start.Format(marketdata.DateLayout), r.End.Format(marketdata.DateLayout))
	}
	if !isFinite(r.Confidence) || r.Confidence <= 0 || r.Confidence >= 1 {
		return fmt.Errorf("%w: confidence %v must be in (0, 1)", ErrInvalidRequest, r.Confidence)
	}
	if r.Horizon < 1 {
		return fmt.Errorf("%w: horizon %d must be at least 1 day", ErrInvalidRequest, r.Horizon)
	}
	if !isFinite(r.Amount) || r.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if !isFinite(r.FX) || r.FX <= 0 {
		return fmt.Errorf("%w: fx rate must be positive", ErrInvalidRequest)
	}
	if len(r.Weights) > 0 {
		if err := ValidateWeights(r.Weights, len(r.Tickers)); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Result Types
// =============================================================================

// Quantile is the parametric quantile of the portfolio return distribution
// and its monetary translation.
// ⭐ SSOT: VaR keeps its sign (negative = loss)
type Quantile struct {
	Confidence        float64 `json:"confidence"`
	Horizon           int     `json:"horizon"`
	Mu                float64 `json:"mu"`                 // daily expected portfolio return
	Sigma             float64 `json:"sigma"`              // daily portfolio volatility
	SigmaH            float64 `json:"sigma_h"`            // sigma * sqrt(horizon)
	Z                 float64 `json:"z"`                  // standard normal quantile of 1-confidence
	Return            float64 `json:"return"`             // quantile of N(mu, sigma_h)
	Shortfall         float64 `json:"shortfall"`          // expected return below the quantile
	VaR               float64 `json:"var"`                // Return * exposure
	ExpectedShortfall float64 `json:"expected_shortfall"` // Shortfall * exposure
}

// Bin is one histogram bucket, [Lower, Upper)
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// DensityPoint is a sample of the fitted normal density
type DensityPoint struct {
	X       float64 `json:"x"`
	Density float64 `json:"density"`
	Tail    bool    `json:"tail"` // at or below the VaR quantile
}

// Diagnostics carries the intermediate values of an estimate, enough to
// draw the price, histogram and density charts
type Diagnostics struct {
	Tickers          []string       `json:"tickers"`
	Dates            []time.Time    `json:"dates"`
	Prices           [][]float64    `json:"prices"` // per ticker, FX-scaled
	Observations     int            `json:"observations"`
	Means            []float64      `json:"means"`
	Volatilities     []float64      `json:"volatilities"`
	Covariance       [][]float64    `json:"covariance"`
	Correlation      [][]float64    `json:"correlation"`
	Weights          []float64      `json:"weights"`
	Quantile         Quantile       `json:"quantile"`
	PortfolioReturns []float64      `json:"portfolio_returns"`
	Histogram        []Bin          `json:"histogram"`
	Density          []DensityPoint `json:"density"`
}

// Result is the outcome of one estimate. It is never persisted.
type Result struct {
	RunID       string      `json:"run_id"`
	Request     Request     `json:"request"`
	VaR         float64     `json:"var"` // <= 0 is a loss, in the target currency
	Diagnostics Diagnostics `json:"diagnostics"`
	ComputedAt  time.Time   `json:"computed_at"`
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
