package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/varcalc/internal/chart"
	"github.com/wonny/varcalc/internal/marketdata"
	"github.com/wonny/varcalc/internal/report"
	"github.com/wonny/varcalc/internal/risk"
	"github.com/wonny/varcalc/pkg/config"
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate portfolio VaR",
	Long: `Download daily adjusted closes, compute log returns and their covariance,
and report the parametric VaR of the portfolio.

The amount is stated in the quote currency of the tickers (--base). Pass
--currency to convert into another currency; the rate is looked up unless
--fx gives it. --fx without --currency is rejected.

Example:
  go run ./cmd/varcalc estimate --tickers AAPL,MSFT --from 2023-01-01 --to 2024-01-01
  go run ./cmd/varcalc estimate --tickers SAP.DE --amount 5000 --confidence 0.99 --horizon 10
  go run ./cmd/varcalc estimate --tickers AAPL,MSFT --weights 0.7,0.3 --currency EUR --json`,
	RunE: runEstimate,
}

// estimateFlags holds the raw flag values of the estimate command
type estimateFlags struct {
	tickers    string
	from       string
	to         string
	amount     float64
	confidence float64
	horizon    int
	fx         float64
	currency   string
	base       string
	weights    string
	chartsDir  string
	jsonOut    bool
	timeout    time.Duration
}

var estFlags estimateFlags

// minReliableObservations is the sample size below which a warning is printed
const minReliableObservations = 30

func init() {
	rootCmd.AddCommand(estimateCmd)

	f := estimateCmd.Flags()
	f.StringVar(&estFlags.tickers, "tickers", "", "comma-separated tickers (required)")
	f.StringVar(&estFlags.from, "from", "", "start date YYYY-MM-DD (default: lookback window before --to)")
	f.StringVar(&estFlags.to, "to", "", "end date YYYY-MM-DD (default: today)")
	f.Float64Var(&estFlags.amount, "amount", 0, "exposure in the quote currency (default: DEFAULT_AMOUNT)")
	f.Float64Var(&estFlags.confidence, "confidence", 0, "confidence level 0.90-0.99 (default: DEFAULT_CONFIDENCE)")
	f.IntVar(&estFlags.horizon, "horizon", 0, "horizon in trading days (default: DEFAULT_HORIZON)")
	f.Float64Var(&estFlags.fx, "fx", 1, "flat conversion factor from --base to --currency")
	f.StringVar(&estFlags.currency, "currency", "", "target currency; looks up the FX rate unless --fx is given")
	f.StringVar(&estFlags.base, "base", "", "quote currency of the tickers (default: BASE_CURRENCY)")
	f.StringVar(&estFlags.weights, "weights", "", "comma-separated weights summing to 1 (default: uniform)")
	f.StringVar(&estFlags.chartsDir, "charts", "", "write price, histogram and density PNGs to this directory")
	f.BoolVar(&estFlags.jsonOut, "json", false, "print the result as JSON")
	f.DurationVar(&estFlags.timeout, "timeout", 2*time.Minute, "overall timeout")

	estimateCmd.MarkFlagRequired("tickers")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	applyDefaults(&estFlags, a.cfg.Defaults, cmd.Flags().Changed, time.Now())

	ctx, cancel := context.WithTimeout(cmd.Context(), estFlags.timeout)
	defer cancel()

	if target := strings.ToUpper(estFlags.currency); target != "" && !cmd.Flags().Changed("fx") {
		rate, err := a.fxRate(ctx, estFlags.base, target)
		if err != nil {
			return fmt.Errorf("resolve fx %s->%s: %w", estFlags.base, target, err)
		}
		estFlags.fx = rate
	}

	req, currency, err := buildRequest(estFlags)
	if err != nil {
		return err
	}

	a.log.WithFields(map[string]interface{}{
		"tickers":    req.Tickers,
		"start":      req.Start.Format(marketdata.DateLayout),
		"end":        req.End.Format(marketdata.DateLayout),
		"confidence": req.Confidence,
		"horizon":    req.Horizon,
		"fx":         req.FX,
	}).Info("Running estimate")

	estimator := risk.NewEstimator(a.provider, a.log)
	result, err := estimator.Estimate(ctx, req)
	if err != nil {
		a.log.WithError(err).Error("Estimate failed")
		return err
	}

	var chartPaths []string
	if estFlags.chartsDir != "" {
		chartPaths, err = writeCharts(estFlags.chartsDir, result.Diagnostics)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if estFlags.jsonOut {
		return report.JSON(out, result, currency)
	}

	report.Text(out, result, currency)
	if result.Diagnostics.Observations < minReliableObservations {
		PrintWarning(out, fmt.Sprintf("Only %d daily returns; the covariance estimate is noisy", result.Diagnostics.Observations))
	}
	for _, p := range chartPaths {
		PrintSuccess(out, "Chart written to "+p)
	}
	return nil
}

// applyDefaults fills every flag the user did not set from config
func applyDefaults(f *estimateFlags, d config.EstimateDefaults, changed func(string) bool, now time.Time) {
	if !changed("amount") {
		f.amount = d.Amount
	}
	if !changed("confidence") {
		f.confidence = d.Confidence
	}
	if !changed("horizon") {
		f.horizon = d.Horizon
	}
	if f.base == "" {
		f.base = d.BaseCurrency
	}

	if f.to == "" {
		f.to = now.UTC().Format(marketdata.DateLayout)
	}
	if f.from == "" {
		if end, err := risk.ParseDate(f.to); err == nil {
			f.from = end.AddDate(0, 0, -d.LookbackDays).Format(marketdata.DateLayout)
		}
	}
}

// buildRequest parses and validates the flags the same way the web form does
// and returns the currency the result is stated in
func buildRequest(f estimateFlags) (risk.Request, string, error) {
	tickers, err := risk.ParseTickers(f.tickers)
	if err != nil {
		return risk.Request{}, "", err
	}
	start, err := risk.ParseDate(f.from)
	if err != nil {
		return risk.Request{}, "", err
	}
	end, err := risk.ParseDate(f.to)
	if err != nil {
		return risk.Request{}, "", err
	}
	if err := risk.ValidateUIConfidence(f.confidence); err != nil {
		return risk.Request{}, "", err
	}
	weights, err := risk.ParseWeights(f.weights, len(tickers))
	if err != nil {
		return risk.Request{}, "", err
	}

	req := risk.Request{
		Tickers:    tickers,
		Start:      start,
		End:        end,
		Amount:     f.amount,
		Confidence: f.confidence,
		Horizon:    f.horizon,
		FX:         f.fx,
		Weights:    weights,
	}
	if err := req.Validate(); err != nil {
		return risk.Request{}, "", err
	}

	currency, err := risk.ResolveCurrency(f.base, f.currency, f.fx)
	if err != nil {
		return risk.Request{}, "", err
	}
	return req, currency, nil
}

// writeCharts renders the three diagnostic charts into dir
func writeCharts(dir string, d risk.Diagnostics) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create charts dir: %w", err)
	}

	charts := []struct {
		name   string
		render func(risk.Diagnostics) ([]byte, error)
	}{
		{"prices.png", chart.Prices},
		{"histogram.png", chart.Histogram},
		{"density.png", chart.Density},
	}

	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		img, err := c.render(d)
		if err != nil {
			return paths, fmt.Errorf("%s: %w", c.name, err)
		}
		path := filepath.Join(dir, c.name)
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
