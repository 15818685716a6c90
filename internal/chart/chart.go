package chart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vicanso/go-charts/v2"

	"github.com/wonny/varcalc/internal/marketdata"
	"github.com/wonny/varcalc/internal/risk"
)

// ErrNoSeries is returned when the diagnostics carry nothing to draw
var ErrNoSeries = errors.New("nothing to plot")

const (
	width  = 900
	height = 500

	// xSplit is the number of x-axis labels
	xSplit = 8
)

// Prices draws one line per ticker over the aligned dates, each rebased
// to 100 at the first date so tickers with different price levels share
// one axis.
func Prices(d risk.Diagnostics) ([]byte, error) {
	if len(d.Prices) == 0 || len(d.Dates) < 2 {
		return nil, ErrNoSeries
	}

	labels := make([]string, len(d.Dates))
	for i, t := range d.Dates {
		labels[i] = t.Format(marketdata.DateLayout)
	}

	values := make([][]float64, len(d.Prices))
	for i, prices := range d.Prices {
		values[i] = rebase(prices)
	}

	p, err := charts.LineRender(values,
		charts.TitleTextOptionFunc("Adjusted close", strings.Join(d.Tickers, ", ")+" • rebased to 100"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: xSplit}),
		charts.YAxisOptionFunc(charts.YAxisOption{DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: d.Tickers, Top: charts.PositionBottom}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("render prices: %w", err)
	}
	return p.Bytes()
}

// Histogram draws the distribution of daily portfolio returns
func Histogram(d risk.Diagnostics) ([]byte, error) {
	if len(d.Histogram) == 0 {
		return nil, ErrNoSeries
	}

	labels := make([]string, len(d.Histogram))
	counts := make([]float64, len(d.Histogram))
	for i, b := range d.Histogram {
		labels[i] = fmt.Sprintf("%.2f%%", (b.Lower+b.Upper)/2*100)
		counts[i] = float64(b.Count)
	}

	p, err := charts.BarRender([][]float64{counts},
		charts.TitleTextOptionFunc("Daily portfolio returns", fmt.Sprintf("%d observations", len(d.PortfolioReturns))),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, SplitNumber: xSplit}),
		charts.YAxisOptionFunc(charts.YAxisOption{DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("render histogram: %w", err)
	}
	return p.Bytes()
}

// Density draws the fitted normal density of the horizon return and a
// second series holding only the tail at or below the VaR quantile.
func Density(d risk.Diagnostics) ([]byte, error) {
	if len(d.Density) == 0 {
		return nil, ErrNoSeries
	}

	labels := make([]string, len(d.Density))
	density := make([]float64, len(d.Density))
	tail := make([]float64, len(d.Density))
	for i, pt := range d.Density {
		labels[i] = fmt.Sprintf("%.2f%%", pt.X*100)
		density[i] = pt.Density
		if pt.Tail {
			tail[i] = pt.Density
		}
	}

	q := d.Quantile
	subtitle := fmt.Sprintf("%.0f%% / %dd quantile %.2f%%", q.Confidence*100, q.Horizon, q.Return*100)
	names := []string{"normal fit", "VaR tail"}

	p, err := charts.LineRender([][]float64{density, tail},
		charts.TitleTextOptionFunc("Fitted return distribution", subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: xSplit}),
		charts.YAxisOptionFunc(charts.YAxisOption{DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names, Top: charts.PositionBottom}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("render density: %w", err)
	}
	return p.Bytes()
}

// rebase scales a series so that its first value is 100
func rebase(prices []float64) []float64 {
	out := make([]float64, len(prices))
	if len(prices) == 0 || prices[0] == 0 {
		copy(out, prices)
		return out
	}
	for i, v := range prices {
		out[i] = v / prices[0] * 100
	}
	return out
}
