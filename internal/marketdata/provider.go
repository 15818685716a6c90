package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNoData is returned when a provider has no usable prices for a ticker
	ErrNoData = errors.New("no price data")
	// ErrPartialData is returned when a ticker's history does not cover the
	// dates of the others. It wraps ErrNoData.
	ErrPartialData = fmt.Errorf("%w: partial price history", ErrNoData)
)

// MaxAlignmentLoss is the largest share of a ticker's own points that
// alignment may drop. Exchange holidays fit under it; a listing that
// starts or stops inside the window does not.
const MaxAlignmentLoss = 0.10

// DateLayout is the calendar date format used in keys and reports
const DateLayout = "2006-01-02"

// Point is a single adjusted close
type Point struct {
	Date     time.Time `json:"date"`
	AdjClose float64   `json:"adj_close"`
}

// Series is the daily adjusted-close history of one ticker, oldest first
type Series struct {
	Ticker string  `json:"ticker"`
	Points []Point `json:"points"`
}

// Closes returns the adjusted closes in date order
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.AdjClose
	}
	return out
}

// Dates returns the dates in order
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

// Last returns the most recent point
func (s Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Provider returns daily adjusted closes for a ticker over [start, end]
type Provider interface {
	History(ctx context.Context, ticker string, start, end time.Time) (Series, error)
}

// Fetch retrieves every ticker sequentially and aligns the result.
// Any failed or empty series aborts the whole fetch.
func Fetch(ctx context.Context, p Provider, tickers []string, start, end time.Time) ([]Series, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers requested", ErrNoData)
	}

	series := make([]Series, 0, len(tickers))
	for _, ticker := range tickers {
		s, err := p.History(ctx, ticker, start, end)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", ticker, err)
		}
		s = Normalize(s)
		if len(s.Points) == 0 {
			return nil, fmt.Errorf("fetch %s: %w", ticker, ErrNoData)
		}
		series = append(series, s)
	}

	return Align(series)
}

// Normalize sorts points by date, truncates dates to the calendar day,
// drops non-positive closes and keeps the last point of a duplicated day.
func Normalize(s Series) Series {
	points := make([]Point, 0, len(s.Points))
	for _, p := range s.Points {
		if p.AdjClose <= 0 {
			continue
		}
		y, m, d := p.Date.Date()
		points = append(points, Point{
			Date:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			AdjClose: p.AdjClose,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}

	return Series{Ticker: strings.ToUpper(s.Ticker), Points: out}
}

// Align restricts every series to the dates present in all of them.
// A ticker losing more than MaxAlignmentLoss of its points aborts with
// ErrPartialData naming the tickers that set the shorter history.
func Align(series []Series) ([]Series, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}

	counts := make(map[time.Time]int)
	for _, s := range series {
		for _, p := range s.Points {
			counts[p.Date]++
		}
	}

	aligned := make([]Series, len(series))
	for i, s := range series {
		points := make([]Point, 0, len(s.Points))
		for _, p := range s.Points {
			if counts[p.Date] == len(series) {
				points = append(points, p)
			}
		}
		aligned[i] = Series{Ticker: s.Ticker, Points: points}
	}

	if len(aligned[0].Points) == 0 {
		names := make([]string, len(series))
		for i, s := range series {
			names[i] = s.Ticker
		}
		return nil, fmt.Errorf("%w: no common dates for %s", ErrPartialData, strings.Join(names, ","))
	}

	for i, s := range series {
		lost := len(s.Points) - len(aligned[i].Points)
		if float64(lost) > MaxAlignmentLoss*float64(len(s.Points)) {
			return nil, fmt.Errorf("%w: %s keeps %d of %d dates after alignment (limited by %s)",
				ErrPartialData, s.Ticker, len(aligned[i].Points), len(s.Points), strings.Join(shortest(series), ","))
		}
	}

	return aligned, nil
}

// shortest returns the tickers with the fewest points
func shortest(series []Series) []string {
	fewest := len(series[0].Points)
	for _, s := range series[1:] {
		if len(s.Points) < fewest {
			fewest = len(s.Points)
		}
	}

	var names []string
	for _, s := range series {
		if len(s.Points) == fewest {
			names = append(names, s.Ticker)
		}
	}
	return names
}

// Scale multiplies every close by factor (flat currency conversion)
func Scale(series []Series, factor float64) []Series {
	out := make([]Series, len(series))
	for i, s := range series {
		points := make([]Point, len(s.Points))
		for j, p := range s.Points {
			points[j] = Point{Date: p.Date, AdjClose: p.AdjClose * factor}
		}
		out[i] = Series{Ticker: s.Ticker, Points: points}
	}
	return out
}
