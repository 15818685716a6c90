package marketdata

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Static serves histories from memory. It backs offline runs and tests.
type Static struct {
	mu     sync.Mutex
	series map[string]Series
	calls  map[string]int
}

// CallCount reports how many times ticker was requested
func (s *Static) CallCount(ticker string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[strings.ToUpper(ticker)]
}

// NewStatic builds a provider from complete series
func NewStatic(series ...Series) *Static {
	s := &Static{
		series: make(map[string]Series, len(series)),
		calls:  make(map[string]int),
	}
	for _, ser := range series {
		s.series[strings.ToUpper(ser.Ticker)] = ser
	}
	return s
}

// FromCloses builds a series with one close per consecutive calendar day
// starting at start
func FromCloses(ticker string, start time.Time, closes ...float64) Series {
	points := make([]Point, len(closes))
	for i, c := range closes {
		points[i] = Point{Date: start.AddDate(0, 0, i), AdjClose: c}
	}
	return Series{Ticker: ticker, Points: points}
}

// History implements Provider
func (s *Static) History(ctx context.Context, ticker string, start, end time.Time) (Series, error) {
	if err := ctx.Err(); err != nil {
		return Series{}, err
	}

	key := strings.ToUpper(ticker)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[key]++

	ser, ok := s.series[key]
	if !ok {
		return Series{}, fmt.Errorf("%w: unknown ticker %s", ErrNoData, ticker)
	}

	points := make([]Point, 0, len(ser.Points))
	for _, p := range ser.Points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		points = append(points, p)
	}
	return Series{Ticker: key, Points: points}, nil
}
