package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNormalize(t *testing.T) {
	s := Series{Ticker: "aapl", Points: []Point{
		{Date: day0.AddDate(0, 0, 2).Add(21 * time.Hour), AdjClose: 102},
		{Date: day0, AdjClose: 100},
		{Date: day0.AddDate(0, 0, 1), AdjClose: 0},
		{Date: day0.AddDate(0, 0, 2), AdjClose: 103},
	}}

	got := Normalize(s)

	assert.Equal(t, "AAPL", got.Ticker)
	require.Len(t, got.Points, 2)
	assert.Equal(t, day0, got.Points[0].Date)
	assert.Equal(t, day0.AddDate(0, 0, 2), got.Points[1].Date)
	assert.Equal(t, 103.0, got.Points[1].AdjClose, "last duplicate of a day wins")
}

func TestAlignKeepsCommonDates(t *testing.T) {
	a := FromCloses("A", day0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)
	b := FromCloses("B", day0.AddDate(0, 0, 1), 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120)

	aligned, err := Align([]Series{a, b})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, aligned[0].Closes())
	assert.Equal(t, []float64{20, 30, 40, 50, 60, 70, 80, 90, 100, 110}, aligned[1].Closes())
	assert.Equal(t, aligned[0].Dates(), aligned[1].Dates())
}

func TestAlignShortHistory(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	long := FromCloses("LONG", day0, closes...)
	late := FromCloses("LATE", day0.AddDate(0, 0, 247), 10, 11, 12)

	_, err := Align([]Series{long, late})
	require.ErrorIs(t, err, ErrPartialData)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Contains(t, err.Error(), "LONG keeps 3 of 250")
	assert.Contains(t, err.Error(), "limited by LATE")
}

func TestAlignLossThreshold(t *testing.T) {
	base := FromCloses("A", day0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	tests := []struct {
		name    string
		drop    int
		wantErr bool
	}{
		{"one holiday", 1, false},
		{"two missing days", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Series{Ticker: "B", Points: base.Points[tt.drop:]}
			_, err := Align([]Series{base, b})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPartialData)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAlignDisjoint(t *testing.T) {
	a := FromCloses("A", day0, 1, 2)
	b := FromCloses("B", day0.AddDate(0, 1, 0), 1, 2)

	_, err := Align([]Series{a, b})
	assert.ErrorIs(t, err, ErrPartialData)
}

func TestScale(t *testing.T) {
	scaled := Scale([]Series{FromCloses("A", day0, 10, 20)}, 0.5)
	assert.Equal(t, []float64{5, 10}, scaled[0].Closes())
}

func TestFetch(t *testing.T) {
	p := NewStatic(
		FromCloses("AAPL", day0, 100, 101, 102),
		FromCloses("MSFT", day0, 300, 303, 306),
	)

	series, err := Fetch(context.Background(), p, []string{"AAPL", "MSFT"}, day0, day0.AddDate(0, 0, 10))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "MSFT", series[1].Ticker)

	last, ok := series[0].Last()
	require.True(t, ok)
	assert.Equal(t, 102.0, last.AdjClose)
}

func TestFetchErrors(t *testing.T) {
	p := NewStatic(FromCloses("AAPL", day0, 100, 101, 102))

	_, err := Fetch(context.Background(), p, []string{"AAPL", "NOPE"}, day0, day0.AddDate(0, 0, 10))
	assert.ErrorIs(t, err, ErrNoData)

	// Range outside the stored history yields an empty series
	_, err = Fetch(context.Background(), p, []string{"AAPL"}, day0.AddDate(1, 0, 0), day0.AddDate(1, 1, 0))
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Fetch(context.Background(), p, nil, day0, day0)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFetchRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fetch(ctx, NewStatic(FromCloses("A", day0, 1, 2)), []string{"A"}, day0, day0.AddDate(0, 0, 5))
	assert.True(t, errors.Is(err, context.Canceled))
}
