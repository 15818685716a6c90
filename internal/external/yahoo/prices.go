package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/wonny/varcalc/internal/marketdata"
)

// History fetches daily adjusted closes for symbol over [start, end].
// It implements marketdata.Provider.
func (c *Client) History(ctx context.Context, symbol string, start, end time.Time) (marketdata.Series, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	// period2 is exclusive; include the whole end day
	params.Set("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "history")
	params.Set("includeAdjustedClose", "true")

	result, err := c.fetchChart(ctx, symbol, params)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return marketdata.Series{}, fmt.Errorf("%w: %v", marketdata.ErrNoData, apiErr)
		}
		return marketdata.Series{}, err
	}

	series := parseHistory(symbol, result)

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(series.Points),
	}).Debug("Fetched history")

	return series, nil
}

// parseHistory prefers adjusted closes and falls back to raw closes.
// Null entries (halted days) are skipped.
func parseHistory(symbol string, r *chartResult) marketdata.Series {
	var closes []*float64
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = r.Indicators.AdjClose[0].AdjClose
	} else if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	points := make([]marketdata.Point, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		points = append(points, marketdata.Point{
			Date:     time.Unix(ts, 0).UTC(),
			AdjClose: *closes[i],
		})
	}

	return marketdata.Series{Ticker: symbol, Points: points}
}
