package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// FXRate returns how many units of `to` one unit of `from` buys, using the
// latest daily close of the {FROM}{TO}=X pair.
func (c *Client) FXRate(ctx context.Context, from, to string) (float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return 0, fmt.Errorf("currency codes are required")
	}
	if from == to {
		return 1, nil
	}

	pair := PairSymbol(from, to)

	params := url.Values{}
	params.Set("range", "5d")
	params.Set("interval", "1d")

	result, err := c.fetchChart(ctx, pair, params)
	if err != nil {
		return 0, fmt.Errorf("fx %s: %w", pair, err)
	}

	if p := result.Meta.RegularMarketPrice; p != nil && *p > 0 {
		return *p, nil
	}

	series := parseHistory(pair, result)
	last, ok := series.Last()
	if !ok {
		return 0, fmt.Errorf("fx %s: no quote available", pair)
	}
	return last.AdjClose, nil
}

// PairSymbol is the Yahoo ticker of a currency pair
func PairSymbol(from, to string) string {
	return strings.ToUpper(from) + strings.ToUpper(to) + "=X"
}
