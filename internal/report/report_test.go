package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/varcalc/internal/marketdata"
	"github.com/wonny/varcalc/internal/risk"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{-225.117, "USD", "-$225.12"},
		{10000, "usd", "$10,000.00"},
		{0.004, "USD", "$0.00"},
		{1234.5, "XXZ", "1234.50 XXZ"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Money(tt.amount, tt.currency))
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "95.0%", Percent(0.95, 1))
	assert.Equal(t, "-2.2512%", Percent(-0.0225117, 4))
	assert.Equal(t, "0.0750%", Percent(0.00075, 4))
}

func testResult(t *testing.T) *risk.Result {
	t.Helper()
	day0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := []marketdata.Series{
		marketdata.FromCloses("AAA", day0, 100, 101, 99.5, 102, 101.2, 103, 102.1, 104),
		marketdata.FromCloses("BBB", day0, 50, 49.6, 50.4, 50.1, 51, 50.2, 50.9, 50.5),
	}
	result, err := risk.Compute(series, risk.Request{
		Tickers:    []string{"AAA", "BBB"},
		Start:      day0,
		End:        day0.AddDate(0, 0, 7),
		Amount:     10000,
		Confidence: 0.95,
		Weights:    []float64{0.6, 0.4},
	})
	require.NoError(t, err)
	return result
}

func TestText(t *testing.T) {
	r := testResult(t)

	var buf bytes.Buffer
	Text(&buf, r, "USD")
	out := buf.String()

	assert.Contains(t, out, "Parametric Value-at-Risk")
	assert.Contains(t, out, r.RunID)
	assert.Contains(t, out, "AAA, BBB")
	assert.Contains(t, out, "60.00%")
	assert.Contains(t, out, "95.0%")
	assert.Contains(t, out, Money(r.VaR, "USD"))
	assert.Contains(t, out, "2024-01-01 ~ 2024-01-08")
}

func TestJSON(t *testing.T) {
	r := testResult(t)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, r, "eur"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, r.RunID, decoded["run_id"])
	assert.Equal(t, "EUR", decoded["currency"])
	assert.Equal(t, "2024-01-01", decoded["start"])
	assert.InDelta(t, r.VaR, decoded["var"], 1e-9)
	assert.Contains(t, decoded, "diagnostics")
}
