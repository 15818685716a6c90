package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/varcalc/internal/marketdata"
	"github.com/wonny/varcalc/pkg/config"
	"github.com/wonny/varcalc/pkg/httputil"
	"github.com/wonny/varcalc/pkg/logger"
)

const historyBody = `{"chart":{"result":[{
  "meta":{"currency":"USD","symbol":"AAPL"},
  "timestamp":[1704205800,1704292200,1704378600,1704465000],
  "indicators":{
    "quote":[{"close":[185.64,184.25,null,181.18]}],
    "adjclose":[{"adjclose":[184.73,183.35,null,180.29]}]
  }}],"error":null}}`

const notFoundBody = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Env: "test", HTTPTimeout: 5 * time.Second}
	httpClient := httputil.New(cfg, logger.Nop()).WithRetry(1, time.Millisecond)
	return NewClient(httpClient, server.URL, logger.Nop())
}

func TestHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.URL.Query().Get("period2"))
		w.Write([]byte(historyBody))
	})

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series, err := client.History(context.Background(), "AAPL", start, start.AddDate(0, 0, 5))
	require.NoError(t, err)

	assert.Equal(t, "AAPL", series.Ticker)
	assert.Equal(t, []float64{184.73, 183.35, 180.29}, series.Closes(), "adjusted closes, nulls skipped")
	assert.Equal(t, "2024-01-02", series.Points[0].Date.Format(marketdata.DateLayout))
}

func TestHistoryFallsBackToClose(t *testing.T) {
	body := strings.Replace(historyBody, `"adjclose":[{"adjclose":[184.73,183.35,null,180.29]}]`, `"adjclose":[]`, 1)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	series, err := client.History(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []float64{185.64, 184.25, 181.18}, series.Closes())
}

func TestHistoryUnknownSymbol(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(notFoundBody))
	})

	_, err := client.History(context.Background(), "NOPE", time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, marketdata.ErrNoData)
	assert.Contains(t, err.Error(), "Not Found")
}

func TestHistoryServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.History(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, marketdata.ErrNoData)
	assert.Contains(t, err.Error(), "502")
}

func TestHistoryEmptyResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	})

	_, err := client.History(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0), time.Now())
	assert.ErrorIs(t, err, marketdata.ErrNoData)
}

func TestFXRate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/USDEUR=X", r.URL.Path)
		w.Write([]byte(`{"chart":{"result":[{"meta":{"currency":"EUR","symbol":"USDEUR=X","regularMarketPrice":0.9182},
			"timestamp":[1704205800],"indicators":{"quote":[{"close":[0.91]}]}}],"error":null}}`))
	})

	rate, err := client.FXRate(context.Background(), "usd", "eur")
	require.NoError(t, err)
	assert.InDelta(t, 0.9182, rate, 1e-12)
}

func TestFXRateFallsBackToLastClose(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"EURUSD=X"},
			"timestamp":[1704205800,1704292200],"indicators":{"quote":[{"close":[1.09,1.1]}]}}],"error":null}}`))
	})

	rate, err := client.FXRate(context.Background(), "EUR", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.1, rate)
}

func TestFXRateSameCurrency(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for identical currencies")
	})

	rate, err := client.FXRate(context.Background(), "USD", "usd")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
}

func TestPairSymbol(t *testing.T) {
	assert.Equal(t, "USDJPY=X", PairSymbol("usd", "jpy"))
}
