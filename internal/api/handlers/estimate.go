package handlers

import (
	"context"
	"embed"
	"encoding/base64"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/varcalc/internal/chart"
	"github.com/wonny/varcalc/internal/marketdata"
	"github.com/wonny/varcalc/internal/report"
	"github.com/wonny/varcalc/internal/risk"
	"github.com/wonny/varcalc/pkg/config"
	"github.com/wonny/varcalc/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Estimator runs one VaR estimate
type Estimator interface {
	Estimate(ctx context.Context, req risk.Request) (*risk.Result, error)
}

// EstimateHandler serves the estimate form, its result page and the JSON API
// ⭐ SSOT: every web entry point to the estimator goes through this handler
type EstimateHandler struct {
	estimator Estimator
	defaults  config.EstimateDefaults
	logger    *logger.Logger
	now       func() time.Time
}

// NewEstimateHandler creates a new estimate handler
func NewEstimateHandler(estimator Estimator, defaults config.EstimateDefaults, log *logger.Logger) *EstimateHandler {
	return &EstimateHandler{
		estimator: estimator,
		defaults:  defaults,
		logger:    log.WithComponent("handlers"),
		now:       time.Now,
	}
}

// pageView is the data of the single page template
type pageView struct {
	Input    risk.Input
	Currency string
	MinConf  float64
	MaxConf  float64
	Error    string
	Result   *resultView
}

type tickerRow struct {
	Ticker string
	Weight string
	Mean   string
	Vol    string
}

type chartImage struct {
	Title string
	Src   template.URL
}

type resultView struct {
	RunID        string
	VaR          string
	Shortfall    string
	Confidence   string
	Horizon      int
	Observations int
	Period       string
	Mu           string
	Sigma        string
	SigmaH       string
	Quantile     string
	Rows         []tickerRow
	Charts       []chartImage
}

// Form renders the empty estimate form
// GET /
func (h *EstimateHandler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.newPage(h.defaultInput(), h.defaults.BaseCurrency))
}

// Submit runs the estimate posted by the form and renders the result,
// or the form again with the error
// POST /estimate
func (h *EstimateHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		page := h.newPage(h.defaultInput(), h.defaults.BaseCurrency)
		page.Error = "Invalid form submission"
		h.render(w, http.StatusBadRequest, page)
		return
	}

	in := inputFromValues(r.Form.Get)
	page := h.newPage(in, currencyOrDefault(r.Form.Get("currency"), h.defaults.BaseCurrency))

	result, currency, err := h.run(r.Context(), in, r.Form.Get("currency"))
	if err != nil {
		page.Error = err.Error()
		h.render(w, statusFor(err), page)
		return
	}

	page.Result = h.newResultView(result, currency)
	h.render(w, http.StatusOK, page)
}

// GetEstimate runs an estimate from query parameters and returns JSON
// GET /api/estimate?tickers=AAPL,MSFT&start=2023-01-01&end=2024-01-01&amount=10000&confidence=0.95
func (h *EstimateHandler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	in := inputFromValues(query.Get)
	def := h.defaultInput()
	if in.Amount == "" {
		in.Amount = def.Amount
	}
	if in.Confidence == "" {
		in.Confidence = def.Confidence
	}
	if in.Horizon == "" {
		in.Horizon = def.Horizon
	}
	if in.Start == "" {
		in.Start = def.Start
	}
	if in.End == "" {
		in.End = def.End
	}

	result, currency, err := h.run(r.Context(), in, query.Get("currency"))
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, report.NewSummary(result, currency))
}

// run validates the input and its target currency, then estimates.
// The returned currency labels every money figure of the result.
func (h *EstimateHandler) run(ctx context.Context, in risk.Input, target string) (*risk.Result, string, error) {
	req, err := in.Request()
	if err != nil {
		return nil, "", err
	}
	currency, err := risk.ResolveCurrency(h.defaults.BaseCurrency, target, req.FX)
	if err != nil {
		return nil, "", err
	}

	result, err := h.estimator.Estimate(ctx, req)
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"tickers": req.Tickers,
			"status":  statusFor(err),
		}).Warn("Estimate request failed")
		return nil, "", err
	}
	return result, currency, nil
}

func (h *EstimateHandler) newPage(in risk.Input, currency string) pageView {
	return pageView{
		Input:    in,
		Currency: currency,
		MinConf:  risk.MinUIConfidence,
		MaxConf:  risk.MaxUIConfidence,
	}
}

func (h *EstimateHandler) defaultInput() risk.Input {
	end := h.now().UTC()
	start := end.AddDate(0, 0, -h.defaults.LookbackDays)
	return risk.Input{
		Start:      start.Format(marketdata.DateLayout),
		End:        end.Format(marketdata.DateLayout),
		Amount:     strconv.FormatFloat(h.defaults.Amount, 'f', -1, 64),
		Confidence: strconv.FormatFloat(h.defaults.Confidence, 'f', -1, 64),
		Horizon:    strconv.Itoa(h.defaults.Horizon),
		FX:         "1",
	}
}

func (h *EstimateHandler) newResultView(r *risk.Result, currency string) *resultView {
	d := r.Diagnostics
	q := d.Quantile

	view := &resultView{
		RunID:        r.RunID,
		VaR:          report.Money(r.VaR, currency),
		Shortfall:    report.Money(q.ExpectedShortfall, currency),
		Confidence:   report.Percent(q.Confidence, 0),
		Horizon:      q.Horizon,
		Observations: d.Observations,
		Mu:           report.Percent(q.Mu, 4),
		Sigma:        report.Percent(q.Sigma, 4),
		SigmaH:       report.Percent(q.SigmaH, 4),
		Quantile:     report.Percent(q.Return, 4),
	}
	if n := len(d.Dates); n > 0 {
		view.Period = d.Dates[0].Format(marketdata.DateLayout) + " ~ " + d.Dates[n-1].Format(marketdata.DateLayout)
	}

	for i, ticker := range d.Tickers {
		view.Rows = append(view.Rows, tickerRow{
			Ticker: ticker,
			Weight: report.Percent(d.Weights[i], 2),
			Mean:   report.Percent(d.Means[i], 4),
			Vol:    report.Percent(d.Volatilities[i], 4),
		})
	}

	renderers := []struct {
		title  string
		render func(risk.Diagnostics) ([]byte, error)
	}{
		{"Prices", chart.Prices},
		{"Return histogram", chart.Histogram},
		{"Fitted distribution", chart.Density},
	}
	for _, c := range renderers {
		img, err := c.render(d)
		if err != nil {
			// the estimate itself is still valid without the picture
			h.logger.WithError(err).WithField("chart", c.title).Warn("Chart rendering failed")
			continue
		}
		view.Charts = append(view.Charts, chartImage{
			Title: c.title,
			Src:   template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(img)),
		})
	}

	return view
}

func (h *EstimateHandler) render(w http.ResponseWriter, status int, page pageView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.ExecuteTemplate(w, "page.html", page); err != nil {
		h.logger.WithError(err).Error("Failed to render page")
	}
}

func inputFromValues(get func(string) string) risk.Input {
	return risk.Input{
		Tickers:    get("tickers"),
		Start:      get("start"),
		End:        get("end"),
		Amount:     get("amount"),
		Confidence: get("confidence"),
		Horizon:    get("horizon"),
		FX:         get("fx"),
		Weights:    get("weights"),
	}
}

func currencyOrDefault(code, fallback string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return strings.ToUpper(fallback)
	}
	return code
}
