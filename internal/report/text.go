package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wonny/varcalc/internal/marketdata"
	"github.com/wonny/varcalc/internal/risk"
)

// ═══════════════════════════════════════════════════════════
// Plain-text report
// Same layout for every command that prints an estimate
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
	keyWidth   = 14
)

// Printer writes aligned report sections to w
type Printer struct {
	w io.Writer
}

// NewPrinter creates a printer over w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Header(title string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, doubleLine)
	fmt.Fprintf(p.w, "  %s\n", title)
	fmt.Fprintln(p.w, singleLine)
}

func (p *Printer) Separator() {
	fmt.Fprintln(p.w, singleLine)
}

func (p *Printer) DoubleSeparator() {
	fmt.Fprintln(p.w, doubleLine)
}

// KeyValue prints "   key : value" with the key padded to width
func (p *Printer) KeyValue(key, value string) {
	fmt.Fprintf(p.w, "   %-*s : %s\n", keyWidth, key, value)
}

// TableHeader prints column titles and an underline of matching width
func (p *Printer) TableHeader(columns []string, widths []int) {
	p.TableRow(columns, widths)

	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2
		}
	}
	fmt.Fprintf(p.w, "   %s\n", strings.Repeat("─", total))
}

// TableRow prints one left-aligned row
func (p *Printer) TableRow(values []string, widths []int) {
	cells := make([]string, len(values))
	for i, val := range values {
		cells[i] = fmt.Sprintf("%-*s", widths[i], val)
	}
	fmt.Fprintf(p.w, "   %s\n", strings.TrimRight(strings.Join(cells, "  "), " "))
}

// Text writes the full estimate report. currency is the target currency
// of the VaR (the currency the amount ends up in after FX).
func Text(w io.Writer, r *risk.Result, currency string) {
	p := NewPrinter(w)
	d := r.Diagnostics
	q := d.Quantile
	req := r.Request

	p.Header("Parametric Value-at-Risk")
	p.KeyValue("Run ID", r.RunID)
	p.KeyValue("Tickers", strings.Join(d.Tickers, ", "))
	p.KeyValue("Period", fmt.Sprintf("%s ~ %s", req.Start.Format(marketdata.DateLayout), req.End.Format(marketdata.DateLayout)))
	if n := len(d.Dates); n > 0 {
		p.KeyValue("Aligned", fmt.Sprintf("%s ~ %s (%d returns)",
			d.Dates[0].Format(marketdata.DateLayout), d.Dates[n-1].Format(marketdata.DateLayout), d.Observations))
	}
	p.KeyValue("Confidence", Percent(q.Confidence, 1))
	p.KeyValue("Horizon", fmt.Sprintf("%d day(s)", q.Horizon))
	p.KeyValue("Amount", Fixed(req.Amount, 2))
	p.KeyValue("FX", Fixed(req.FX, 6))
	p.Separator()

	widths := []int{10, 10, 12, 12}
	p.TableHeader([]string{"Ticker", "Weight", "Mean/day", "Vol/day"}, widths)
	for i, ticker := range d.Tickers {
		p.TableRow([]string{
			ticker,
			Percent(d.Weights[i], 2),
			Percent(d.Means[i], 4),
			Percent(d.Volatilities[i], 4),
		}, widths)
	}
	p.Separator()

	p.KeyValue("μ (daily)", Percent(q.Mu, 4))
	p.KeyValue("σ (daily)", Percent(q.Sigma, 4))
	p.KeyValue("σ (horizon)", Percent(q.SigmaH, 4))
	p.KeyValue("z", Fixed(q.Z, 4))
	p.KeyValue("Quantile", Percent(q.Return, 4))
	p.Separator()
	p.KeyValue("VaR", Money(r.VaR, currency))
	p.KeyValue("Exp. shortfall", Money(q.ExpectedShortfall, currency))
	p.DoubleSeparator()
}

// Summary is the JSON view of an estimate
type Summary struct {
	RunID             string           `json:"run_id"`
	Tickers           []string         `json:"tickers"`
	Start             string           `json:"start"`
	End               string           `json:"end"`
	Currency          string           `json:"currency"`
	Amount            float64          `json:"amount"`
	FX                float64          `json:"fx"`
	Confidence        float64          `json:"confidence"`
	Horizon           int              `json:"horizon"`
	VaR               float64          `json:"var"`
	VaRDisplay        string           `json:"var_display"`
	ExpectedShortfall float64          `json:"expected_shortfall"`
	Diagnostics       risk.Diagnostics `json:"diagnostics"`
	ComputedAt        time.Time        `json:"computed_at"`
}

// NewSummary builds the JSON view
func NewSummary(r *risk.Result, currency string) Summary {
	return Summary{
		RunID:             r.RunID,
		Tickers:           r.Diagnostics.Tickers,
		Start:             r.Request.Start.Format(marketdata.DateLayout),
		End:               r.Request.End.Format(marketdata.DateLayout),
		Currency:          strings.ToUpper(currency),
		Amount:            r.Request.Amount,
		FX:                r.Request.FX,
		Confidence:        r.Request.Confidence,
		Horizon:           r.Request.Horizon,
		VaR:               r.VaR,
		VaRDisplay:        Money(r.VaR, currency),
		ExpectedShortfall: r.Diagnostics.Quantile.ExpectedShortfall,
		Diagnostics:       r.Diagnostics,
		ComputedAt:        r.ComputedAt,
	}
}

// JSON writes the indented JSON summary
func JSON(w io.Writer, r *risk.Result, currency string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewSummary(r, currency))
}
