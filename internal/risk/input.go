package risk

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/varcalc/internal/marketdata"
)

// =============================================================================
// Input parsing (CLI flags, web form, query string)
// =============================================================================

// ParseTickers splits comma-separated symbols, trims and upper-cases them
// and drops duplicates while keeping the first occurrence order.
func ParseTickers(text string) ([]string, error) {
	seen := make(map[string]bool)
	var tickers []string
	for _, part := range strings.Split(text, ",") {
		t := strings.ToUpper(strings.TrimSpace(part))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers given", ErrInvalidRequest)
	}
	return tickers, nil
}

// ParseWeights parses comma-separated weights for n tickers.
// Empty text means uniform weights and returns nil.
func ParseWeights(text string, n int) ([]float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	parts := strings.Split(text, ",")
	weights := make([]float64, 0, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: weight %d %q is not a number", ErrInvalidWeights, i+1, strings.TrimSpace(part))
		}
		weights = append(weights, v)
	}

	if err := ValidateWeights(weights, n); err != nil {
		return nil, err
	}
	return weights, nil
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC
func ParseDate(text string) (time.Time, error) {
	t, err := time.Parse(marketdata.DateLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidRequest, text)
	}
	return t, nil
}

// ValidateUIConfidence enforces the [0.90, 0.99] range of the interactive inputs
func ValidateUIConfidence(c float64) error {
	// tolerate float noise from slider steps such as 0.9 + 9*0.01
	const eps = 1e-9
	if c < MinUIConfidence-eps || c > MaxUIConfidence+eps {
		return fmt.Errorf("%w: confidence %.2f must be between %.2f and %.2f",
			ErrInvalidRequest, c, MinUIConfidence, MaxUIConfidence)
	}
	return nil
}

// ResolveCurrency returns the currency the money figures are stated in.
// Converting (fx != 1) needs a target other than base, and a target other
// than base needs a rate, so converted amounts never carry the base label.
func ResolveCurrency(base, target string, fx float64) (string, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	target = strings.ToUpper(strings.TrimSpace(target))

	if target == "" || target == base {
		if fx != DefaultFX {
			return "", fmt.Errorf("%w: fx %v needs a target currency other than %s", ErrInvalidRequest, fx, base)
		}
		return base, nil
	}
	if fx == DefaultFX {
		return "", fmt.Errorf("%w: converting %s to %s needs an fx rate", ErrInvalidRequest, base, target)
	}
	return target, nil
}

// Input is the raw text of an estimate as typed into a form or query string
type Input struct {
	Tickers    string
	Start      string
	End        string
	Amount     string
	Confidence string
	Horizon    string
	FX         string
	Weights    string
}

// Request parses and validates every field. Empty Horizon and FX fall back
// to 1; every other field is required.
func (in Input) Request() (Request, error) {
	tickers, err := ParseTickers(in.Tickers)
	if err != nil {
		return Request{}, err
	}

	start, err := ParseDate(in.Start)
	if err != nil {
		return Request{}, err
	}
	end, err := ParseDate(in.End)
	if err != nil {
		return Request{}, err
	}

	amount, err := parseFloatField("amount", in.Amount)
	if err != nil {
		return Request{}, err
	}
	confidence, err := parseFloatField("confidence", in.Confidence)
	if err != nil {
		return Request{}, err
	}
	if err := ValidateUIConfidence(confidence); err != nil {
		return Request{}, err
	}

	horizon := DefaultHorizon
	if s := strings.TrimSpace(in.Horizon); s != "" {
		horizon, err = strconv.Atoi(s)
		if err != nil {
			return Request{}, fmt.Errorf("%w: horizon %q is not an integer", ErrInvalidRequest, s)
		}
	}

	fx := DefaultFX
	if strings.TrimSpace(in.FX) != "" {
		fx, err = parseFloatField("fx", in.FX)
		if err != nil {
			return Request{}, err
		}
	}

	weights, err := ParseWeights(in.Weights, len(tickers))
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Tickers:    tickers,
		Start:      start,
		End:        end,
		Amount:     amount,
		Confidence: confidence,
		Horizon:    horizon,
		FX:         fx,
		Weights:    weights,
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

func parseFloatField(name, text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidRequest, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrInvalidRequest, name, s)
	}
	return v, nil
}
