package report

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money formats amount in the given ISO currency, rounded to the
// currency's minor unit. Unknown codes fall back to "<amount> <CODE>".
func Money(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	d := decimal.NewFromFloat(amount)

	cur := money.GetCurrency(code)
	if cur == nil {
		return d.StringFixed(2) + " " + code
	}

	factor := decimal.New(1, int32(cur.Fraction))
	minor := d.Mul(factor).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// Percent formats a fraction as a percentage with the given decimals
func Percent(v float64, places int32) string {
	return decimal.NewFromFloat(v).Shift(2).StringFixed(places) + "%"
}

// Fixed formats v with a fixed number of decimals
func Fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
