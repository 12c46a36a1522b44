package dashboard

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const currency = money.USD

// FormatUSD formats a dollar amount rounded to cents, e.g. "$1,234.50".
// Non-finite input formats as "$0.00".
func FormatUSD(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	cur := money.GetCurrency(currency)
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	amount := decimal.NewFromFloat(v).Mul(factor).Round(0)
	return money.New(amount.IntPart(), currency).Display()
}

// FormatOptionalUSD is FormatUSD for an undefined-able statistic.
func FormatOptionalUSD(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return FormatUSD(*v)
}

// FormatCount formats an integer with comma separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatVolume formats a share volume with an SI suffix, e.g. "12.3M".
func FormatVolume(shares float64) string {
	v, prefix := humanize.ComputeSI(shares)
	return humanize.FtoaWithDigits(v, 1) + prefix
}

// FormatPct formats a percentage with an explicit sign, or "n/a" if nil.
func FormatPct(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", *p)
}
