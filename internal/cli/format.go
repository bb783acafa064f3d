// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cents rounds a monetary value half away from zero to two decimal places.
func Cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// FormatBRL formats a value as Brazilian reais.
// e.g., 1234.5 -> "R$ 1.234,50", -3 -> "-R$ 3,00"
func FormatBRL(v float64) string {
	d := Cents(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	n, _ := strconv.ParseInt(intPart, 10, 64)
	return sign + "R$ " + groupThousands(n, '.') + "," + frac
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return groupThousands(n, ',')
}

func groupThousands(n int64, sep byte) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(sep)
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a value already on the 0-100 scale with two decimals
// and a decimal comma. e.g., 1.2957 -> "1,30%"
func FormatPercent(pct float64) string {
	return strings.Replace(Cents(pct).StringFixed(2), ".", ",", 1) + "%"
}

// FormatRate formats a decimal periodic rate as a percentage with four decimals.
// e.g., 0.0116415 -> "1,1642%"
func FormatRate(r float64) string {
	return strings.Replace(decimal.NewFromFloat(r*100).StringFixed(4), ".", ",", 1) + "%"
}

// FormatAnnual formats an annual rate already expressed in percent.
func FormatAnnual(pct float64) string {
	return strings.Replace(decimal.NewFromFloat(pct).StringFixed(2), ".", ",", 1) + "% a.a."
}

// FormatInstallments renders "12x de R$ 90,00".
func FormatInstallments(count int, amount float64) string {
	return fmt.Sprintf("%dx de %s", count, FormatBRL(amount))
}

// FormatAge renders how long ago t was, in coarse units.
// e.g., 45s -> "just now", 3h -> "3h ago", 50h -> "2d ago"
func FormatAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
