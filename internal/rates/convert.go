// Package rates converts periodic interest rates and resolves the monthly rate
// used for a comparison.
package rates

import "math"

const (
	// BusinessDaysPerYear is the day-count convention of the Selic daily series.
	BusinessDaysPerYear = 252
	// MonthsPerYear is the compounding frequency of the monthly rate.
	MonthsPerYear = 12
)

// DailyToMonthly compounds a daily decimal rate into the equivalent monthly rate,
// assuming 252 business days per year.
func DailyToMonthly(daily float64) float64 {
	return math.Pow(1+daily, float64(BusinessDaysPerYear)/MonthsPerYear) - 1
}

// AnnualToMonthly returns the monthly rate equivalent to an annual decimal rate.
func AnnualToMonthly(annual float64) float64 {
	return math.Pow(1+annual, 1.0/MonthsPerYear) - 1
}

// MonthlyToAnnual is the inverse of AnnualToMonthly.
func MonthlyToAnnual(monthly float64) float64 {
	return math.Pow(1+monthly, MonthsPerYear) - 1
}

// PercentToDecimal converts 12.5 (percent) into 0.125.
func PercentToDecimal(pct float64) float64 {
	return pct / 100
}
