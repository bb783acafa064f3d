package model

import "fmt"

// RateKind identifies where a monthly rate came from.
type RateKind string

const (
	// RateSelic is the central-bank reference rate.
	RateSelic RateKind = "selic"
	// RateCustom is a user-entered annual rate.
	RateCustom RateKind = "custom"
)

// ParseRateKind maps user input to a RateKind. The Portuguese aliases match the
// values older data files used.
func ParseRateKind(s string) (RateKind, error) {
	switch s {
	case "selic", "reference", "":
		return RateSelic, nil
	case "custom", "personalizada":
		return RateCustom, nil
	default:
		return "", fmt.Errorf("unknown rate kind %q (want selic or custom)", s)
	}
}

// Label returns a short human-readable name for the rate kind.
func (k RateKind) Label() string {
	if k == RateCustom {
		return "Taxa personalizada"
	}
	return "Selic (BCB)"
}

// RateInfo is the monthly rate used for a comparison.
type RateInfo struct {
	Kind        RateKind `json:"kind"`
	MonthlyRate float64  `json:"monthlyRate"`
	// AnnualRate is a percentage (12.84 means 12.84% a year). Nil for reference
	// rates unless the source reported one.
	AnnualRate *float64 `json:"annualRate,omitempty"`
	// AsOf is the dd/MM/yyyy date of the reference quote. Empty for custom rates.
	AsOf     string `json:"asOf,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

// SelicSnapshot caches the last successful reference lookup.
type SelicSnapshot struct {
	DailyRate float64 `json:"dailyRate"`
	QueriedAt string  `json:"queriedAt"`
}
