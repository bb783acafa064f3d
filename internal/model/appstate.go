package model

// AppConfig is the user's last rate selection, restored on the next run.
type AppConfig struct {
	LastRateKind         RateKind       `json:"lastRateKind"`
	LastCustomAnnualRate *float64       `json:"lastCustomAnnualRate,omitempty"`
	LastSelic            *SelicSnapshot `json:"lastSelic,omitempty"`
}

// DefaultAppConfig selects the reference rate with no custom rate remembered.
func DefaultAppConfig() AppConfig {
	return AppConfig{LastRateKind: RateSelic}
}

// LastInputs holds the most recent form values. Every field is optional.
type LastInputs struct {
	Name              string   `json:"name,omitempty"`
	CashPrice         *float64 `json:"cashPrice,omitempty"`
	InstallmentCount  *int     `json:"installmentCount,omitempty"`
	InstallmentAmount *float64 `json:"installmentAmount,omitempty"`
}

// LastInputsFrom captures a purchase and its budget name.
func LastInputsFrom(name string, in PurchaseInput) LastInputs {
	cash, count, amount := in.CashPrice, in.InstallmentCount, in.InstallmentAmount
	return LastInputs{
		Name:              name,
		CashPrice:         &cash,
		InstallmentCount:  &count,
		InstallmentAmount: &amount,
	}
}

// IsEmpty reports whether nothing was recorded.
func (l LastInputs) IsEmpty() bool {
	return l.Name == "" && l.CashPrice == nil && l.InstallmentCount == nil && l.InstallmentAmount == nil
}
