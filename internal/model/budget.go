package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UnnamedBudget is used when a budget is saved without a name.
const UnnamedBudget = "Sem nome"

// Budget is a named, persisted comparison.
type Budget struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	CashPrice         float64 `json:"cashPrice"`
	InstallmentCount  int     `json:"installmentCount"`
	InstallmentAmount float64 `json:"installmentAmount"`

	RateKind    RateKind `json:"rateKind"`
	AnnualRate  *float64 `json:"annualRate,omitempty"`
	MonthlyRate float64  `json:"monthlyRate"`

	PresentValue           float64 `json:"presentValue"`
	TotalInstallmentAmount float64 `json:"totalInstallmentAmount"`
	NominalDifference      float64 `json:"nominalDifference"`
	PercentualDifference   float64 `json:"percentualDifference"`
	FavorsInstallment      bool    `json:"favorsInstallment"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBudget assembles an unsaved budget with a fresh ID. Timestamps are set by the store.
func NewBudget(name string, in PurchaseInput, rate RateInfo, res ComparisonResult) Budget {
	b := Budget{ID: uuid.NewString()}
	b.Apply(name, in, rate, res)
	return b
}

// Apply overwrites the budget's inputs, rate and result, keeping ID and timestamps.
func (b *Budget) Apply(name string, in PurchaseInput, rate RateInfo, res ComparisonResult) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = UnnamedBudget
	}
	b.Name = name
	b.CashPrice = in.CashPrice
	b.InstallmentCount = in.InstallmentCount
	b.InstallmentAmount = in.InstallmentAmount
	b.RateKind = rate.Kind
	b.AnnualRate = rate.AnnualRate
	b.MonthlyRate = rate.MonthlyRate
	b.PresentValue = res.PresentValue
	b.TotalInstallmentAmount = res.TotalInstallmentAmount
	b.NominalDifference = res.NominalDifference
	b.PercentualDifference = res.PercentualDifference
	b.FavorsInstallment = res.FavorsInstallment
}

// Input returns the purchase the budget was computed from.
func (b Budget) Input() PurchaseInput {
	return PurchaseInput{
		CashPrice:         b.CashPrice,
		InstallmentCount:  b.InstallmentCount,
		InstallmentAmount: b.InstallmentAmount,
	}
}

// Rate returns the rate the budget was computed with.
func (b Budget) Rate() RateInfo {
	return RateInfo{Kind: b.RateKind, MonthlyRate: b.MonthlyRate, AnnualRate: b.AnnualRate}
}

// Result returns the stored comparison.
func (b Budget) Result() ComparisonResult {
	return ComparisonResult{
		CashPrice:              b.CashPrice,
		TotalInstallmentAmount: b.TotalInstallmentAmount,
		PresentValue:           b.PresentValue,
		NominalDifference:      b.NominalDifference,
		PercentualDifference:   b.PercentualDifference,
		FavorsInstallment:      b.FavorsInstallment,
	}
}
