// Package model defines domain types for purchases, rates and saved budgets.
package model

// PurchaseInput describes one purchase offered either in cash or in equal installments.
type PurchaseInput struct {
	CashPrice         float64 `json:"cashPrice"`
	InstallmentCount  int     `json:"installmentCount"`
	InstallmentAmount float64 `json:"installmentAmount"`
}

// Total returns the nominal sum of all installments.
func (p PurchaseInput) Total() float64 {
	return float64(p.InstallmentCount) * p.InstallmentAmount
}

// ComparisonResult is the outcome of discounting the installments against the cash price.
type ComparisonResult struct {
	CashPrice              float64 `json:"cashPrice"`
	TotalInstallmentAmount float64 `json:"totalInstallmentAmount"`
	PresentValue           float64 `json:"presentValue"`
	NominalDifference      float64 `json:"nominalDifference"`
	PercentualDifference   float64 `json:"percentualDifference"` // 0-100 scale
	FavorsInstallment      bool    `json:"favorsInstallment"`
}
