// Package valuation discounts installment streams and compares them against a cash price.
package valuation

import (
	"errors"
	"fmt"
	"math"

	"github.com/theirongolddev/pixparcela/internal/model"
)

var (
	// ErrInvalidInput marks purchase data that must be rejected before Compare.
	ErrInvalidInput = errors.New("valuation: invalid input")
	// ErrInvalidRate marks a monthly rate that cannot be used for discounting.
	ErrInvalidRate = errors.New("valuation: invalid rate")
)

// PresentValue discounts count equal payments of amount, the first one period
// from now, at monthlyRate per period. count <= 0 yields 0.
func PresentValue(amount float64, count int, monthlyRate float64) float64 {
	pv := 0.0
	factor := 1.0
	for i := 1; i <= count; i++ {
		factor *= 1 + monthlyRate
		pv += amount / factor
	}
	return pv
}

// Compare discounts the installments at monthlyRate and reports which payment
// option is cheaper. A tie favors cash. The input is not validated; see Validate.
func Compare(in model.PurchaseInput, monthlyRate float64) model.ComparisonResult {
	pv := PresentValue(in.InstallmentAmount, in.InstallmentCount, monthlyRate)

	diff := math.Abs(in.CashPrice - pv)
	base := math.Min(in.CashPrice, pv)
	pct := 0.0
	if base != 0 {
		pct = diff / base * 100
	}

	return model.ComparisonResult{
		CashPrice:              in.CashPrice,
		TotalInstallmentAmount: in.Total(),
		PresentValue:           pv,
		NominalDifference:      diff,
		PercentualDifference:   pct,
		FavorsInstallment:      pv < in.CashPrice,
	}
}

// Validate rejects non-finite or non-positive purchase fields.
func Validate(in model.PurchaseInput) error {
	if !positiveFinite(in.CashPrice) {
		return fmt.Errorf("%w: cash price must be a positive number, got %v", ErrInvalidInput, in.CashPrice)
	}
	if in.InstallmentCount <= 0 {
		return fmt.Errorf("%w: installment count must be positive, got %d", ErrInvalidInput, in.InstallmentCount)
	}
	if !positiveFinite(in.InstallmentAmount) {
		return fmt.Errorf("%w: installment amount must be a positive number, got %v", ErrInvalidInput, in.InstallmentAmount)
	}
	return nil
}

// ValidateRate rejects rates that are non-finite or at or below -100%.
func ValidateRate(monthlyRate float64) error {
	if math.IsNaN(monthlyRate) || math.IsInf(monthlyRate, 0) {
		return fmt.Errorf("%w: %v is not a finite number", ErrInvalidRate, monthlyRate)
	}
	if monthlyRate <= -1 {
		return fmt.Errorf("%w: %v is at or below -100%%", ErrInvalidRate, monthlyRate)
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
