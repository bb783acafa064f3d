package valuation

import (
	"errors"
	"math"
	"testing"

	"github.com/matryer/is"

	"github.com/theirongolddev/pixparcela/internal/model"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestPresentValue_ZeroRateIsNominalTotal(t *testing.T) {
	for _, n := range []int{1, 2, 12, 48} {
		got := PresentValue(123.45, n, 0)
		want := 123.45 * float64(n)
		if !approx(got, want, 1e-9) {
			t.Fatalf("PresentValue(123.45, %d, 0) = %v, want %v", n, got, want)
		}
	}
}

func TestPresentValue_ZeroCount(t *testing.T) {
	for _, r := range []float64{-0.01, 0, 0.01, 0.5} {
		if got := PresentValue(100, 0, r); got != 0 {
			t.Fatalf("PresentValue(100, 0, %v) = %v, want 0", r, got)
		}
	}
}

func TestPresentValue_DecreasesWithRate(t *testing.T) {
	prev := PresentValue(100, 12, -0.005)
	for _, r := range []float64{0, 0.001, 0.005, 0.01, 0.05, 0.2} {
		cur := PresentValue(100, 12, r)
		if cur >= prev {
			t.Fatalf("PresentValue at rate %v = %v, not below %v", r, cur, prev)
		}
		prev = cur
	}
}

func TestPresentValue_NegativeRateExceedsNominal(t *testing.T) {
	if got := PresentValue(100, 6, -0.01); got <= 600 {
		t.Fatalf("PresentValue with negative rate = %v, want > 600", got)
	}
}

func TestPresentValue_MatchesAnnuityFormula(t *testing.T) {
	r := 0.0123
	n := 24
	want := 250 * (1 - math.Pow(1+r, -float64(n))) / r
	if got := PresentValue(250, n, r); !approx(got, want, 1e-9) {
		t.Fatalf("PresentValue = %v, want %v", got, want)
	}
}

func TestCompare_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		in       model.PurchaseInput
		rate     float64
		pv       float64
		diff     float64
		pct      float64
		favors   bool
		totalDue float64
	}{
		{
			name:     "installments cost more than cash",
			in:       model.PurchaseInput{CashPrice: 1000, InstallmentCount: 12, InstallmentAmount: 90},
			rate:     0.01,
			pv:       1012.96,
			diff:     12.96,
			pct:      1.30,
			favors:   false,
			totalDue: 1080,
		},
		{
			name:     "installments cheaper than cash",
			in:       model.PurchaseInput{CashPrice: 1000, InstallmentCount: 10, InstallmentAmount: 95},
			rate:     0.01,
			pv:       899.77,
			diff:     100.23,
			pct:      11.14,
			favors:   true,
			totalDue: 950,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.in, tt.rate)
			if !approx(got.PresentValue, tt.pv, 0.01) {
				t.Errorf("PresentValue = %.4f, want ~%.2f", got.PresentValue, tt.pv)
			}
			if !approx(got.NominalDifference, tt.diff, 0.01) {
				t.Errorf("NominalDifference = %.4f, want ~%.2f", got.NominalDifference, tt.diff)
			}
			if !approx(got.PercentualDifference, tt.pct, 0.01) {
				t.Errorf("PercentualDifference = %.4f, want ~%.2f", got.PercentualDifference, tt.pct)
			}
			if got.FavorsInstallment != tt.favors {
				t.Errorf("FavorsInstallment = %v, want %v", got.FavorsInstallment, tt.favors)
			}
			if got.TotalInstallmentAmount != tt.totalDue {
				t.Errorf("TotalInstallmentAmount = %v, want %v", got.TotalInstallmentAmount, tt.totalDue)
			}
			if got.CashPrice != tt.in.CashPrice {
				t.Errorf("CashPrice = %v, want %v", got.CashPrice, tt.in.CashPrice)
			}
		})
	}
}

func TestCompare_FavorsInstallmentIsStrict(t *testing.T) {
	is := is.New(t)

	in := model.PurchaseInput{CashPrice: 600, InstallmentCount: 6, InstallmentAmount: 100}
	tie := Compare(in, 0)
	is.Equal(tie.PresentValue, 600.0)
	is.True(!tie.FavorsInstallment) // a tie favors cash
	is.Equal(tie.NominalDifference, 0.0)
	is.Equal(tie.PercentualDifference, 0.0)

	in.CashPrice = 600.01
	is.True(Compare(in, 0).FavorsInstallment)
}

func TestCompare_SymmetricUnderRoleSwap(t *testing.T) {
	rate := 0.01
	cashWins := Compare(model.PurchaseInput{CashPrice: 1000, InstallmentCount: 12, InstallmentAmount: 90}, rate)

	// At rate 0 a single installment is worth its face value, so this puts the old
	// present value on the cash side and the old cash price on the installment side.
	swapped := Compare(model.PurchaseInput{
		CashPrice:         cashWins.PresentValue,
		InstallmentCount:  1,
		InstallmentAmount: 1000,
	}, 0)

	if swapped.FavorsInstallment == cashWins.FavorsInstallment {
		t.Fatal("role swap did not flip the winner")
	}
	if !approx(swapped.NominalDifference, cashWins.NominalDifference, 1e-9) {
		t.Fatalf("NominalDifference %v != %v", swapped.NominalDifference, cashWins.NominalDifference)
	}
	if !approx(swapped.PercentualDifference, cashWins.PercentualDifference, 1e-9) {
		t.Fatalf("PercentualDifference %v != %v", swapped.PercentualDifference, cashWins.PercentualDifference)
	}
}

func TestCompare_ZeroBaseGuarded(t *testing.T) {
	got := Compare(model.PurchaseInput{CashPrice: 0, InstallmentCount: 0, InstallmentAmount: 10}, 0.01)
	if got.PercentualDifference != 0 {
		t.Fatalf("PercentualDifference = %v, want 0", got.PercentualDifference)
	}
	if math.IsNaN(got.PercentualDifference) || math.IsInf(got.PercentualDifference, 0) {
		t.Fatal("PercentualDifference is not finite")
	}

	got = Compare(model.PurchaseInput{CashPrice: 500, InstallmentCount: 0, InstallmentAmount: 10}, 0.01)
	if got.PercentualDifference != 0 || got.NominalDifference != 500 || !got.FavorsInstallment {
		t.Fatalf("unexpected result for empty installment stream: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	valid := model.PurchaseInput{CashPrice: 100, InstallmentCount: 2, InstallmentAmount: 50}
	if err := Validate(valid); err != nil {
		t.Fatalf("Validate(valid) = %v", err)
	}

	bad := []model.PurchaseInput{
		{CashPrice: 0, InstallmentCount: 2, InstallmentAmount: 50},
		{CashPrice: -1, InstallmentCount: 2, InstallmentAmount: 50},
		{CashPrice: math.NaN(), InstallmentCount: 2, InstallmentAmount: 50},
		{CashPrice: math.Inf(1), InstallmentCount: 2, InstallmentAmount: 50},
		{CashPrice: 100, InstallmentCount: 0, InstallmentAmount: 50},
		{CashPrice: 100, InstallmentCount: -3, InstallmentAmount: 50},
		{CashPrice: 100, InstallmentCount: 2, InstallmentAmount: 0},
		{CashPrice: 100, InstallmentCount: 2, InstallmentAmount: math.NaN()},
	}
	for _, in := range bad {
		if err := Validate(in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestValidateRate(t *testing.T) {
	is := is.New(t)
	is.NoErr(ValidateRate(0))
	is.NoErr(ValidateRate(-0.005))
	is.NoErr(ValidateRate(0.02))
	is.True(errors.Is(ValidateRate(-1), ErrInvalidRate))
	is.True(errors.Is(ValidateRate(math.NaN()), ErrInvalidRate))
	is.True(errors.Is(ValidateRate(math.Inf(-1)), ErrInvalidRate))
}
