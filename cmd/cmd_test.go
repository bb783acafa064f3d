package cmd

import (
	"context"
	"testing"

	"github.com/matryer/is"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/pixparcela/internal/model"
	"github.com/theirongolddev/pixparcela/internal/store"
)

func compareFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "compare"}
	c.Flags().StringVar(&flagCash, "cash", "", "")
	c.Flags().IntVar(&flagCount, "count", 0, "")
	c.Flags().StringVar(&flagInstallment, "installment", "", "")
	c.Flags().StringVar(&flagName, "name", "", "")
	addRateFlags(c)
	if err := c.ParseFlags(args); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	return c
}

func TestCompareInputs_FlagsWin(t *testing.T) {
	is := is.New(t)
	c := compareFlags(t, "--cash", "1.000,00", "--count", "10", "--installment", "95", "--name", "TV")

	in, name, err := compareInputs(c, model.LastInputsFrom("old", model.PurchaseInput{
		CashPrice: 1, InstallmentCount: 1, InstallmentAmount: 1,
	}))
	is.NoErr(err)
	is.Equal(in, model.PurchaseInput{CashPrice: 1000, InstallmentCount: 10, InstallmentAmount: 95})
	is.Equal(name, "TV")
}

func TestCompareInputs_PrefillsFromLastRun(t *testing.T) {
	is := is.New(t)
	c := compareFlags(t, "--installment", "80")
	last := model.LastInputsFrom("Sofá", model.PurchaseInput{
		CashPrice: 900, InstallmentCount: 12, InstallmentAmount: 85,
	})

	in, name, err := compareInputs(c, last)
	is.NoErr(err)
	is.Equal(in, model.PurchaseInput{CashPrice: 900, InstallmentCount: 12, InstallmentAmount: 80})
	is.Equal(name, "Sofá")
}

func TestCompareInputs_MissingValues(t *testing.T) {
	is := is.New(t)
	_, _, err := compareInputs(compareFlags(t, "--count", "3"), model.LastInputs{})
	is.True(err != nil)

	_, _, err = compareInputs(compareFlags(t, "--cash", "abc", "--count", "3", "--installment", "1"), model.LastInputs{})
	is.True(err != nil)
}

func TestSelectionFromFlags(t *testing.T) {
	is := is.New(t)
	stored := 9.5
	cfg := model.AppConfig{LastRateKind: model.RateCustom, LastCustomAnnualRate: &stored}

	sel, err := selectionFromFlags(compareFlags(t), cfg)
	is.NoErr(err)
	is.Equal(sel.Kind, model.RateCustom)
	is.Equal(*sel.CustomAnnualRate, 9.5)

	sel, err = selectionFromFlags(compareFlags(t, "--rate", "selic"), cfg)
	is.NoErr(err)
	is.Equal(sel.Kind, model.RateSelic)

	sel, err = selectionFromFlags(compareFlags(t, "--annual", "12,84"), model.DefaultAppConfig())
	is.NoErr(err)
	is.Equal(sel.Kind, model.RateCustom)
	is.Equal(*sel.CustomAnnualRate, 12.84)

	_, err = selectionFromFlags(compareFlags(t, "--rate", "cdi"), cfg)
	is.True(err != nil)
}

func TestFormValues_RoundTrip(t *testing.T) {
	is := is.New(t)
	annual := 12.5
	cfg := model.AppConfig{LastRateKind: model.RateCustom, LastCustomAnnualRate: &annual}
	last := model.LastInputsFrom("Geladeira", model.PurchaseInput{
		CashPrice: 1000.5, InstallmentCount: 10, InstallmentAmount: 95,
	})

	v := formValuesFrom(last, cfg)
	is.Equal(v.cash, "1000,5")
	is.Equal(v.count, "10")
	is.Equal(v.annual, "12,5")
	is.Equal(v.kind, "custom")

	in, sel, err := v.parse(cfg)
	is.NoErr(err)
	is.Equal(in, model.PurchaseInput{CashPrice: 1000.5, InstallmentCount: 10, InstallmentAmount: 95})
	is.Equal(sel.Kind, model.RateCustom)
	is.Equal(*sel.CustomAnnualRate, 12.5)
}

func TestFormValues_DefaultsToSelic(t *testing.T) {
	is := is.New(t)
	v := formValuesFrom(model.LastInputs{}, model.AppConfig{})
	is.Equal(v.kind, "selic")
	is.Equal(v.cash, "")

	v.cash, v.count, v.installment = "100", "x", "10"
	_, _, err := v.parse(model.DefaultAppConfig())
	is.True(err != nil)
}

func TestValidators(t *testing.T) {
	is := is.New(t)
	is.NoErr(validatePositiveAmount("1,50"))
	is.True(validatePositiveAmount("0") != nil)
	is.True(validatePositiveAmount("") != nil)
	is.NoErr(validateCount("12"))
	is.True(validateCount("0") != nil)
	is.True(validateCount("1.5") != nil)
}

func TestFindBudget(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	env := &appEnv{store: store.New(store.NewMemory(), nil)}

	for _, id := range []string{"aaaa1111", "aaaa2222", "bbbb3333"} {
		b := model.NewBudget(id, model.PurchaseInput{CashPrice: 1, InstallmentCount: 1, InstallmentAmount: 1},
			model.RateInfo{Kind: model.RateSelic}, model.ComparisonResult{})
		b.ID = id
		_, err := env.store.SaveBudget(ctx, b)
		is.NoErr(err)
	}

	b, err := findBudget(ctx, env, "bbbb3333")
	is.NoErr(err)
	is.Equal(b.ID, "bbbb3333")

	b, err = findBudget(ctx, env, "aaaa2")
	is.NoErr(err)
	is.Equal(b.ID, "aaaa2222")

	_, err = findBudget(ctx, env, "aaaa")
	is.True(err != nil) // ambiguous

	_, err = findBudget(ctx, env, "zzzz")
	is.True(err != nil)

	_, err = findBudget(ctx, env, " ")
	is.True(err != nil)
}
