package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pixparcela/internal/cli"
	"github.com/theirongolddev/pixparcela/internal/model"
	"github.com/theirongolddev/pixparcela/internal/rates"
)

var (
	flagCash        string
	flagCount       int
	flagInstallment string
	flagRateKind    string
	flagAnnual      string
	flagName        string
	flagSave        bool
	flagBudgetID    string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a cash price against an installment plan",
	Long: "Compare a cash price against an installment plan. Flags left out are filled\n" +
		"from the previous run.",
	Example: "  pixparcela compare --cash 1000 --count 10 --installment 95\n" +
		"  pixparcela compare --cash 1.000,00 --count 12 --installment 90 --annual 12,5 --name TV --save",
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&flagCash, "cash", "", "Cash (Pix) price, e.g. 1000 or 1.000,00")
	compareCmd.Flags().IntVar(&flagCount, "count", 0, "Number of installments")
	compareCmd.Flags().StringVar(&flagInstallment, "installment", "", "Amount of each installment")
	compareCmd.Flags().StringVar(&flagName, "name", "", "Budget name")
	compareCmd.Flags().BoolVar(&flagSave, "save", false, "Save the comparison as a budget")
	compareCmd.Flags().StringVar(&flagBudgetID, "id", "", "Update the saved budget with this ID (implies --save)")
	addRateFlags(compareCmd)
	rootCmd.AddCommand(compareCmd)
}

func addRateFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagRateKind, "rate", "", "Rate source: selic or custom (default: last used)")
	c.Flags().StringVar(&flagAnnual, "annual", "", "Custom annual rate in percent, e.g. 12,5 (implies --rate custom)")
}

func runCompare(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	in, name, err := compareInputs(cmd, env.store.LoadLastInputs(ctx))
	if err != nil {
		return err
	}
	sel, err := selectionFromFlags(cmd, env.store.LoadConfig(ctx))
	if err != nil {
		return err
	}

	c, err := env.evaluate(ctx, in, sel)
	if err != nil {
		return err
	}
	env.rememberSelection(ctx, sel)
	env.saveLastInputs(ctx, name, in)

	fmt.Println()
	fmt.Println(cli.RenderComparison(name, c.input, c.rate, c.result))

	if flagSave || flagBudgetID != "" {
		saved, err := env.saveComparison(ctx, flagBudgetID, name, c)
		if err != nil {
			return err
		}
		fmt.Printf("  Saved %q (%s)\n", saved.Name, cli.ShortID(saved.ID))
	}
	fmt.Println()
	return nil
}

// compareInputs reads the purchase from flags, falling back to the last run
// for anything not given.
func compareInputs(cmd *cobra.Command, last model.LastInputs) (model.PurchaseInput, string, error) {
	var in model.PurchaseInput
	flags := cmd.Flags()

	switch {
	case flags.Changed("cash"):
		v, err := cli.ParseAmount(flagCash)
		if err != nil {
			return in, "", fmt.Errorf("--cash: %w", err)
		}
		in.CashPrice = v
	case last.CashPrice != nil:
		in.CashPrice = *last.CashPrice
	default:
		return in, "", errors.New("missing --cash")
	}

	switch {
	case flags.Changed("count"):
		in.InstallmentCount = flagCount
	case last.InstallmentCount != nil:
		in.InstallmentCount = *last.InstallmentCount
	default:
		return in, "", errors.New("missing --count")
	}

	switch {
	case flags.Changed("installment"):
		v, err := cli.ParseAmount(flagInstallment)
		if err != nil {
			return in, "", fmt.Errorf("--installment: %w", err)
		}
		in.InstallmentAmount = v
	case last.InstallmentAmount != nil:
		in.InstallmentAmount = *last.InstallmentAmount
	default:
		return in, "", errors.New("missing --installment")
	}

	name := last.Name
	if flags.Changed("name") {
		name = flagName
	}
	return in, name, nil
}

// selectionFromFlags starts from the stored selection and applies --rate and
// --annual on top.
func selectionFromFlags(cmd *cobra.Command, cfg model.AppConfig) (rates.Selection, error) {
	sel := rates.SelectionFromConfig(cfg)
	flags := cmd.Flags()

	if flags.Changed("annual") {
		v, err := cli.ParseAmount(flagAnnual)
		if err != nil {
			return sel, fmt.Errorf("--annual: %w", err)
		}
		sel.CustomAnnualRate = &v
		sel.Kind = model.RateCustom
	}
	if flags.Changed("rate") {
		k, err := model.ParseRateKind(flagRateKind)
		if err != nil {
			return sel, err
		}
		sel.Kind = k
	}
	return sel, nil
}

// saveComparison creates a budget, or updates the one with id.
func (e *appEnv) saveComparison(ctx context.Context, id, name string, c comparison) (model.Budget, error) {
	var b model.Budget
	if id != "" {
		existing, err := findBudget(ctx, e, id)
		if err != nil {
			return model.Budget{}, err
		}
		b = existing
		b.Apply(name, c.input, c.rate, c.result)
	} else {
		b = model.NewBudget(name, c.input, c.rate, c.result)
	}
	return e.store.SaveBudget(ctx, b)
}
