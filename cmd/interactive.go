package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/pixparcela/internal/cli"
	"github.com/theirongolddev/pixparcela/internal/model"
	"github.com/theirongolddev/pixparcela/internal/rates"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Fill in a comparison with an interactive form",
	RunE:    runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// formValues holds the raw text the form edits.
type formValues struct {
	name        string
	cash        string
	count       string
	installment string
	kind        string
	annual      string
	save        bool
}

// formValuesFrom prefills the form from the previous run.
func formValuesFrom(last model.LastInputs, cfg model.AppConfig) formValues {
	v := formValues{name: last.Name, kind: string(cfg.LastRateKind)}
	if v.kind == "" {
		v.kind = string(model.RateSelic)
	}
	if last.CashPrice != nil {
		v.cash = formatInput(*last.CashPrice)
	}
	if last.InstallmentCount != nil {
		v.count = strconv.Itoa(*last.InstallmentCount)
	}
	if last.InstallmentAmount != nil {
		v.installment = formatInput(*last.InstallmentAmount)
	}
	if cfg.LastCustomAnnualRate != nil {
		v.annual = formatInput(*cfg.LastCustomAnnualRate)
	}
	return v
}

func formatInput(f float64) string {
	return strings.Replace(strconv.FormatFloat(f, 'f', -1, 64), ".", ",", 1)
}

// parse turns the form text into a purchase and a rate selection.
func (v formValues) parse(cfg model.AppConfig) (model.PurchaseInput, rates.Selection, error) {
	var in model.PurchaseInput
	sel := rates.SelectionFromConfig(cfg)

	cash, err := cli.ParseAmount(v.cash)
	if err != nil {
		return in, sel, fmt.Errorf("cash price: %w", err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(v.count))
	if err != nil {
		return in, sel, fmt.Errorf("installment count: %w", err)
	}
	amount, err := cli.ParseAmount(v.installment)
	if err != nil {
		return in, sel, fmt.Errorf("installment amount: %w", err)
	}
	in = model.PurchaseInput{CashPrice: cash, InstallmentCount: count, InstallmentAmount: amount}

	kind, err := model.ParseRateKind(v.kind)
	if err != nil {
		return in, sel, err
	}
	sel.Kind = kind
	if kind == model.RateCustom {
		annual, err := cli.ParseAmount(v.annual)
		if err != nil {
			return in, sel, fmt.Errorf("annual rate: %w", err)
		}
		sel.CustomAnnualRate = &annual
	}
	return in, sel, nil
}

func validatePositiveAmount(s string) error {
	v, err := cli.ParseAmount(s)
	if err != nil {
		return err
	}
	if v <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}

func validateCount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("must be a whole number greater than zero")
	}
	return nil
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	appCfg := env.store.LoadConfig(ctx)
	v := formValuesFrom(env.store.LoadLastInputs(ctx), appCfg)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Nome do orçamento").Placeholder(model.UnnamedBudget).Value(&v.name),
			huh.NewInput().Title("Preço à vista (Pix)").Placeholder("1.000,00").
				Value(&v.cash).Validate(validatePositiveAmount),
			huh.NewInput().Title("Número de parcelas").Placeholder("10").
				Value(&v.count).Validate(validateCount),
			huh.NewInput().Title("Valor de cada parcela").Placeholder("100,00").
				Value(&v.installment).Validate(validatePositiveAmount),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Taxa de desconto").
				Options(
					huh.NewOption(model.RateSelic.Label(), string(model.RateSelic)),
					huh.NewOption(model.RateCustom.Label(), string(model.RateCustom)),
				).
				Value(&v.kind),
		),
		huh.NewGroup(
			huh.NewInput().Title("Taxa anual (% a.a.)").Placeholder("12,5").
				Value(&v.annual).Validate(validatePositiveAmount),
		).WithHideFunc(func() bool { return v.kind != string(model.RateCustom) }),
		huh.NewGroup(
			huh.NewConfirm().Title("Salvar como orçamento?").Value(&v.save),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("form: %w", err)
	}

	in, sel, err := v.parse(appCfg)
	if err != nil {
		return err
	}
	c, err := env.evaluate(ctx, in, sel)
	if err != nil {
		return err
	}
	env.rememberSelection(ctx, sel)
	env.saveLastInputs(ctx, v.name, in)

	fmt.Println()
	fmt.Println(cli.RenderComparison(v.name, c.input, c.rate, c.result))
	if v.save {
		saved, err := env.saveComparison(ctx, "", v.name, c)
		if err != nil {
			return err
		}
		fmt.Printf("  Saved %q (%s)\n", saved.Name, cli.ShortID(saved.ID))
	}
	fmt.Println()
	return nil
}
