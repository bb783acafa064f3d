package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pixparcela/internal/cli"
	"github.com/theirongolddev/pixparcela/internal/model"
	"github.com/theirongolddev/pixparcela/internal/rates"
)

var budgetsCmd = &cobra.Command{
	Use:     "budgets",
	Aliases: []string{"orcamentos"},
	Short:   "List and manage saved budgets",
	RunE:    runBudgetsList,
}

var budgetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved budgets, most recently updated first",
	RunE:  runBudgetsList,
}

var budgetsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a saved budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsShow,
}

var budgetsDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete a saved budget",
	Args:    cobra.ExactArgs(1),
	RunE:    runBudgetsDelete,
}

var budgetsRecomputeCmd = &cobra.Command{
	Use:   "recompute ID",
	Short: "Recompute a saved budget with the current rate",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsRecompute,
}

func init() {
	budgetsCmd.AddCommand(budgetsListCmd)
	budgetsCmd.AddCommand(budgetsShowCmd)
	budgetsCmd.AddCommand(budgetsDeleteCmd)
	budgetsCmd.AddCommand(budgetsRecomputeCmd)
	rootCmd.AddCommand(budgetsCmd)
}

func runBudgetsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	budgets := env.store.ListBudgets(ctx)
	fmt.Println()
	if len(budgets) == 0 {
		fmt.Println("  No saved budgets. Save one with `pixparcela compare ... --save`.")
		fmt.Println()
		return nil
	}
	fmt.Print(cli.RenderTable(cli.BudgetsTable(budgets, time.Now())))
	fmt.Println()
	return nil
}

func runBudgetsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	b, err := findBudget(ctx, env, args[0])
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderComparison(b.Name, b.Input(), b.Rate(), b.Result()))
	fmt.Printf("  ID:         %s\n", b.ID)
	fmt.Printf("  Created:    %s\n", b.CreatedAt.Local().Format("02/01/2006 15:04"))
	fmt.Printf("  Updated:    %s\n", b.UpdatedAt.Local().Format("02/01/2006 15:04"))
	fmt.Println()
	return nil
}

func runBudgetsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	b, err := findBudget(ctx, env, args[0])
	if err != nil {
		return err
	}
	if err := env.store.DeleteBudget(ctx, b.ID); err != nil {
		return err
	}
	fmt.Printf("  Deleted %q (%s)\n", b.Name, cli.ShortID(b.ID))
	return nil
}

func runBudgetsRecompute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	b, err := findBudget(ctx, env, args[0])
	if err != nil {
		return err
	}

	sel := rates.Selection{
		Kind:             b.RateKind,
		CustomAnnualRate: b.AnnualRate,
		Cached:           env.store.LoadConfig(ctx).LastSelic,
	}
	if sel.Kind == "" {
		sel.Kind = model.RateSelic
	}
	c, err := env.evaluate(ctx, b.Input(), sel)
	if err != nil {
		return err
	}

	before := b.PresentValue
	b.Apply(b.Name, c.input, c.rate, c.result)
	saved, err := env.store.SaveBudget(ctx, b)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderComparison(saved.Name, c.input, c.rate, c.result))
	fmt.Printf("  Present value: %s -> %s\n", cli.FormatBRL(before), cli.FormatBRL(saved.PresentValue))
	fmt.Println()
	return nil
}

// findBudget resolves a full ID or a unique ID prefix, as shown by `budgets list`.
func findBudget(ctx context.Context, env *appEnv, idOrPrefix string) (model.Budget, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return model.Budget{}, errors.New("empty budget ID")
	}
	if b, ok := env.store.GetBudget(ctx, idOrPrefix); ok {
		return b, nil
	}

	var matches []model.Budget
	for _, b := range env.store.ListBudgets(ctx) {
		if strings.HasPrefix(b.ID, idOrPrefix) {
			matches = append(matches, b)
		}
	}
	switch len(matches) {
	case 0:
		return model.Budget{}, fmt.Errorf("no budget with ID %q", idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return model.Budget{}, fmt.Errorf("ID prefix %q matches %d budgets", idOrPrefix, len(matches))
	}
}
