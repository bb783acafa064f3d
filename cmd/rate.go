package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pixparcela/internal/cli"
	"github.com/theirongolddev/pixparcela/internal/rates"
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Show the monthly discount rate for the current selection",
	RunE:  runRate,
}

func init() {
	addRateFlags(rateCmd)
	rootCmd.AddCommand(rateCmd)
}

func runRate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	sel, err := selectionFromFlags(cmd, env.store.LoadConfig(ctx))
	if err != nil {
		return err
	}
	info, err := env.resolveRate(ctx, sel)
	if err != nil {
		return err
	}
	env.rememberSelection(ctx, sel)

	annual := rates.MonthlyToAnnual(info.MonthlyRate) * 100
	fmt.Println()
	fmt.Printf("  Source:   %s\n", info.Kind.Label())
	fmt.Printf("  Monthly:  %s\n", cli.FormatRate(info.MonthlyRate))
	fmt.Printf("  Annual:   %s\n", cli.FormatAnnual(annual))
	if info.AsOf != "" {
		fmt.Printf("  As of:    %s\n", info.AsOf)
	}
	if info.Fallback {
		fmt.Println("  Selic lookup failed; showing the cached or fallback rate.")
	}
	fmt.Println()
	return nil
}
