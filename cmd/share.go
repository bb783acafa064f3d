package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pixparcela/internal/cli"
)

var shareCmd = &cobra.Command{
	Use:   "share ID",
	Short: "Print a plain-text summary of a saved budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runShare,
}

func init() {
	rootCmd.AddCommand(shareCmd)
}

func runShare(cmd *cobra.Command, args []string) error {
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
	fmt.Print(cli.ShareMessage(b))
	return nil
}
