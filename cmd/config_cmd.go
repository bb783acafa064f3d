// Package cmd implements the pixparcela CLI commands.
package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pixparcela/internal/cli"
	"github.com/theirongolddev/pixparcela/internal/config"
	"github.com/theirongolddev/pixparcela/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration and remembered inputs",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the current values",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func configPath() string {
	if flagConfigPath != "" {
		return flagConfigPath
	}
	return config.Path()
}

func runConfig(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()
	cfg := env.cfg

	fmt.Printf("  Config file: %s\n", configPath())
	if config.Exists(flagConfigPath) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Backend:      %s\n", cfg.Storage.Backend)
	switch cfg.Storage.Backend {
	case store.BackendRedis:
		fmt.Printf("    Redis:        %s (prefix %q)\n", cfg.Storage.RedisAddr, cfg.Storage.RedisPrefix)
	case store.BackendMemory:
		fmt.Println("    Nothing is kept after the command exits.")
	default:
		fmt.Printf("    Database:     %s\n", config.DBPath(cfg))
	}
	if sq, ok := env.kv.(*store.SQLite); ok {
		keys, err := sq.Keys(ctx)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(keys))
		for k := range keys {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Printf("    %-28s updated %s\n", k, keys[k].Local().Format("02/01/2006 15:04"))
		}
	}
	fmt.Println()

	fmt.Println("  [Rates]")
	fmt.Printf("    Fallback:     %s\n", cli.FormatAnnual(cfg.Rates.FallbackAnnualRate))
	fmt.Printf("    Lookback:     %d days\n", cfg.Rates.MaxLookbackDays)
	if cfg.Rates.BaseURL != "" {
		fmt.Printf("    Endpoint:     %s\n", cfg.Rates.BaseURL)
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:        %s\n", cfg.Log.Level)
	fmt.Printf("    Format:       %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:      %s\n", cfg.Server.Addr)
	fmt.Printf("    Rate limit:   %d req/min\n", cfg.Server.RateLimit)
	fmt.Println()

	appCfg := env.store.LoadConfig(ctx)
	fmt.Println("  [Last selection]")
	fmt.Printf("    Rate:         %s\n", appCfg.LastRateKind.Label())
	if appCfg.LastCustomAnnualRate != nil {
		fmt.Printf("    Custom rate:  %s\n", cli.FormatAnnual(*appCfg.LastCustomAnnualRate))
	}
	if appCfg.LastSelic != nil {
		fmt.Printf("    Cached Selic: %s a.d. on %s\n",
			cli.FormatRate(appCfg.LastSelic.DailyRate), appCfg.LastSelic.QueriedAt)
	}

	last := env.store.LoadLastInputs(ctx)
	if !last.IsEmpty() {
		fmt.Println()
		fmt.Println("  [Last inputs]")
		if last.Name != "" {
			fmt.Printf("    Name:         %s\n", last.Name)
		}
		if last.CashPrice != nil {
			fmt.Printf("    Cash:         %s\n", cli.FormatBRL(*last.CashPrice))
		}
		if last.InstallmentCount != nil && last.InstallmentAmount != nil {
			fmt.Printf("    Installments: %s\n", cli.FormatInstallments(*last.InstallmentCount, *last.InstallmentAmount))
		}
	}
	fmt.Println()

	fmt.Println("  Run `pixparcela config init` to write a settings file.")
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if err := config.Save(flagConfigPath, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("  Saved to %s\n", configPath())
	return nil
}
