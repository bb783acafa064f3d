package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/pixparcela/internal/bcb"
	"github.com/theirongolddev/pixparcela/internal/config"
	"github.com/theirongolddev/pixparcela/internal/logging"
	"github.com/theirongolddev/pixparcela/internal/model"
	"github.com/theirongolddev/pixparcela/internal/rates"
	"github.com/theirongolddev/pixparcela/internal/store"
	"github.com/theirongolddev/pixparcela/internal/valuation"
)

var (
	flagConfigPath string
	flagBackend    string
	flagDBPath     string
	flagLogLevel   string
	flagOffline    bool
	flagNoColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "pixparcela",
	Short: "Pix ou parcelado? Compare paying cash against installments",
	Long: "Compare a cash price against an installment plan by discounting the installments\n" +
		"at the Selic reference rate or a custom annual rate, and keep named budgets.",
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		applyColorProfile()
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Settings file (default "+config.Path()+")")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend: sqlite, redis or memory")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "Skip the Selic lookup and use the cached or fallback rate")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

func applyColorProfile() {
	if flagNoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
}

// appEnv is what every command needs: settings, a logger, the store and a
// rate resolver.
type appEnv struct {
	cfg      config.Config
	logger   *zap.Logger
	kv       store.KV
	store    *store.Store
	resolver rates.Resolver
}

// loadSettings reads the settings file and applies command-line overrides.
func loadSettings() (config.Config, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return cfg, err
	}
	if flagBackend != "" {
		cfg.Storage.Backend = flagBackend
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

// openEnv is the shared setup path used by all commands that touch the store.
func openEnv(ctx context.Context) (*appEnv, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return nil, err
	}

	kv, err := store.OpenKV(ctx, store.Backend{
		Kind:        cfg.Storage.Backend,
		Path:        config.DBPath(cfg),
		RedisAddr:   cfg.Storage.RedisAddr,
		RedisPrefix: cfg.Storage.RedisPrefix,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	logger.Debug("storage opened", zap.String("backend", cfg.Storage.Backend))

	return &appEnv{
		cfg:      cfg,
		logger:   logger,
		kv:       kv,
		store:    store.New(kv, logger),
		resolver: newResolver(cfg, logger),
	}, nil
}

func newResolver(cfg config.Config, logger *zap.Logger) rates.Resolver {
	r := rates.Resolver{
		FallbackAnnualRate: cfg.Rates.FallbackAnnualRate,
		Logger:             logger,
	}
	if !flagOffline {
		opts := []bcb.Option{
			bcb.WithLogger(logger),
			bcb.WithMaxLookback(cfg.Rates.MaxLookbackDays),
		}
		if cfg.Rates.BaseURL != "" {
			opts = append(opts, bcb.WithBaseURL(cfg.Rates.BaseURL))
		}
		r.Source = bcb.NewClient(opts...)
	}
	return r
}

func (e *appEnv) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("closing storage", zap.Error(err))
	}
	_ = e.logger.Sync()
}

// comparison is one evaluated purchase.
type comparison struct {
	input  model.PurchaseInput
	rate   model.RateInfo
	result model.ComparisonResult
}

// evaluate validates the purchase, resolves the rate and compares. A freshly
// fetched reference quote is cached in the stored app config.
func (e *appEnv) evaluate(ctx context.Context, in model.PurchaseInput, sel rates.Selection) (comparison, error) {
	if err := valuation.Validate(in); err != nil {
		return comparison{}, err
	}
	info, err := e.resolveRate(ctx, sel)
	if err != nil {
		return comparison{}, err
	}
	if err := valuation.ValidateRate(info.MonthlyRate); err != nil {
		return comparison{}, err
	}
	return comparison{
		input:  in,
		rate:   info,
		result: valuation.Compare(in, info.MonthlyRate),
	}, nil
}

func (e *appEnv) resolveRate(ctx context.Context, sel rates.Selection) (model.RateInfo, error) {
	info, snap, err := e.resolver.Resolve(ctx, sel)
	if err != nil {
		return model.RateInfo{}, err
	}
	if snap != nil {
		cfg := e.store.LoadConfig(ctx)
		cfg.LastSelic = snap
		e.saveConfig(ctx, cfg)
	}
	return info, nil
}

// rememberSelection stores the rate choice so the next run starts from it.
func (e *appEnv) rememberSelection(ctx context.Context, sel rates.Selection) {
	cfg := e.store.LoadConfig(ctx)
	cfg.LastRateKind = sel.Kind
	if sel.Kind == model.RateCustom && sel.CustomAnnualRate != nil {
		cfg.LastCustomAnnualRate = sel.CustomAnnualRate
	}
	e.saveConfig(ctx, cfg)
}

func (e *appEnv) saveConfig(ctx context.Context, cfg model.AppConfig) {
	if err := e.store.SaveConfig(ctx, cfg); err != nil {
		e.logger.Warn("saving app config", zap.Error(err))
	}
}

func (e *appEnv) saveLastInputs(ctx context.Context, name string, in model.PurchaseInput) {
	if err := e.store.SaveLastInputs(ctx, model.LastInputsFrom(name, in)); err != nil {
		e.logger.Warn("saving last inputs", zap.Error(err))
	}
}
