package rates

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/pixparcela/internal/bcb"
	"github.com/theirongolddev/pixparcela/internal/model"
)

// DefaultFallbackAnnualRate is used when the reference rate is unavailable and
// nothing is cached. Percent a year.
const DefaultFallbackAnnualRate = 10.0

// ErrInvalidRate means a custom rate is missing or not a positive number.
var ErrInvalidRate = errors.New("rates: custom annual rate must be a positive number")

// ReferenceSource supplies the daily reference rate. *bcb.Client implements it.
type ReferenceSource interface {
	Latest(ctx context.Context) (bcb.Quote, error)
}

// Selection is what the user picked: a rate kind plus, for custom rates, the
// annual percentage.
type Selection struct {
	Kind             model.RateKind
	CustomAnnualRate *float64
	// Cached is the last successful reference lookup, used when the source fails.
	Cached *model.SelicSnapshot
}

// SelectionFromConfig rebuilds the last selection stored in the app config.
func SelectionFromConfig(cfg model.AppConfig) Selection {
	return Selection{
		Kind:             cfg.LastRateKind,
		CustomAnnualRate: cfg.LastCustomAnnualRate,
		Cached:           cfg.LastSelic,
	}
}

// Resolver turns a Selection into a monthly rate.
type Resolver struct {
	// Source may be nil, in which case reference lookups go straight to the fallback.
	Source ReferenceSource
	// FallbackAnnualRate is a percentage. Zero means DefaultFallbackAnnualRate.
	FallbackAnnualRate float64
	Logger             *zap.Logger
}

// Resolve returns the monthly rate for sel. Reference lookups never fail: a
// source error degrades to the cached quote, then to the fallback rate.
// The returned snapshot is non-nil only when a fresh quote was fetched.
func (r Resolver) Resolve(ctx context.Context, sel Selection) (model.RateInfo, *model.SelicSnapshot, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if sel.Kind == model.RateCustom {
		info, err := Custom(sel.CustomAnnualRate)
		return info, nil, err
	}

	if r.Source != nil {
		q, err := r.Source.Latest(ctx)
		if err == nil {
			snap := &model.SelicSnapshot{DailyRate: q.DailyRate, QueriedAt: q.Date}
			return model.RateInfo{
				Kind:        model.RateSelic,
				MonthlyRate: DailyToMonthly(q.DailyRate),
				AsOf:        q.Date,
			}, snap, nil
		}
		logger.Warn("reference rate unavailable",
			zap.String("op", "rates.Resolve"),
			zap.Bool("cached", sel.Cached != nil),
			zap.Error(err),
		)
	}

	if sel.Cached != nil {
		return model.RateInfo{
			Kind:        model.RateSelic,
			MonthlyRate: DailyToMonthly(sel.Cached.DailyRate),
			AsOf:        sel.Cached.QueriedAt,
			Fallback:    true,
		}, nil, nil
	}

	fallback := r.FallbackAnnualRate
	if fallback == 0 {
		fallback = DefaultFallbackAnnualRate
	}
	annual := fallback
	return model.RateInfo{
		Kind:        model.RateSelic,
		MonthlyRate: AnnualToMonthly(PercentToDecimal(fallback)),
		AnnualRate:  &annual,
		AsOf:        time.Now().Format(bcb.DateLayout),
		Fallback:    true,
	}, nil, nil
}

// Custom converts a user-entered annual percentage into a RateInfo.
func Custom(annualPct *float64) (model.RateInfo, error) {
	if annualPct == nil {
		return model.RateInfo{}, fmt.Errorf("%w: none given", ErrInvalidRate)
	}
	a := *annualPct
	if math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 {
		return model.RateInfo{}, fmt.Errorf("%w: got %v", ErrInvalidRate, a)
	}
	return model.RateInfo{
		Kind:        model.RateCustom,
		MonthlyRate: AnnualToMonthly(PercentToDecimal(a)),
		AnnualRate:  &a,
	}, nil
}
