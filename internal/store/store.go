package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/pixparcela/internal/model"
)

// Store reads and writes the three persisted records. It assumes a single
// writer: SaveBudget and DeleteBudget are unguarded read-modify-write cycles.
type Store struct {
	kv     KV
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for timestamping budgets.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New wraps kv. A nil logger discards read-failure reports.
func New(kv KV, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{kv: kv, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.kv.Close()
}

// SaveBudget inserts b, or replaces the budget with the same ID. CreatedAt of
// an existing record is kept and UpdatedAt set to now; a new record gets both
// set to now. The stored record is returned.
func (s *Store) SaveBudget(ctx context.Context, b model.Budget) (model.Budget, error) {
	budgets, err := s.loadBudgets(ctx)
	if err != nil {
		return model.Budget{}, err
	}
	now := s.now().UTC()

	idx := -1
	for i := range budgets {
		if budgets[i].ID == b.ID {
			idx = i
			break
		}
	}

	if idx >= 0 {
		b.CreatedAt = budgets[idx].CreatedAt
		b.UpdatedAt = now
		// Keep updatedAt >= createdAt if the clock stepped backwards.
		if b.UpdatedAt.Before(b.CreatedAt) {
			b.UpdatedAt = b.CreatedAt
		}
		budgets[idx] = b
	} else {
		b.CreatedAt = now
		b.UpdatedAt = now
		budgets = append(budgets, b)
	}

	if err := s.writeJSON(ctx, KeyBudgets, budgets); err != nil {
		return model.Budget{}, err
	}
	return b, nil
}

// ListBudgets returns every budget, most recently updated first. Budgets with
// equal UpdatedAt keep their stored order.
func (s *Store) ListBudgets(ctx context.Context) []model.Budget {
	budgets := s.readBudgets(ctx)
	sort.SliceStable(budgets, func(i, j int) bool {
		return budgets[i].UpdatedAt.After(budgets[j].UpdatedAt)
	})
	return budgets
}

// GetBudget returns the budget with the given ID.
func (s *Store) GetBudget(ctx context.Context, id string) (model.Budget, bool) {
	for _, b := range s.readBudgets(ctx) {
		if b.ID == id {
			return b, true
		}
	}
	return model.Budget{}, false
}

// DeleteBudget removes the budget with the given ID. Unknown IDs are ignored;
// a backend read failure is returned.
func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	budgets, err := s.loadBudgets(ctx)
	if err != nil {
		return err
	}
	kept := budgets[:0]
	for _, b := range budgets {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(budgets) {
		return nil
	}
	return s.writeJSON(ctx, KeyBudgets, kept)
}

// SaveConfig replaces the stored rate selection.
func (s *Store) SaveConfig(ctx context.Context, cfg model.AppConfig) error {
	return s.writeJSON(ctx, KeyConfig, cfg)
}

// LoadConfig returns the stored rate selection, or the default selection when
// nothing is stored or the record cannot be read.
func (s *Store) LoadConfig(ctx context.Context) model.AppConfig {
	var cfg model.AppConfig
	if !s.readJSON(ctx, KeyConfig, &cfg) {
		return model.DefaultAppConfig()
	}
	if cfg.LastRateKind == "" {
		cfg.LastRateKind = model.RateSelic
	}
	return cfg
}

// SaveLastInputs replaces the stored form inputs.
func (s *Store) SaveLastInputs(ctx context.Context, in model.LastInputs) error {
	return s.writeJSON(ctx, KeyLastInputs, in)
}

// LoadLastInputs returns the stored form inputs, or an empty record.
func (s *Store) LoadLastInputs(ctx context.Context) model.LastInputs {
	var in model.LastInputs
	if !s.readJSON(ctx, KeyLastInputs, &in) {
		return model.LastInputs{}
	}
	return in
}

func (s *Store) readBudgets(ctx context.Context) []model.Budget {
	budgets, err := s.loadBudgets(ctx)
	if err != nil {
		s.logger.Warn("reading stored record",
			zap.String("op", "store.read"),
			zap.String("key", KeyBudgets),
			zap.Error(err),
		)
		return nil
	}
	return budgets
}

// loadBudgets is the read half of SaveBudget and DeleteBudget. Backend errors
// are returned so a failed read never turns into an overwrite; a malformed
// collection is logged and treated as empty.
func (s *Store) loadBudgets(ctx context.Context) ([]model.Budget, error) {
	raw, ok, err := s.kv.Get(ctx, KeyBudgets)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", KeyBudgets, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var budgets []model.Budget
	if !s.decode(KeyBudgets, raw, &budgets) {
		return nil, nil
	}
	return budgets, nil
}

// readJSON decodes the value under key into dst. It reports false when the key
// is absent or unreadable; failures are logged, never returned.
func (s *Store) readJSON(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("reading stored record",
			zap.String("op", "store.read"),
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	if !ok || raw == "" {
		return false
	}
	return s.decode(key, raw, dst)
}

func (s *Store) decode(key, raw string, dst any) bool {
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("discarding malformed stored record",
			zap.String("op", "store.read"),
			zap.String("key", key),
			zap.Int("bytes", len(raw)),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (s *Store) writeJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
