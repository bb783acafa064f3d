// Package server exposes the comparison engine and saved budgets over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/pixparcela/internal/model"
	"github.com/theirongolddev/pixparcela/internal/rates"
	"github.com/theirongolddev/pixparcela/internal/store"
	"github.com/theirongolddev/pixparcela/internal/valuation"
)

// Config controls the HTTP service.
type Config struct {
	Addr         string
	EventsBuffer int
	// RateLimit caps requests per client and minute on the endpoints that may
	// query the reference rate. Zero disables limiting.
	RateLimit    int
}

// Event is emitted whenever a budget is saved or deleted.
type Event struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	BudgetID  string        `json:"budgetId"`
	Budget    *model.Budget `json:"budget,omitempty"`
}

// Event types.
const (
	EventBudgetSaved   = "budget_saved"
	EventBudgetDeleted = "budget_deleted"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"startedAt"`
	Budgets         int       `json:"budgets"`
	EventCount      int       `json:"eventCount"`
	SubscriberCount int       `json:"subscriberCount"`
}

// CompareRequest is the body of POST /v1/compare and POST /v1/budgets.
type CompareRequest struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name,omitempty"`
	CashPrice         float64  `json:"cashPrice"`
	InstallmentCount  int      `json:"installmentCount"`
	InstallmentAmount float64  `json:"installmentAmount"`
	RateKind          string   `json:"rateKind,omitempty"`
	AnnualRate        *float64 `json:"annualRate,omitempty"`
}

// CompareResponse is returned by POST /v1/compare.
type CompareResponse struct {
	Input  model.PurchaseInput    `json:"input"`
	Rate   model.RateInfo         `json:"rate"`
	Result model.ComparisonResult `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Service serves the HTTP API. Store access is serialized by storeMu since
// the store itself does unguarded read-modify-write cycles.
type Service struct {
	cfg      Config
	store    *store.Store
	resolver rates.Resolver
	logger   *zap.Logger
	limiter  *RateLimiter

	storeMu sync.Mutex

	mu          sync.RWMutex
	startedAt   time.Time
	nextEventID int64
	events      []Event
	nextSubID   int
	subs        map[int]chan Event
}

// New returns a service over st. A nil logger is replaced with a no-op one.
func New(cfg Config, st *store.Store, resolver rates.Resolver, logger *zap.Logger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver.Logger == nil {
		resolver.Logger = logger
	}

	s := &Service{
		cfg:       cfg,
		store:     st,
		resolver:  resolver,
		logger:    logger,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	if cfg.RateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit, time.Minute)
	}
	return s
}

// Handler returns the API routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/rate", limit(s.limiter, s.handleRate))
	mux.HandleFunc("POST /v1/compare", limit(s.limiter, s.handleCompare))
	mux.HandleFunc("GET /v1/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /v1/budgets", limit(s.limiter, s.handleSaveBudget))
	mux.HandleFunc("GET /v1/budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("DELETE /v1/budgets/{id}", s.handleDeleteBudget)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	return s.logRequests(mux)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("http api listening", zap.String("addr", s.cfg.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.storeMu.Lock()
	n := len(s.store.ListBudgets(r.Context()))
	s.storeMu.Unlock()

	s.mu.RLock()
	st := Status{
		StartedAt:       s.startedAt,
		Budgets:         n,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, st)
}

func (s *Service) handleRate(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r.Context(), r.URL.Query().Get("kind"), nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if v := r.URL.Query().Get("annual"); v != "" {
		annual, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid annual rate %q", v))
			return
		}
		sel.CustomAnnualRate = &annual
	}

	info, err := s.resolve(r.Context(), sel)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Service) handleCompare(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	resp, err := s.evaluate(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	s.storeMu.Lock()
	budgets := s.store.ListBudgets(r.Context())
	s.storeMu.Unlock()

	if budgets == nil {
		budgets = []model.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Service) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	resp, err := s.evaluate(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	s.storeMu.Lock()
	status := http.StatusCreated
	b, found := model.Budget{}, false
	if req.ID != "" {
		b, found = s.store.GetBudget(r.Context(), req.ID)
	}
	if found {
		status = http.StatusOK
		b.Apply(req.Name, resp.Input, resp.Rate, resp.Result)
	} else {
		b = model.NewBudget(req.Name, resp.Input, resp.Rate, resp.Result)
		if req.ID != "" {
			b.ID = req.ID
		}
	}
	saved, err := s.store.SaveBudget(r.Context(), b)
	s.storeMu.Unlock()
	if err != nil {
		s.logger.Error("saving budget failed", zap.String("id", b.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.publishEvent(EventBudgetSaved, saved.ID, &saved)
	writeJSON(w, status, saved)
}

func (s *Service) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.storeMu.Lock()
	b, ok := s.store.GetBudget(r.Context(), id)
	s.storeMu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("budget %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Service) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.storeMu.Lock()
	_, existed := s.store.GetBudget(r.Context(), id)
	err := s.store.DeleteBudget(r.Context(), id)
	s.storeMu.Unlock()
	if err != nil {
		s.logger.Error("deleting budget failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if existed {
		s.publishEvent(EventBudgetDeleted, id, nil)
	}
	w.WriteHeader(http.StatusNoContent)
}

// evaluate validates req, resolves its rate and runs the comparison.
func (s *Service) evaluate(ctx context.Context, req CompareRequest) (CompareResponse, error) {
	in := model.PurchaseInput{
		CashPrice:         req.CashPrice,
		InstallmentCount:  req.InstallmentCount,
		InstallmentAmount: req.InstallmentAmount,
	}
	if err := valuation.Validate(in); err != nil {
		return CompareResponse{}, err
	}

	sel, err := s.selection(ctx, req.RateKind, req.AnnualRate)
	if err != nil {
		return CompareResponse{}, err
	}
	info, err := s.resolve(ctx, sel)
	if err != nil {
		return CompareResponse{}, err
	}
	if err := valuation.ValidateRate(info.MonthlyRate); err != nil {
		return CompareResponse{}, err
	}

	return CompareResponse{
		Input:  in,
		Rate:   info,
		Result: valuation.Compare(in, info.MonthlyRate),
	}, nil
}

// selection builds a rate selection, reusing the cached reference quote from
// the stored app config.
func (s *Service) selection(ctx context.Context, kind string, annual *float64) (rates.Selection, error) {
	k, err := model.ParseRateKind(kind)
	if err != nil {
		return rates.Selection{}, fmt.Errorf("%w: %v", rates.ErrInvalidRate, err)
	}

	s.storeMu.Lock()
	cfg := s.store.LoadConfig(ctx)
	s.storeMu.Unlock()

	return rates.Selection{Kind: k, CustomAnnualRate: annual, Cached: cfg.LastSelic}, nil
}

// resolve runs the resolver outside the store lock and caches a fresh quote.
func (s *Service) resolve(ctx context.Context, sel rates.Selection) (model.RateInfo, error) {
	info, snap, err := s.resolver.Resolve(ctx, sel)
	if err != nil {
		return model.RateInfo{}, err
	}
	if snap != nil {
		s.storeMu.Lock()
		cfg := s.store.LoadConfig(ctx)
		cfg.LastSelic = snap
		if err := s.store.SaveConfig(ctx, cfg); err != nil {
			s.logger.Warn("caching reference quote failed", zap.Error(err))
		}
		s.storeMu.Unlock()
	}
	return info, nil
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func (s *Service) publishEvent(typ, budgetID string, b *model.Budget) {
	s.mu.Lock()
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      typ,
		Timestamp: time.Now().UTC(),
		BudgetID:  budgetID,
		Budget:    b,
	}
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func writeSSE(w io.Writer, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (CompareRequest, bool) {
	var req CompareRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return req, false
	}
	return req, true
}

func statusFor(err error) int {
	if errors.Is(err, valuation.ErrInvalidInput) ||
		errors.Is(err, valuation.ErrInvalidRate) ||
		errors.Is(err, rates.ErrInvalidRate) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
