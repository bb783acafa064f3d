package bcb

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

// seriesServer answers with data only for the given dates.
func seriesServer(t *testing.T, data map[string]string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		q := r.URL.Query()
		if q.Get("formato") != "json" {
			t.Errorf("formato = %q, want json", q.Get("formato"))
		}
		if q.Get("dataInicial") != q.Get("dataFinal") {
			t.Errorf("date range %s..%s, want a single day", q.Get("dataInicial"), q.Get("dataFinal"))
		}
		day := q.Get("dataInicial")
		obs := []map[string]string{}
		if v, ok := data[day]; ok {
			obs = append(obs, map[string]string{"data": day, "valor": v})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(obs)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDailySelic_WalksBackOverWeekend(t *testing.T) {
	var hits int32
	srv := seriesServer(t, map[string]string{"17/10/2025": "0.055131"}, &hits)

	c := NewClient(WithBaseURL(srv.URL))
	q, err := c.DailySelic(context.Background(), mustDate(t, "19/10/2025")) // Sunday
	if err != nil {
		t.Fatalf("DailySelic: %v", err)
	}
	if q.Date != "17/10/2025" {
		t.Fatalf("Date = %q, want 17/10/2025", q.Date)
	}
	if math.Abs(q.DailyRate-0.00055131) > 1e-12 {
		t.Fatalf("DailyRate = %v, want 0.00055131", q.DailyRate)
	}
	if q.Attempts != 3 || atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("attempts = %d, hits = %d, want 3", q.Attempts, hits)
	}
}

func TestDailySelic_BoundedLookback(t *testing.T) {
	var hits int32
	srv := seriesServer(t, nil, &hits)

	c := NewClient(WithBaseURL(srv.URL), WithMaxLookback(5))
	_, err := c.DailySelic(context.Background(), mustDate(t, "19/10/2025"))
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
	if got := atomic.LoadInt32(&hits); got != 6 {
		t.Fatalf("hits = %d, want 6 (requested day + 5 lookback days)", got)
	}
}

func TestDailySelic_ErrorObjectCountsAsEmpty(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		if n == 1 {
			_, _ = w.Write([]byte(`{"error":"Value(s) not found","message":"empty range"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"data":"18/10/2025","valor":"0,05"}]`))
	}))
	defer srv.Close()

	q, err := NewClient(WithBaseURL(srv.URL)).DailySelic(context.Background(), mustDate(t, "19/10/2025"))
	if err != nil {
		t.Fatalf("DailySelic: %v", err)
	}
	if math.Abs(q.DailyRate-0.0005) > 1e-12 {
		t.Fatalf("DailyRate = %v, want 0.0005", q.DailyRate)
	}
}

func TestDailySelic_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		target error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, nil},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		_, err := NewClient(WithBaseURL(srv.URL)).DailySelic(context.Background(), time.Now())
		srv.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if tt.target != nil && !errors.Is(err, tt.target) {
			t.Fatalf("status %d: err = %v, want %v", tt.status, err, tt.target)
		}
	}
}

func TestLatest_UsesClock(t *testing.T) {
	var hits int32
	srv := seriesServer(t, map[string]string{"01/07/2025": "0.054"}, &hits)

	c := NewClient(WithBaseURL(srv.URL))
	c.now = func() time.Time { return mustDate(t, "01/07/2025") }
	q, err := c.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if q.Date != "01/07/2025" || q.Attempts != 1 {
		t.Fatalf("got %+v", q)
	}
}

func TestParseValor(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{`"0.055131"`, 0.055131, true},
		{`" 0,0551 "`, 0.0551, true},
		{`0.05`, 0.05, true},
		{`"abc"`, 0, false},
		{`null`, 0, false},
		{``, 0, false},
	}
	for _, tt := range tests {
		got, err := parseValor(json.RawMessage(tt.raw))
		if (err == nil) != tt.ok {
			t.Errorf("parseValor(%s) err = %v, want ok=%v", tt.raw, err, tt.ok)
			continue
		}
		if tt.ok && math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("parseValor(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
