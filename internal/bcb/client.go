// Package bcb fetches the daily Selic rate from the Banco Central do Brasil SGS API.
package bcb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the SGS endpoint for series 11 (daily Selic, percent).
	DefaultBaseURL = "https://api.bcb.gov.br/dados/serie/bcdata.sgs.11/dados"
	// DefaultMaxLookbackDays bounds the walk back over weekends and holidays.
	DefaultMaxLookbackDays = 30

	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrNoData means no observation was published inside the lookback window.
	ErrNoData = errors.New("bcb: no Selic observation within lookback window")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("bcb: rate limited")
)

// Client queries the SGS daily Selic series.
type Client struct {
	baseURL     string
	maxLookback int
	http        *http.Client
	logger      *zap.Logger
	now         func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the series endpoint. Empty values are ignored.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimSpace(u); u != "" {
			c.baseURL = u
		}
	}
}

// WithMaxLookback sets how many days before the requested date may be tried.
// Values below 1 keep the default.
func WithMaxLookback(days int) Option {
	return func(c *Client) {
		if days > 0 {
			c.maxLookback = days
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the logger for lookup diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		maxLookback: DefaultMaxLookbackDays,
		http:        &http.Client{},
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Latest returns the most recent observation at or before today.
func (c *Client) Latest(ctx context.Context) (Quote, error) {
	return c.DailySelic(ctx, c.now())
}

// DailySelic returns the observation for date, walking back one day at a time
// while the series has no entry (weekends, holidays), at most maxLookback days.
func (c *Client) DailySelic(ctx context.Context, date time.Time) (Quote, error) {
	day := date
	for attempt := 0; attempt <= c.maxLookback; attempt++ {
		obs, err := c.fetchDay(ctx, day)
		if err != nil {
			return Quote{}, err
		}
		if len(obs) > 0 {
			rate, err := parseValor(obs[0].Valor)
			if err != nil {
				return Quote{}, err
			}
			c.logger.Debug("selic observation found",
				zap.String("op", "bcb.DailySelic"),
				zap.String("date", obs[0].Data),
				zap.Int("attempts", attempt+1),
			)
			return Quote{
				DailyRate: rate / 100,
				Date:      obs[0].Data,
				Attempts:  attempt + 1,
				FetchedAt: c.now(),
			}, nil
		}
		day = day.AddDate(0, 0, -1)
	}
	return Quote{}, fmt.Errorf("%w (%d days before %s)", ErrNoData, c.maxLookback, date.Format(DateLayout))
}

func (c *Client) fetchDay(ctx context.Context, day time.Time) ([]Observation, error) {
	d := day.Format(DateLayout)
	q := url.Values{}
	q.Set("formato", "json")
	q.Set("dataInicial", d)
	q.Set("dataFinal", d)

	body, err := c.get(ctx, c.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var obs []Observation
	if err := json.Unmarshal(body, &obs); err != nil {
		// SGS answers an empty range with an error object rather than [].
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) == nil && (apiErr.Error != "" || apiErr.Message != "") {
			return nil, nil
		}
		return nil, fmt.Errorf("bcb: parsing observations: %w", err)
	}
	return obs, nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("bcb: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/pixparcela/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bcb: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusNotFound:
		// Dates without data sometimes come back as 404.
		return []byte("[]"), nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bcb: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("bcb: reading response: %w", err)
	}
	return body, nil
}

// parseValor accepts "0.055131", "0,055131" or a bare JSON number.
func parseValor(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("bcb: observation has no valor")
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v, nil
		}
	}
	return 0, fmt.Errorf("bcb: invalid valor %s", string(raw))
}
