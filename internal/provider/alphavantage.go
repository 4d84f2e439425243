package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wheelhouse/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

const defaultBaseURL = "https://www.alphavantage.co"

// AlphaVantageConfig carries the upstream and policy settings for the
// provider.
type AlphaVantageConfig struct {
	BaseURL             string
	APIKey              string
	MaxAttempts         int
	RetryBaseDelay      time.Duration
	PremiumBasis        domain.PremiumBasis
	ATMTolerancePercent decimal.Decimal
}

// AlphaVantageProvider fetches quotes, daily bars, and option chains from the
// Alpha Vantage API under a shared rate limiter and a bounded retry policy.
type AlphaVantageProvider struct {
	client  *http.Client
	cfg     AlphaVantageConfig
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewAlphaVantageProvider creates a provider. The limiter is process-wide and
// must be shared by every caller hitting the same upstream.
func NewAlphaVantageProvider(cfg AlphaVantageConfig, tracer trace.Tracer, limiter *RateLimiter) *AlphaVantageProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 2 * time.Second
	}
	if cfg.ATMTolerancePercent.IsZero() {
		cfg.ATMTolerancePercent = decimal.RequireFromString("0.5")
	}
	return &AlphaVantageProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		cfg:     cfg,
		tracer:  tracer,
		limiter: limiter,
	}
}

// GetQuote fetches the current GLOBAL_QUOTE for a ticker.
func (p *AlphaVantageProvider) GetQuote(ctx context.Context, ticker string) (*domain.Quote, error) {
	_, span := p.tracer.Start(ctx, "alphavantage.get-quote")
	defer span.End()

	query := url.Values{}
	query.Set("function", "GLOBAL_QUOTE")
	query.Set("symbol", ticker)
	query.Set("apikey", p.cfg.APIKey)

	body, err := p.doRequest(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch quote for %s: %w", ticker, err)
	}

	quote := parseGlobalQuote(body, ticker)
	if quote == nil {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}
	return quote, nil
}

// GetDailyBars fetches OHLCV bars in the inclusive [from, to] window, ordered
// ascending by date. Interval is 1D (default), 1W, or 1M.
func (p *AlphaVantageProvider) GetDailyBars(ctx context.Context, ticker string, from, to time.Time, interval string) ([]domain.PriceBar, error) {
	_, span := p.tracer.Start(ctx, "alphavantage.get-daily-bars")
	defer span.End()

	var function, seriesKey string
	switch strings.ToUpper(interval) {
	case "1W":
		function = "TIME_SERIES_WEEKLY"
		seriesKey = seriesKeyWeekly
	case "1M":
		function = "TIME_SERIES_MONTHLY"
		seriesKey = seriesKeyMonthly
	default:
		function = "TIME_SERIES_DAILY"
		seriesKey = seriesKeyDaily
	}

	query := url.Values{}
	query.Set("function", function)
	query.Set("symbol", ticker)
	query.Set("apikey", p.cfg.APIKey)

	// compact returns ~100 rows; only daily requests spanning more need the
	// full dump.
	outputSize := "compact"
	if function == "TIME_SERIES_DAILY" && truncateToDay(to).Sub(truncateToDay(from)) > 100*24*time.Hour {
		outputSize = "full"
	}
	query.Set("outputsize", outputSize)

	body, err := p.doRequest(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch bars for %s: %w", ticker, err)
	}

	return buildBarSeries(parseTimeSeriesBars(body, seriesKey), from, to), nil
}

// GetOptionChain fetches and normalizes the option chain for a ticker. The
// underlying price comes from a quote lookup; asOf selects a historical
// snapshot date when set.
func (p *AlphaVantageProvider) GetOptionChain(ctx context.Context, ticker string, asOf *time.Time) (*domain.OptionChainSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "alphavantage.get-option-chain")
	defer span.End()

	quote, err := p.GetQuote(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("resolve underlying price for %s: %w", ticker, err)
	}

	query := url.Values{}
	query.Set("function", "HISTORICAL_OPTIONS")
	query.Set("symbol", ticker)
	query.Set("apikey", p.cfg.APIKey)
	if asOf != nil {
		query.Set("date", asOf.Format("2006-01-02"))
	}

	body, err := p.doRequest(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch option chain for %s: %w", ticker, err)
	}

	var parsed historicalOptionsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse option chain for %s: %w", ticker, err)
	}

	snapshotTime := time.Now().UTC()
	if asOf != nil {
		snapshotTime = *asOf
	}

	return normalizeOptionChain(ticker, quote.Price, snapshotTime, parsed.Data, p.cfg.PremiumBasis, p.cfg.ATMTolerancePercent), nil
}

// doRequest issues one upstream GET under the rate limiter and retry policy.
// 5xx, 429, network failures, and rate-limit rejections are retried with
// backoff; other non-200 statuses propagate immediately.
func (p *AlphaVantageProvider) doRequest(ctx context.Context, query url.Values) ([]byte, error) {
	reqURL := buildURL(p.cfg.BaseURL, "query", query)

	var body []byte
	err := withRetry(ctx, p.cfg.MaxAttempts, p.cfg.RetryBaseDelay, func() error {
		if err := p.limiter.Allow(); err != nil {
			return markTransient(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return markTransient(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			b, _ := io.ReadAll(resp.Body)
			return markTransient(fmt.Errorf("alphavantage API error %d: %s", resp.StatusCode, string(b)))
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("alphavantage API error %d: %s", resp.StatusCode, string(b))
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return markTransient(err)
		}
		body = b
		return nil
	})
	return body, err
}
