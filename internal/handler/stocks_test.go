package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wheelhouse/internal/domain"
	"wheelhouse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("handler-test")

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct {
	quote    *domain.Quote
	bars     []domain.PriceBar
	snapshot *domain.OptionChainSnapshot
	err      error

	lastTicker string
	lastFrom   time.Time
	lastTo     time.Time
	lastWindow string
	lastAsOf   *time.Time
}

func (s *stubProvider) GetQuote(ctx context.Context, ticker string) (*domain.Quote, error) {
	s.lastTicker = ticker
	if s.err != nil {
		return nil, s.err
	}
	return s.quote, nil
}

func (s *stubProvider) GetDailyBars(ctx context.Context, ticker string, from, to time.Time, interval string) ([]domain.PriceBar, error) {
	s.lastTicker = ticker
	s.lastFrom = from
	s.lastTo = to
	s.lastWindow = interval
	if s.err != nil {
		return nil, s.err
	}
	return s.bars, nil
}

func (s *stubProvider) GetOptionChain(ctx context.Context, ticker string, asOf *time.Time) (*domain.OptionChainSnapshot, error) {
	s.lastTicker = ticker
	s.lastAsOf = asOf
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

type stubIndicators struct {
	result   *domain.IndicatorResult
	err      error
	lastAsOf *time.Time
}

func (s *stubIndicators) GetIndicators(ctx context.Context, ticker string, asOf *time.Time) (*domain.IndicatorResult, error) {
	s.lastAsOf = asOf
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestRouter(provider *stubProvider, indicators *stubIndicators, apiKey string) *gin.Engine {
	h := New(testTracer, service.NewMarketService(testTracer, provider), indicators)
	router := gin.New()
	h.RegisterRoutes(router, apiKey)
	return router
}

func TestGetQuoteUppercasesTicker(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{quote: &domain.Quote{Ticker: "AAPL", Price: decimal.NewFromInt(190)}}
	router := newTestRouter(provider, &stubIndicators{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stocks/aapl/quote", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if provider.lastTicker != "AAPL" {
		t.Fatalf("expected uppercased ticker, got %s", provider.lastTicker)
	}
}

func TestGetQuoteUpstreamFailure(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{err: errors.New("upstream down")}
	router := newTestRouter(provider, &stubIndicators{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stocks/AAPL/quote", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestGetHistoryDefaultsAndEnvelope(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{bars: []domain.PriceBar{{
		Date:  time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Open:  decimal.NewFromInt(100),
		High:  decimal.NewFromInt(105),
		Low:   decimal.NewFromInt(99),
		Close: decimal.NewFromInt(104),
	}}}
	router := newTestRouter(provider, &stubIndicators{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stocks/AAPL/history", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if provider.lastWindow != "1D" {
		t.Fatalf("expected default interval 1D, got %s", provider.lastWindow)
	}
	if got := provider.lastTo.Sub(provider.lastFrom); got != 100*24*time.Hour {
		t.Fatalf("expected default 100-day window, got %v", got)
	}

	var body struct {
		Ticker   string            `json:"ticker"`
		Interval string            `json:"interval"`
		Bars     []json.RawMessage `json:"bars"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Ticker != "AAPL" || body.Interval != "1D" || len(body.Bars) != 1 {
		t.Fatalf("unexpected envelope: %+v", body)
	}
}

func TestGetHistoryExplicitWindow(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	router := newTestRouter(provider, &stubIndicators{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stocks/AAPL/history?from=2025-01-01&to=2025-06-30&interval=1w", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if provider.lastWindow != "1W" {
		t.Fatalf("expected interval normalized to 1W, got %s", provider.lastWindow)
	}
	if !provider.lastFrom.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from: %v", provider.lastFrom)
	}
}

func TestGetHistoryRejectsBadInput(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubProvider{}, &stubIndicators{}, "")

	for _, path := range []string{
		"/api/stocks/AAPL/history?from=January",
		"/api/stocks/AAPL/history?to=2025-13-99",
		"/api/stocks/AAPL/history?interval=5m",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestGetOptionChainPassesDate(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{snapshot: &domain.OptionChainSnapshot{Ticker: "AAPL"}}
	router := newTestRouter(provider, &stubIndicators{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stocks/AAPL/options?date=2025-03-21", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if provider.lastAsOf == nil || provider.lastAsOf.Format("2006-01-02") != "2025-03-21" {
		t.Fatalf("expected date forwarded, got %v", provider.lastAsOf)
	}
}

func TestGetOptionChainRejectsBadDate(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubProvider{}, &stubIndicators{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stocks/AAPL/options?date=soon", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetIndicatorsResponseShape(t *testing.T) {
	t.Parallel()

	rsi := decimal.RequireFromString("61.92")
	indicators := &stubIndicators{result: &domain.IndicatorResult{
		Ticker:   "AAPL",
		AsOfDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Rsi14:    &rsi,
	}}
	router := newTestRouter(&stubProvider{}, indicators, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stocks/AAPL/indicators", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	for _, field := range []string{"ticker", "asOfDate", "rsi14"} {
		if _, ok := body[field]; !ok {
			t.Fatalf("expected field %s in response, got %s", field, w.Body.String())
		}
	}
	if _, ok := body["ma50"]; ok {
		t.Fatalf("expected nil ma50 omitted, got %s", w.Body.String())
	}
}

func TestGetIndicatorsAsOfParam(t *testing.T) {
	t.Parallel()

	indicators := &stubIndicators{result: &domain.IndicatorResult{Ticker: "AAPL"}}
	router := newTestRouter(&stubProvider{}, indicators, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stocks/AAPL/indicators?asOf=2025-03-21", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if indicators.lastAsOf == nil || indicators.lastAsOf.Format("2006-01-02") != "2025-03-21" {
		t.Fatalf("expected asOf forwarded, got %v", indicators.lastAsOf)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/stocks/AAPL/indicators?asOf=yesterday", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad asOf, got %d", w.Code)
	}
}
