package service

import (
	"context"
	"time"

	"wheelhouse/internal/domain"
	"wheelhouse/internal/ta"

	"go.opentelemetry.io/otel/trace"
)

// Calendar days to request so the window holds at least 200 trading days for
// the MA200.
const lookbackCalendarDays = 300

// IndicatorService computes technical indicators for a ticker. Implementations
// never fail on sparse history; missing indicators are nil fields.
type IndicatorService interface {
	GetIndicators(ctx context.Context, ticker string, asOf *time.Time) (*domain.IndicatorResult, error)
}

type indicatorService struct {
	tracer   trace.Tracer
	provider MarketDataProvider
}

func NewIndicatorService(tracer trace.Tracer, provider MarketDataProvider) IndicatorService {
	return &indicatorService{
		tracer:   tracer,
		provider: provider,
	}
}

// GetIndicators fetches daily bars and derives RSI14, MA50/200, and the
// 20-day high/low as of the given date (or the latest session when nil).
func (s *indicatorService) GetIndicators(ctx context.Context, ticker string, asOf *time.Time) (*domain.IndicatorResult, error) {
	ctx, span := s.tracer.Start(ctx, "indicator-service.get-indicators")
	defer span.End()

	to := time.Now().UTC().Truncate(24 * time.Hour)
	if asOf != nil {
		to = asOf.UTC().Truncate(24 * time.Hour)
	}
	from := to.AddDate(0, 0, -lookbackCalendarDays)

	bars, err := s.provider.GetDailyBars(ctx, ticker, from, to, "1D")
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return &domain.IndicatorResult{Ticker: ticker, AsOfDate: to}, nil
	}

	// Bars arrive ascending and windowed, so the last one fixes the result's
	// as-of date.
	asOfDate := bars[len(bars)-1].Date

	rsi14 := ta.RSI14(bars)
	ma50, ma200 := ta.MovingAverages(bars)
	high, low := ta.TwentyDayHighLow(bars)

	return &domain.IndicatorResult{
		Ticker:        ticker,
		AsOfDate:      asOfDate,
		Rsi14:         rsi14,
		Ma50:          ma50,
		Ma200:         ma200,
		TwentyDayHigh: high,
		TwentyDayLow:  low,
	}, nil
}
