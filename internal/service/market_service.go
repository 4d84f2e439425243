package service

import (
	"context"
	"time"

	"wheelhouse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// MarketDataProvider is the capability a market-data upstream must offer.
// Callers depend only on this interface; AlphaVantageProvider is the one
// conforming implementation today.
type MarketDataProvider interface {
	GetQuote(ctx context.Context, ticker string) (*domain.Quote, error)
	GetDailyBars(ctx context.Context, ticker string, from, to time.Time, interval string) ([]domain.PriceBar, error)
	GetOptionChain(ctx context.Context, ticker string, asOf *time.Time) (*domain.OptionChainSnapshot, error)
}

// MarketService fronts the provider for the HTTP layer.
type MarketService struct {
	tracer   trace.Tracer
	provider MarketDataProvider
}

func NewMarketService(tracer trace.Tracer, provider MarketDataProvider) *MarketService {
	return &MarketService{
		tracer:   tracer,
		provider: provider,
	}
}

// GetQuote returns the current quote for a ticker.
func (s *MarketService) GetQuote(ctx context.Context, ticker string) (*domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-quote")
	defer span.End()

	return s.provider.GetQuote(ctx, ticker)
}

// GetHistory returns OHLCV bars in the inclusive [from, to] window, ascending
// by date.
func (s *MarketService) GetHistory(ctx context.Context, ticker string, from, to time.Time, interval string) ([]domain.PriceBar, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-history")
	defer span.End()

	return s.provider.GetDailyBars(ctx, ticker, from, to, interval)
}

// GetOptionChain returns the normalized option chain snapshot for a ticker.
func (s *MarketService) GetOptionChain(ctx context.Context, ticker string, asOf *time.Time) (*domain.OptionChainSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-option-chain")
	defer span.End()

	return s.provider.GetOptionChain(ctx, ticker, asOf)
}
