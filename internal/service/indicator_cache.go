package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"wheelhouse/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	indicatorKeyPrefix      = "indicators:"
	defaultIndicatorTTLMins = 10
)

// RedisClient is the subset of the go-redis API the cache needs; tests swap
// in an in-memory fake.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// cachingIndicatorService is a cache-aside decorator around an
// IndicatorService. Concurrent misses for the same key may both compute and
// both write; last write wins, which is acceptable for idempotent results.
type cachingIndicatorService struct {
	tracer trace.Tracer
	inner  IndicatorService
	redis  RedisClient
	ttl    time.Duration
}

// NewCachingIndicatorService wraps inner with a Redis-backed cache.
// ttlMinutes falls back to 10 when unset or non-positive.
func NewCachingIndicatorService(tracer trace.Tracer, inner IndicatorService, redisClient RedisClient, ttlMinutes int) IndicatorService {
	if ttlMinutes <= 0 {
		ttlMinutes = defaultIndicatorTTLMins
	}
	return &cachingIndicatorService{
		tracer: tracer,
		inner:  inner,
		redis:  redisClient,
		ttl:    time.Duration(ttlMinutes) * time.Minute,
	}
}

func (s *cachingIndicatorService) GetIndicators(ctx context.Context, ticker string, asOf *time.Time) (*domain.IndicatorResult, error) {
	ctx, span := s.tracer.Start(ctx, "indicator-cache.get-indicators")
	defer span.End()

	key := indicatorCacheKey(ticker, asOf)

	if s.redis != nil {
		data, err := s.redis.Get(ctx, key).Bytes()
		if err != nil && err != redis.Nil {
			log.Printf("indicator cache read error for %s: %v", key, err)
		}
		if len(data) > 0 {
			var cached domain.IndicatorResult
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	result, err := s.inner.GetIndicators(ctx, ticker, asOf)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		data, err := json.Marshal(result)
		if err == nil {
			if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
				log.Printf("indicator cache write error for %s: %v", key, err)
			}
		}
	}

	return result, nil
}

func indicatorCacheKey(ticker string, asOf *time.Time) string {
	datePart := "latest"
	if asOf != nil {
		datePart = asOf.Format("2006-01-02")
	}
	return indicatorKeyPrefix + ticker + ":" + datePart
}
