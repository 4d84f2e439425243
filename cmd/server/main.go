package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wheelhouse/internal/cache"
	"wheelhouse/internal/config"
	"wheelhouse/internal/domain"
	"wheelhouse/internal/handler"
	"wheelhouse/internal/provider"
	"wheelhouse/internal/service"
	"wheelhouse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "wheelhouse/docs"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initRedisFunc  = cache.InitRedis
	initTracerFunc = tracing.InitTracer
	newProviderFunc = func(cfg provider.AlphaVantageConfig, tracer trace.Tracer, limiter *provider.RateLimiter) service.MarketDataProvider {
		return provider.NewAlphaVantageProvider(cfg, tracer, limiter)
	}
	newMarketServiceFunc    = service.NewMarketService
	newIndicatorServiceFunc = service.NewIndicatorService
	newCachingServiceFunc   = service.NewCachingIndicatorService
	newHandlerFunc          = handler.New
	newRouterFunc           = gin.Default
	setupSignalNotify       = signal.Notify
	waitForSignalFunc       = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc     = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc  = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Wheelhouse API
// @version         1.0
// @description     Market data and technical indicators for wheel-strategy decisions.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("REDIS_URL", cfg.RedisURL)
	redisClient := initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// One limiter per upstream, created here and never reset.
	limiter := provider.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)

	premiumBasis, _ := domain.ParsePremiumBasis(cfg.PremiumBasis)
	atmTolerance, err := decimal.NewFromString(cfg.ATMTolerancePercent)
	if err != nil {
		atmTolerance = decimal.RequireFromString("0.5")
	}

	mdProvider := newProviderFunc(provider.AlphaVantageConfig{
		BaseURL:             cfg.AlphaVantageBaseURL,
		APIKey:              cfg.AlphaVantageAPIKey,
		MaxAttempts:         cfg.MaxRetryAttempts,
		PremiumBasis:        premiumBasis,
		ATMTolerancePercent: atmTolerance,
	}, tracer, limiter)

	marketService := newMarketServiceFunc(tracer, mdProvider)
	indicatorService := newCachingServiceFunc(
		tracer,
		newIndicatorServiceFunc(tracer, mdProvider),
		redisClient,
		cfg.IndicatorCacheTTLMin,
	)

	h := newHandlerFunc(tracer, marketService, indicatorService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("wheelhouse"))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on :%s", cfg.Port)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)

	log.Println("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	log.Println("Server exited")
}
