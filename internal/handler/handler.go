package handler

import (
	"wheelhouse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer     trace.Tracer
	market     *service.MarketService
	indicators service.IndicatorService
}

func New(tracer trace.Tracer, market *service.MarketService, indicators service.IndicatorService) *Handler {
	return &Handler{
		tracer:     tracer,
		market:     market,
		indicators: indicators,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/stocks/:ticker/quote", h.GetQuote)
	api.GET("/stocks/:ticker/history", h.GetHistory)
	api.GET("/stocks/:ticker/options", h.GetOptionChain)
	api.GET("/stocks/:ticker/indicators", h.GetIndicators)
}
