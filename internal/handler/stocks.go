package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const dateLayout = "2006-01-02"

// GetQuote godoc
// @Summary      Get current quote for a stock
// @Description  Returns the latest traded price, change, and volume
// @Tags         stocks
// @Produce      json
// @Param        ticker  path  string  true  "Ticker symbol (e.g., AAPL)"
// @Success      200  {object}  domain.Quote
// @Failure      502  {object}  map[string]string
// @Router       /api/stocks/{ticker}/quote [get]
func (h *Handler) GetQuote(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-quote")
	defer span.End()

	ticker := strings.ToUpper(c.Param("ticker"))
	span.SetAttributes(attribute.String("ticker", ticker))

	quote, err := h.market.GetQuote(ctx, ticker)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, quote)
}

// GetHistory godoc
// @Summary      Get historical OHLCV bars
// @Description  Returns bars in the inclusive [from, to] window, ascending by date
// @Tags         stocks
// @Produce      json
// @Param        ticker    path   string  true   "Ticker symbol (e.g., AAPL)"
// @Param        from      query  string  false  "Start date (YYYY-MM-DD, default 100 days ago)"
// @Param        to        query  string  false  "End date (YYYY-MM-DD, default today)"
// @Param        interval  query  string  false  "Bar interval (1D, 1W, 1M)"  default(1D)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/stocks/{ticker}/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	ticker := strings.ToUpper(c.Param("ticker"))
	span.SetAttributes(attribute.String("ticker", ticker))

	to := time.Now().UTC()
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date: " + v})
			return
		}
		to = parsed
	}

	from := to.AddDate(0, 0, -100)
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date: " + v})
			return
		}
		from = parsed
	}

	interval := strings.ToUpper(c.DefaultQuery("interval", "1D"))
	switch interval {
	case "1D", "1W", "1M":
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":               "unsupported interval: " + interval,
			"supported_intervals": []string{"1D", "1W", "1M"},
		})
		return
	}

	bars, err := h.market.GetHistory(ctx, ticker, from, to, interval)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":   ticker,
		"interval": interval,
		"bars":     bars,
	})
}

// GetOptionChain godoc
// @Summary      Get the normalized option chain
// @Description  Returns ranked, de-duplicated, classified contracts for a ticker
// @Tags         stocks
// @Produce      json
// @Param        ticker  path   string  true   "Ticker symbol (e.g., AAPL)"
// @Param        date    query  string  false  "Historical snapshot date (YYYY-MM-DD)"
// @Success      200  {object}  domain.OptionChainSnapshot
// @Failure      400  {object}  map[string]string
// @Router       /api/stocks/{ticker}/options [get]
func (h *Handler) GetOptionChain(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-option-chain")
	defer span.End()

	ticker := strings.ToUpper(c.Param("ticker"))
	span.SetAttributes(attribute.String("ticker", ticker))

	var asOf *time.Time
	if v := c.Query("date"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date: " + v})
			return
		}
		asOf = &parsed
	}

	snapshot, err := h.market.GetOptionChain(ctx, ticker, asOf)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetIndicators godoc
// @Summary      Get technical indicators
// @Description  Returns RSI14, MA50/200, and the 20-day high/low; missing fields mean insufficient history
// @Tags         stocks
// @Produce      json
// @Param        ticker  path   string  true   "Ticker symbol (e.g., AAPL)"
// @Param        asOf    query  string  false  "As-of date (YYYY-MM-DD, default latest)"
// @Success      200  {object}  domain.IndicatorResult
// @Failure      400  {object}  map[string]string
// @Router       /api/stocks/{ticker}/indicators [get]
func (h *Handler) GetIndicators(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-indicators")
	defer span.End()

	ticker := strings.ToUpper(c.Param("ticker"))
	span.SetAttributes(attribute.String("ticker", ticker))

	var asOf *time.Time
	if v := c.Query("asOf"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asOf date: " + v})
			return
		}
		asOf = &parsed
	}

	result, err := h.indicators.GetIndicators(ctx, ticker, asOf)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
