package provider

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"wheelhouse/internal/domain"

	"github.com/shopspring/decimal"
)

// Literal response keys used by the Alpha Vantage API. These must match the
// upstream vocabulary byte for byte, embedded spaces and all.
const (
	seriesKeyDaily   = "Time Series (Daily)"
	seriesKeyWeekly  = "Weekly Time Series"
	seriesKeyMonthly = "Monthly Time Series"
)

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// parseDate parses an upstream date string. Rows with unparsable dates are
// skipped by callers rather than failing the whole batch.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDecimal parses an optional numeric field, tolerating a trailing
// percent sign. Failure yields nil, not an error.
func parseDecimal(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "%")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// parseVolume parses a volume field. Unlike the other optional numerics it
// falls back to zero on failure or absence.
func parseVolume(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// globalQuoteResponse mirrors the GLOBAL_QUOTE payload with its
// ordinal-prefixed field names.
type globalQuoteResponse struct {
	GlobalQuote *globalQuoteDTO `json:"Global Quote"`
}

type globalQuoteDTO struct {
	Symbol           string `json:"01. symbol"`
	Price            string `json:"05. price"`
	Volume           string `json:"06. volume"`
	LatestTradingDay string `json:"07. latest trading day"`
	PreviousClose    string `json:"08. previous close"`
	Change           string `json:"09. change"`
	ChangePercent    string `json:"10. change percent"`
}

// parseGlobalQuote turns a GLOBAL_QUOTE body into a Quote. A missing or
// unparsable price makes the whole quote nil; everything else is optional.
func parseGlobalQuote(body []byte, ticker string) *domain.Quote {
	var parsed globalQuoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.GlobalQuote == nil {
		return nil
	}

	q := parsed.GlobalQuote
	price := parseDecimal(q.Price)
	if price == nil {
		return nil
	}

	timestamp := time.Now().UTC()
	if day, ok := parseDate(q.LatestTradingDay); ok {
		timestamp = day
	}

	symbol := q.Symbol
	if symbol == "" {
		symbol = ticker
	}

	return &domain.Quote{
		Ticker:        symbol,
		Price:         *price,
		PreviousClose: parseDecimal(q.PreviousClose),
		Change:        parseDecimal(q.Change),
		ChangePercent: parseDecimal(q.ChangePercent),
		Volume:        parseVolume(q.Volume),
		Timestamp:     timestamp,
	}
}

// parseTimeSeriesBars extracts the OHLCV rows nested under seriesKey. Rows
// with unparsable dates or any missing open/high/low/close are dropped; a
// missing or malformed series yields an empty result, not an error.
func parseTimeSeriesBars(body []byte, seriesKey string) []domain.PriceBar {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return nil
	}

	raw, ok := root[seriesKey]
	if !ok {
		return nil
	}

	var series map[string]map[string]string
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil
	}

	bars := make([]domain.PriceBar, 0, len(series))
	for dateStr, fields := range series {
		date, ok := parseDate(dateStr)
		if !ok {
			continue
		}

		open := parseDecimal(fields["1. open"])
		high := parseDecimal(fields["2. high"])
		low := parseDecimal(fields["3. low"])
		closePx := parseDecimal(fields["4. close"])
		if open == nil || high == nil || low == nil || closePx == nil {
			continue
		}

		bars = append(bars, domain.PriceBar{
			Date:   date,
			Open:   *open,
			High:   *high,
			Low:    *low,
			Close:  *closePx,
			Volume: parseVolume(fields["5. volume"]),
		})
	}

	return bars
}

// buildBarSeries restricts bars to the inclusive [from, to] calendar window
// and orders them ascending by date. The ascending order is the input
// contract for the indicator engine.
func buildBarSeries(bars []domain.PriceBar, from, to time.Time) []domain.PriceBar {
	fromDate := truncateToDay(from)
	toDate := truncateToDay(to)

	out := make([]domain.PriceBar, 0, len(bars))
	for _, b := range bars {
		d := truncateToDay(b.Date)
		if d.Before(fromDate) || d.After(toDate) {
			continue
		}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// buildURL assembles an upstream request URL with percent-encoded query
// parameters.
func buildURL(baseURL, path string, query url.Values) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/") + "?" + query.Encode()
}
