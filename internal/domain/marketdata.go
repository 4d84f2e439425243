package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar is a single OHLCV bar for a trading day. Bars with any missing
// open/high/low/close are discarded at parse time, so all four are always set.
type PriceBar struct {
	Date   time.Time       `json:"date"`
	Time   string          `json:"time,omitempty"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Quote is the latest traded price for a ticker. Only Price is guaranteed;
// the remaining fields are best-effort.
type Quote struct {
	Ticker        string           `json:"ticker"`
	Price         decimal.Decimal  `json:"price"`
	PreviousClose *decimal.Decimal `json:"previous_close,omitempty"`
	Change        *decimal.Decimal `json:"change,omitempty"`
	ChangePercent *decimal.Decimal `json:"change_percent,omitempty"`
	Volume        int64            `json:"volume"`
	Timestamp     time.Time        `json:"timestamp"`
}

// IndicatorResult holds the technical indicators for a ticker as of a given
// date. A nil field means there was not enough history to compute it, which
// is not an error. Field names are lowerCamel because this is also the cache
// entry format.
type IndicatorResult struct {
	Ticker        string           `json:"ticker"`
	AsOfDate      time.Time        `json:"asOfDate"`
	Rsi14         *decimal.Decimal `json:"rsi14,omitempty"`
	Ma50          *decimal.Decimal `json:"ma50,omitempty"`
	Ma200         *decimal.Decimal `json:"ma200,omitempty"`
	TwentyDayHigh *decimal.Decimal `json:"twentyDayHigh,omitempty"`
	TwentyDayLow  *decimal.Decimal `json:"twentyDayLow,omitempty"`
}
