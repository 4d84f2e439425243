// Package ta holds pure technical indicator calculations. Input bars must be
// ascending by date (oldest first); callers enforce that, it is not
// re-validated here.
package ta

import (
	"wheelhouse/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	rsiPeriod       = 14
	ma50Period      = 50
	ma200Period     = 200
	twentyDayPeriod = 20
)

var hundred = decimal.NewFromInt(100)

// RSI14 computes RSI(14) with Wilder smoothing. Requires at least 15 bars,
// otherwise nil.
func RSI14(bars []domain.PriceBar) *decimal.Decimal {
	if len(bars) < rsiPeriod+1 {
		return nil
	}

	period := decimal.NewFromInt(rsiPeriod)

	// First averages: simple means of the first 14 day-over-day gains/losses.
	avgGain := decimal.Zero
	avgLoss := decimal.Zero
	for i := 1; i <= rsiPeriod; i++ {
		delta := bars[i].Close.Sub(bars[i-1].Close)
		if delta.IsPositive() {
			avgGain = avgGain.Add(delta)
		} else {
			avgLoss = avgLoss.Sub(delta)
		}
	}
	avgGain = avgGain.Div(period)
	avgLoss = avgLoss.Div(period)

	// Wilder smoothing for the remaining bars: avg = (avg*13 + current)/14.
	smoothing := decimal.NewFromInt(rsiPeriod - 1)
	for i := rsiPeriod + 1; i < len(bars); i++ {
		delta := bars[i].Close.Sub(bars[i-1].Close)
		gain := decimal.Zero
		loss := decimal.Zero
		if delta.IsPositive() {
			gain = delta
		} else {
			loss = delta.Neg()
		}
		avgGain = avgGain.Mul(smoothing).Add(gain).Div(period)
		avgLoss = avgLoss.Mul(smoothing).Add(loss).Div(period)
	}

	rsi := rsiFromAverages(avgGain, avgLoss)
	return &rsi
}

func rsiFromAverages(avgGain, avgLoss decimal.Decimal) decimal.Decimal {
	// An all-gain run has zero average loss; report maximally overbought
	// rather than dividing by zero.
	if avgLoss.IsZero() {
		return hundred
	}
	rs := avgGain.Div(avgLoss)
	return hundred.Sub(hundred.Div(decimal.NewFromInt(1).Add(rs)))
}

// MovingAverages returns the trailing SMA(50) and SMA(200) of the close.
// Each is nil independently when fewer bars than its window exist.
func MovingAverages(bars []domain.PriceBar) (ma50, ma200 *decimal.Decimal) {
	return trailingMean(bars, ma50Period), trailingMean(bars, ma200Period)
}

func trailingMean(bars []domain.PriceBar, window int) *decimal.Decimal {
	if len(bars) < window {
		return nil
	}
	sum := decimal.Zero
	for _, b := range bars[len(bars)-window:] {
		sum = sum.Add(b.Close)
	}
	mean := sum.Div(decimal.NewFromInt(int64(window)))
	return &mean
}

// TwentyDayHighLow returns max(High) and min(Low) over the trailing 20 bars,
// or nils when fewer than 20 bars exist.
func TwentyDayHighLow(bars []domain.PriceBar) (high, low *decimal.Decimal) {
	if len(bars) < twentyDayPeriod {
		return nil, nil
	}

	window := bars[len(bars)-twentyDayPeriod:]
	h := window[0].High
	l := window[0].Low
	for _, b := range window[1:] {
		if b.High.GreaterThan(h) {
			h = b.High
		}
		if b.Low.LessThan(l) {
			l = b.Low
		}
	}
	return &h, &l
}
