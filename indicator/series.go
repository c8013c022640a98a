package indicator

import (
	"time"

	"github.com/dnldd/swing/shared"
	talib "github.com/markcheno/go-talib"
)

// lastOf returns the last element of the provided series.
func lastOf(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	v := values[len(values)-1]
	return v, shared.IsFinite(v)
}

// EMA returns the latest exponential moving average of the provided values. The average is
// seeded with the simple average of the first period values.
func EMA(values []float64, period int) (float64, bool) {
	if period < 2 || len(values) < period {
		return 0, false
	}

	return lastOf(talib.Ema(values, period))
}

// SMA returns the latest simple moving average of the provided values.
func SMA(values []float64, period int) (float64, bool) {
	if period < 2 || len(values) < period {
		return 0, false
	}

	return lastOf(talib.Sma(values, period))
}

// RSIValue returns the latest Wilder relative strength index of the provided values.
func RSIValue(values []float64, period int) (float64, bool) {
	if period < 2 || len(values) < period+1 {
		return 0, false
	}

	return lastOf(talib.Rsi(values, period))
}

// ATRValue returns the latest Wilder average true range.
func ATRValue(highs, lows, closes []float64, period int) (float64, bool) {
	if period < 2 || len(closes) < period+1 {
		return 0, false
	}

	return lastOf(talib.Atr(highs, lows, closes, period))
}

// MACDValues returns the latest 12/26/9 MACD line, signal line and histogram.
func MACDValues(closes []float64) (float64, float64, float64) {
	macd, signal, hist := talib.Macd(closes, 12, 26, 9)
	m, _ := lastOf(macd)
	s, _ := lastOf(signal)
	h, _ := lastOf(hist)

	return m, s, h
}

// BollingerValues returns the latest upper, middle and lower bollinger bands.
func BollingerValues(closes []float64, period int, deviations float64) (float64, float64, float64) {
	upper, middle, lower := talib.BBands(closes, period, deviations, deviations, talib.SMA)
	u, _ := lastOf(upper)
	m, _ := lastOf(middle)
	l, _ := lastOf(lower)

	return u, m, l
}

// weeklyCloses resamples the provided daily candles into ISO week closes. Candles without a
// timestamp cannot be bucketed and yield no weekly closes.
func weeklyCloses(candles []shared.Candle) []float64 {
	closes := make([]float64, 0, len(candles)/5+1)

	var lastYear, lastWeek int
	for idx := range candles {
		ts := candles[idx].Timestamp
		if ts.IsZero() {
			return nil
		}

		year, week := ts.In(time.UTC).ISOWeek()
		if len(closes) > 0 && year == lastYear && week == lastWeek {
			closes[len(closes)-1] = candles[idx].Close
			continue
		}

		closes = append(closes, candles[idx].Close)
		lastYear, lastWeek = year, week
	}

	return closes
}
