package shared

import (
	"math"
	"slices"
	"time"
)

// Sentiment represents a directional sentiment, either of a candle or of an external source.
type Sentiment int

const (
	Neutral Sentiment = iota
	Bullish
	Bearish
)

// String stringifies the provided sentiment.
func (s Sentiment) String() string {
	switch s {
	case Neutral:
		return "neutral"
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "unknown"
	}
}

// Candle represents a unit daily candle for a market.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// TypicalPrice returns the average of the candle's high, low and close.
func (c *Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// IsValidPrice reports whether the provided value is a usable price: finite and positive.
func IsValidPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// IsFinite reports whether the provided value is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NormalizeCandles returns a fresh ascending, de-duplicated copy of the provided candles.
//
// Candles without a usable close are dropped. Candles sharing a non-zero timestamp are collapsed,
// the last occurrence in the input wins. Candles without a timestamp keep their input order.
func NormalizeCandles(raw []Candle) []Candle {
	candles := make([]Candle, 0, len(raw))
	for idx := range raw {
		if !IsValidPrice(raw[idx].Close) {
			continue
		}
		candles = append(candles, raw[idx])
	}

	slices.SortStableFunc(candles, func(a, b Candle) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	deduped := candles[:0]
	for idx := range candles {
		n := len(deduped)
		if n > 0 && !candles[idx].Timestamp.IsZero() &&
			deduped[n-1].Timestamp.Equal(candles[idx].Timestamp) {
			deduped[n-1] = candles[idx]
			continue
		}
		deduped = append(deduped, candles[idx])
	}

	return deduped
}

// Closes returns the close series of the provided candles.
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for idx := range candles {
		closes[idx] = candles[idx].Close
	}

	return closes
}
