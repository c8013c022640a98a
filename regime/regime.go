package regime

import (
	"fmt"

	"github.com/dnldd/swing/indicator"
	"github.com/dnldd/swing/shared"
)

// Regime represents the broad market bias derived from a benchmark index.
type Regime int

const (
	Unknown Regime = iota
	Bullish
	Bearish
	Neutral
)

// String stringifies the provided regime.
func (r Regime) String() string {
	switch r {
	case Bullish:
		return "BULLISH"
	case Bearish:
		return "BEARISH"
	case Neutral:
		return "NEUTRAL"
	default:
		return "UNKNOWN"
	}
}

// Config represents the regime checker tunables.
type Config struct {
	// Period is the ema period the benchmark is compared against.
	Period int `yaml:"period"`
	// ThresholdPct is the distance from the ema beyond which the regime is directional.
	ThresholdPct float64 `yaml:"threshold_pct"`
}

// DefaultConfig returns the default regime tunables.
func DefaultConfig() *Config {
	return &Config{
		Period:       50,
		ThresholdPct: 1,
	}
}

// Result represents a regime reading.
type Result struct {
	Regime      Regime
	Last        float64
	EMA         float64
	DistancePct float64
}

// Check derives the regime of the provided benchmark closes using the default tunables.
func Check(closes []float64) *Result {
	return CheckWithConfig(DefaultConfig(), closes)
}

// CheckCandles derives the regime of the provided benchmark candles.
func CheckCandles(cfg *Config, candles []shared.Candle) *Result {
	return CheckWithConfig(cfg, shared.Closes(shared.NormalizeCandles(candles)))
}

// CheckWithConfig derives the regime of the provided benchmark closes. The regime is unknown
// when there are fewer closes than the ema period.
func CheckWithConfig(cfg *Config, closes []float64) *Result {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	res := &Result{Regime: Unknown}
	if len(closes) == 0 {
		return res
	}

	last := closes[len(closes)-1]
	ema, ok := indicator.EMA(closes, cfg.Period)
	if !ok || !shared.IsValidPrice(last) || !shared.IsValidPrice(ema) {
		return res
	}

	res.Last = shared.Round2(last)
	res.EMA = shared.Round2(ema)
	res.DistancePct = shared.Round2(shared.PercentChange(ema, last))

	switch {
	case res.DistancePct > cfg.ThresholdPct:
		res.Regime = Bullish
	case res.DistancePct < -cfg.ThresholdPct:
		res.Regime = Bearish
	default:
		res.Regime = Neutral
	}

	return res
}

// Conflicts reports whether a trade in the provided direction fights the regime.
func Conflicts(direction shared.Direction, r Regime) bool {
	return (direction == shared.Buy && r == Bearish) || (direction == shared.Sell && r == Bullish)
}

// Aligns reports whether a trade in the provided direction agrees with the regime.
func Aligns(direction shared.Direction, r Regime) bool {
	return (direction == shared.Buy && r == Bullish) || (direction == shared.Sell && r == Bearish)
}

// Advise returns the advisory warnings of a trade in the provided direction under the regime.
func Advise(direction shared.Direction, r Regime) []string {
	warnings := []string{}
	switch {
	case Conflicts(direction, r):
		warnings = append(warnings, fmt.Sprintf("%s setup against a %s market regime",
			direction, r))
	case r == Neutral:
		warnings = append(warnings, "market regime is neutral, favour smaller size")
	}

	return warnings
}
