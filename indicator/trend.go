package indicator

import (
	"github.com/dnldd/swing/shared"
)

const (
	// ema20BandPercent is the band around EMA20 used when long averages are unavailable.
	ema20BandPercent = 0.02
)

var (
	// RequiredFields are the indicators every downstream stage depends on.
	RequiredFields = []string{Last, EMA20, ATR}
	// RecommendedFields are the indicators that improve analysis quality when present.
	RecommendedFields = []string{RSI, EMA50, SMA200, High20D, Low20D, PrevHigh, PrevLow,
		PrevClose, VolumeVsAvg, WeeklyRSI, Return1M}
)

// DetermineTrend classifies the trend from price against SMA200 and the EMA20/EMA50 crossover.
// When the long averages are unavailable it falls back to a band around EMA20.
func DetermineTrend(set Set) shared.Trend {
	last, ok := set.Price(Last)
	if !ok {
		return shared.NeutralTrend
	}

	ema20, hasEMA20 := set.Price(EMA20)
	ema50, hasEMA50 := set.Price(EMA50)
	sma200, hasSMA200 := set.Price(SMA200)

	switch {
	case hasEMA20 && hasEMA50 && hasSMA200:
		switch {
		case last > sma200 && ema20 > ema50:
			return shared.BullishTrend
		case last < sma200 && ema20 < ema50:
			return shared.BearishTrend
		default:
			return shared.NeutralTrend
		}
	case hasEMA20:
		switch {
		case last > ema20*(1+ema20BandPercent):
			return shared.BullishTrend
		case last < ema20*(1-ema20BandPercent):
			return shared.BearishTrend
		default:
			return shared.NeutralTrend
		}
	default:
		return shared.NeutralTrend
	}
}

// Health describes which required and recommended indicators are present.
type Health struct {
	OK                 bool
	MissingRequired    []string
	MissingRecommended []string
}

// CheckDataHealth reports the presence of the required and recommended indicators. OK is false
// iff any required indicator is missing.
func CheckDataHealth(set Set) Health {
	health := Health{
		MissingRequired:    []string{},
		MissingRecommended: []string{},
	}

	for _, name := range RequiredFields {
		if !set.Has(name) {
			health.MissingRequired = append(health.MissingRequired, name)
		}
	}

	for _, name := range RecommendedFields {
		if !set.Has(name) {
			health.MissingRecommended = append(health.MissingRecommended, name)
		}
	}

	health.OK = len(health.MissingRequired) == 0

	return health
}
