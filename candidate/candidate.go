package candidate

import (
	"github.com/dnldd/swing/shared"
)

// Archetype represents one of the fixed trade candidate strategies.
type Archetype int

const (
	Breakout Archetype = iota
	Pullback
	MeanReversion
	RangeFade
)

// String stringifies the provided archetype.
func (a Archetype) String() string {
	switch a {
	case Breakout:
		return "breakout"
	case Pullback:
		return "pullback"
	case MeanReversion:
		return "mean_reversion"
	case RangeFade:
		return "range_fade"
	default:
		return "unknown"
	}
}

// ID returns the stable candidate id of the provided archetype.
func (a Archetype) ID() string {
	switch a {
	case Breakout:
		return "C1"
	case Pullback:
		return "C2"
	case MeanReversion:
		return "C3"
	case RangeFade:
		return "C4"
	default:
		return "C?"
	}
}

// Name returns the display name of the provided archetype.
func (a Archetype) Name() string {
	switch a {
	case Breakout:
		return "Breakout"
	case Pullback:
		return "Pullback"
	case MeanReversion:
		return "Mean Reversion"
	case RangeFade:
		return "Range Fade"
	default:
		return "Unknown"
	}
}

// scanTypeArchetypes maps a scan classification to the archetypes it favours.
var scanTypeArchetypes = map[shared.ScanType][]Archetype{
	shared.BreakoutScan:      {Breakout},
	shared.PullbackScan:      {Pullback},
	shared.MomentumScan:      {Breakout, Pullback},
	shared.ConsolidationScan: {Pullback, MeanReversion},
	shared.MeanReversionScan: {MeanReversion},
	shared.RangeScan:         {MeanReversion, RangeFade},
}

// MatchesScanType reports whether the provided archetype is favoured by the scan type.
func MatchesScanType(archetype Archetype, scanType shared.ScanType) bool {
	for _, a := range scanTypeArchetypes[scanType] {
		if a == archetype {
			return true
		}
	}

	return false
}

// Range represents an inclusive price band.
type Range struct {
	Low  float64
	High float64
}

// Invalidation represents a rule that cancels a pending entry before it fills.
type Invalidation struct {
	Rule              string
	Timeframe         string
	Level             float64
	ConsecutiveCloses int
	// Above is true when closes above the level invalidate, false for closes below.
	Above bool
}

// Skeleton represents the trade plan of a candidate.
type Skeleton struct {
	Type                  shared.Direction
	Entry                 float64
	EntryRange            Range
	Target                float64
	StopLoss              float64
	RiskReward            float64
	Triggers              []string
	InvalidationsPreEntry []Invalidation
}

// Score represents the ranking inputs of a candidate. Total is filled in by ranking.
type Score struct {
	RR            float64
	TrendAlign    float64
	DistancePct   float64
	ScanTypeBonus float64
	Total         float64
}

// Candidate represents one fully specified trade idea.
type Candidate struct {
	ID              string
	Name            string
	Archetype       Archetype
	MatchesScanType bool
	Score           Score
	Skeleton        Skeleton
	// OK is true when the candidate's risk reward meets the configured minimum.
	OK bool
}

// RiskReward returns the raw risk reward of a trade plan. It is 0 whenever the risk leg is not
// positive.
func RiskReward(direction shared.Direction, entry, stop, target float64) float64 {
	var risk, reward float64
	switch direction {
	case shared.Sell:
		risk = stop - entry
		reward = entry - target
	default:
		risk = entry - stop
		reward = target - entry
	}

	if risk <= 0 {
		return 0
	}

	return reward / risk
}

// TrendAlignment scores how well a trade direction agrees with the trend, from 0 to 1.
func TrendAlignment(direction shared.Direction, trend shared.Trend) float64 {
	switch {
	case trend == shared.NeutralTrend:
		return 0.5
	case direction == shared.Buy && trend == shared.BullishTrend,
		direction == shared.Sell && trend == shared.BearishTrend:
		return 1
	default:
		return 0
	}
}
