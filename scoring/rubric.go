package scoring

import (
	"math"

	"github.com/dnldd/swing/shared"
)

// Strategy represents a scoring rubric variant.
type Strategy int

const (
	Momentum Strategy = iota
	Pullback
)

// String stringifies the provided strategy.
func (s Strategy) String() string {
	switch s {
	case Momentum:
		return "momentum"
	case Pullback:
		return "pullback"
	default:
		return "unknown"
	}
}

// StrategyForScanType selects the scoring strategy of the provided scan type.
func StrategyForScanType(scanType shared.ScanType) Strategy {
	if scanType == shared.PullbackScan {
		return Pullback
	}

	return Momentum
}

// Scoring factor names.
const (
	FactorVolume             = "volume_conviction"
	FactorRiskReward         = "risk_reward"
	FactorRSIPosition        = "rsi_position"
	FactorRSICooling         = "rsi_cooling"
	FactorWeeklyMove         = "weekly_move"
	FactorEMA20Proximity     = "ema20_proximity"
	FactorUpside             = "upside_to_target"
	FactorRelativeStrength   = "relative_strength"
	FactorPriceAccessibility = "price_accessibility"
	FactorTrendStructure     = "trend_structure"
)

// Band represents a half-open [Min, Max) value range awarding fixed points.
type Band struct {
	Min    float64
	Max    float64
	Points int
	Label  string
}

// Contains reports whether the provided value falls in the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v < b.Max
}

// Factor represents one additive scoring factor.
type Factor struct {
	Name  string
	Max   int
	Bands []Band
}

// Match returns the band containing the provided value.
func (f Factor) Match(v float64) (Band, bool) {
	for _, b := range f.Bands {
		if b.Contains(v) {
			return b, true
		}
	}

	return Band{}, false
}

// Rubric represents the factor table of a scoring strategy.
type Rubric struct {
	Strategy Strategy
	Factors  []Factor
}

var (
	inf    = math.Inf(1)
	negInf = math.Inf(-1)
)

var volumeMomentum = Factor{
	Name: FactorVolume,
	Max:  20,
	Bands: []Band{
		{Min: negInf, Max: 0.8, Points: 0, Label: "below-average volume"},
		{Min: 0.8, Max: 1.2, Points: 5, Label: "average volume"},
		{Min: 1.2, Max: 1.5, Points: 10, Label: "above-average volume"},
		{Min: 1.5, Max: 2, Points: 15, Label: "strong volume"},
		{Min: 2, Max: inf, Points: 20, Label: "surging volume"},
	},
}

var volumePullback = Factor{
	Name: FactorVolume,
	Max:  15,
	Bands: []Band{
		{Min: negInf, Max: 0.7, Points: 15, Label: "drying-up volume"},
		{Min: 0.7, Max: 1, Points: 12, Label: "light volume"},
		{Min: 1, Max: 1.5, Points: 8, Label: "average volume"},
		{Min: 1.5, Max: inf, Points: 3, Label: "heavy selling volume"},
	},
}

var riskReward = Factor{
	Name: FactorRiskReward,
	Max:  20,
	Bands: []Band{
		{Min: negInf, Max: 1, Points: 0, Label: "poor reward for the risk"},
		{Min: 1, Max: 1.5, Points: 6, Label: "thin reward for the risk"},
		{Min: 1.5, Max: 2, Points: 12, Label: "acceptable reward for the risk"},
		{Min: 2, Max: 3, Points: 16, Label: "good reward for the risk"},
		{Min: 3, Max: inf, Points: 20, Label: "excellent reward for the risk"},
	},
}

var rsiPosition = Factor{
	Name: FactorRSIPosition,
	Max:  15,
	Bands: []Band{
		{Min: negInf, Max: 40, Points: 0, Label: "weak momentum"},
		{Min: 40, Max: 50, Points: 6, Label: "building momentum"},
		{Min: 50, Max: 55, Points: 12, Label: "healthy momentum"},
		{Min: 55, Max: 65, Points: 15, Label: "strong momentum"},
		{Min: 65, Max: inf, Points: 8, Label: "stretched momentum"},
	},
}

var rsiCooling = Factor{
	Name: FactorRSICooling,
	Max:  15,
	Bands: []Band{
		{Min: negInf, Max: 35, Points: 0, Label: "momentum broken"},
		{Min: 35, Max: 40, Points: 8, Label: "deep cool-off"},
		{Min: 40, Max: 50, Points: 15, Label: "ideal cool-off"},
		{Min: 50, Max: 55, Points: 12, Label: "mild cool-off"},
		{Min: 55, Max: 62, Points: 6, Label: "barely cooled"},
		{Min: 62, Max: inf, Points: 0, Label: "not cooled"},
	},
}

var weeklyMove = Factor{
	Name: FactorWeeklyMove,
	Max:  10,
	Bands: []Band{
		{Min: negInf, Max: 0, Points: 2, Label: "down on the week"},
		{Min: 0, Max: 2, Points: 6, Label: "flat week"},
		{Min: 2, Max: 8, Points: 10, Label: "constructive weekly advance"},
		{Min: 8, Max: 15, Points: 4, Label: "extended weekly advance"},
		{Min: 15, Max: inf, Points: 0, Label: "parabolic weekly advance"},
	},
}

var ema20Proximity = Factor{
	Name: FactorEMA20Proximity,
	Max:  15,
	Bands: []Band{
		{Min: negInf, Max: -3, Points: 2, Label: "well below ema20"},
		{Min: -3, Max: -1, Points: 10, Label: "just below ema20"},
		{Min: -1, Max: 1, Points: 15, Label: "at ema20"},
		{Min: 1, Max: 3, Points: 10, Label: "just above ema20"},
		{Min: 3, Max: inf, Points: 3, Label: "extended from ema20"},
	},
}

var upside = Factor{
	Name: FactorUpside,
	Max:  15,
	Bands: []Band{
		{Min: negInf, Max: 1, Points: 0, Label: "no room to target"},
		{Min: 1, Max: 3, Points: 4, Label: "limited room to target"},
		{Min: 3, Max: 6, Points: 8, Label: "moderate room to target"},
		{Min: 6, Max: 10, Points: 12, Label: "ample room to target"},
		{Min: 10, Max: inf, Points: 15, Label: "large room to target"},
	},
}

var relativeStrength = Factor{
	Name: FactorRelativeStrength,
	Max:  10,
	Bands: []Band{
		{Min: negInf, Max: -3, Points: 0, Label: "lagging the benchmark"},
		{Min: -3, Max: 0, Points: 2, Label: "slightly behind the benchmark"},
		{Min: 0, Max: 2, Points: 5, Label: "in line with the benchmark"},
		{Min: 2, Max: 5, Points: 8, Label: "outperforming the benchmark"},
		{Min: 5, Max: inf, Points: 10, Label: "leading the benchmark"},
	},
}

var priceAccessibility = Factor{
	Name: FactorPriceAccessibility,
	Max:  10,
	Bands: []Band{
		{Min: negInf, Max: 20, Points: 2, Label: "penny-range price"},
		{Min: 20, Max: 100, Points: 7, Label: "low price"},
		{Min: 100, Max: 2000, Points: 10, Label: "accessible price"},
		{Min: 2000, Max: 5000, Points: 6, Label: "high price"},
		{Min: 5000, Max: inf, Points: 3, Label: "very high price"},
	},
}

var trendStructure = Factor{
	Name: FactorTrendStructure,
	Max:  10,
	Bands: []Band{
		{Min: negInf, Max: 0.5, Points: 0, Label: "bearish structure"},
		{Min: 0.5, Max: 1.5, Points: 5, Label: "neutral structure"},
		{Min: 1.5, Max: inf, Points: 10, Label: "bullish structure"},
	},
}

// MomentumRubric is the default scoring rubric.
var MomentumRubric = Rubric{
	Strategy: Momentum,
	Factors: []Factor{
		volumeMomentum,
		riskReward,
		rsiPosition,
		weeklyMove,
		upside,
		relativeStrength,
		priceAccessibility,
	},
}

// PullbackRubric scores pullback setups.
var PullbackRubric = Rubric{
	Strategy: Pullback,
	Factors: []Factor{
		volumePullback,
		riskReward,
		rsiCooling,
		ema20Proximity,
		upside,
		relativeStrength,
		trendStructure,
	},
}

// RubricFor returns the rubric of the provided strategy.
func RubricFor(strategy Strategy) Rubric {
	if strategy == Pullback {
		return PullbackRubric
	}

	return MomentumRubric
}
