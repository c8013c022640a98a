package level

import (
	"cmp"
	"math"
	"slices"

	"github.com/dnldd/swing/indicator"
	"github.com/dnldd/swing/shared"
)

// Kind represents the type of level.
type Kind int

const (
	Support Kind = iota
	Resistance
)

// String stringifies the provided level kind.
func (k Kind) String() string {
	switch k {
	case Support:
		return "support"
	case Resistance:
		return "resistance"
	default:
		return "unknown"
	}
}

// Level represents a named support or resistance price.
type Level struct {
	Name        string
	Price       float64
	Kind        Kind
	DistancePct float64
}

// Levels represents the levels derived for one analysis.
type Levels struct {
	Pivots      *Pivots
	Supports    []Level
	Resistances []Level
}

// Calculate derives classic pivots from the previous session in the provided indicators and
// ranks them with moving average and swing extreme levels around the last price. Pivots is nil
// when the previous session is unavailable.
func Calculate(set indicator.Set) *Levels {
	levels := &Levels{
		Supports:    []Level{},
		Resistances: []Level{},
	}

	high, hasHigh := set.Get(indicator.PrevHigh)
	low, hasLow := set.Get(indicator.PrevLow)
	close, hasClose := set.Get(indicator.PrevClose)
	if hasHigh && hasLow && hasClose {
		levels.Pivots = ClassicPivots(high, low, close)
	}

	last, ok := set.Price(indicator.Last)
	if !ok {
		return levels
	}

	levels.Supports, levels.Resistances = RankLevels(levels.Pivots, set, last)

	return levels
}

// candidateLevels collects the named prices considered for ranking.
func candidateLevels(pivots *Pivots, set indicator.Set) []Level {
	var named []Level
	if pivots != nil {
		named = append(named,
			Level{Name: "S3", Price: pivots.S3},
			Level{Name: "S2", Price: pivots.S2},
			Level{Name: "S1", Price: pivots.S1},
			Level{Name: "Pivot", Price: pivots.Pivot},
			Level{Name: "R1", Price: pivots.R1},
			Level{Name: "R2", Price: pivots.R2},
			Level{Name: "R3", Price: pivots.R3},
		)
	}

	extras := []struct {
		name  string
		field string
	}{
		{"EMA20", indicator.EMA20},
		{"EMA50", indicator.EMA50},
		{"SMA200", indicator.SMA200},
		{"20D High", indicator.High20D},
		{"20D Low", indicator.Low20D},
	}
	for _, extra := range extras {
		if price, ok := set.Price(extra.field); ok {
			named = append(named, Level{Name: extra.name, Price: price})
		}
	}

	return named
}

// RankLevels merges pivot levels with moving average and swing extreme levels and splits them
// around the provided price. Supports are ordered nearest-below first (descending price) and
// resistances nearest-above first (ascending price). Levels at the price are neither.
func RankLevels(pivots *Pivots, set indicator.Set, price float64) ([]Level, []Level) {
	supports := []Level{}
	resistances := []Level{}
	if !shared.IsValidPrice(price) {
		return supports, resistances
	}

	for _, lvl := range candidateLevels(pivots, set) {
		if !shared.IsValidPrice(lvl.Price) {
			continue
		}

		lvl.DistancePct = shared.Round2(math.Abs(lvl.Price-price) / price * 100)
		switch {
		case lvl.Price < price:
			lvl.Kind = Support
			supports = append(supports, lvl)
		case lvl.Price > price:
			lvl.Kind = Resistance
			resistances = append(resistances, lvl)
		}
	}

	slices.SortStableFunc(supports, func(a, b Level) int {
		return cmp.Compare(b.Price, a.Price)
	})
	slices.SortStableFunc(resistances, func(a, b Level) int {
		return cmp.Compare(a.Price, b.Price)
	})

	return supports, resistances
}
