package scoring

import (
	"fmt"
	"strings"
)

// factorLabels maps factor names to display labels.
var factorLabels = map[string]string{
	FactorVolume:             "Volume",
	FactorRiskReward:         "Risk/Reward",
	FactorRSIPosition:        "RSI",
	FactorRSICooling:         "RSI cooling",
	FactorWeeklyMove:         "Weekly move",
	FactorEMA20Proximity:     "EMA20 proximity",
	FactorUpside:             "Upside",
	FactorRelativeStrength:   "Relative strength",
	FactorPriceAccessibility: "Price",
	FactorTrendStructure:     "Trend structure",
}

// formatValue renders a factor input the way it is read by a trader.
func formatValue(name string, v float64) string {
	switch name {
	case FactorVolume:
		return fmt.Sprintf("%.1fx avg", v)
	case FactorRiskReward:
		return fmt.Sprintf("%.1fx", v)
	case FactorRSIPosition, FactorRSICooling:
		return fmt.Sprintf("rsi %.2f", v)
	case FactorWeeklyMove, FactorUpside:
		return fmt.Sprintf("%+.2f%%", v)
	case FactorEMA20Proximity:
		return fmt.Sprintf("%+.2f%% from ema20", v)
	case FactorRelativeStrength:
		return fmt.Sprintf("%+.2f%% vs benchmark", v)
	case FactorPriceAccessibility:
		return fmt.Sprintf("%.2f", v)
	case FactorTrendStructure:
		return fmt.Sprintf("code %.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// DescribeFactor renders the human readable reason of a factor score.
func DescribeFactor(f Factor, fs FactorScore) string {
	if !fs.Available {
		return "unavailable"
	}

	band, _ := f.Match(fs.Value)
	return fmt.Sprintf("%s (%s)", band.Label, formatValue(f.Name, fs.Value))
}

// RenderBreakdown renders a score result as display text, one line per factor.
func RenderBreakdown(res *ScoreResult) string {
	if res == nil {
		return ""
	}

	var b strings.Builder
	if res.Eliminated {
		fmt.Fprintf(&b, "Score 0/100 [%s]: %s", res.Grade, res.EliminationReason)
		return b.String()
	}

	fmt.Fprintf(&b, "Score %d/100 [%s] (%s)", res.Score, res.Grade, res.Strategy)
	for _, fs := range res.Breakdown {
		label, ok := factorLabels[fs.Factor]
		if !ok {
			label = fs.Factor
		}
		fmt.Fprintf(&b, "\n- %s: %d/%d, %s", label, fs.Points, fs.Max, fs.Reason)
	}

	return b.String()
}
