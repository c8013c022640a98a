package risk

import (
	"fmt"
	"math"

	"github.com/dnldd/swing/candidate"
	"github.com/dnldd/swing/shared"
)

// SizeInput represents the inputs of a position size calculation.
type SizeInput struct {
	AccountSize float64
	// RiskPercent is the share of the account risked on the trade, in percent.
	RiskPercent float64
	Entry       float64
	StopLoss    float64
	// MaxPositionValue caps the position value when positive.
	MaxPositionValue float64
}

// PositionSize represents a position size recommendation.
type PositionSize struct {
	Quantity      int
	RiskBudget    float64
	RiskPerShare  float64
	RiskAmount    float64
	PositionValue float64
	Capped        bool
	Reason        string
}

// CalculatePositionSize derives the share quantity of a trade from its risk budget, floored,
// then capped by the maximum position value.
func CalculatePositionSize(in SizeInput) *PositionSize {
	size := &PositionSize{}

	if !shared.IsValidPrice(in.Entry) || !shared.IsFinite(in.StopLoss) {
		size.Reason = "invalid entry or stop"
		return size
	}

	perShare := math.Abs(in.Entry - in.StopLoss)
	budget := in.AccountSize * in.RiskPercent / 100
	size.RiskPerShare = shared.Round2(perShare)
	size.RiskBudget = shared.Round2(budget)

	switch {
	case size.RiskPerShare == 0:
		size.Reason = "stop equals entry at cent precision"
		return size
	case budget <= 0:
		size.Reason = "no risk budget"
		return size
	}

	qty := math.MaxInt
	if shares := math.Floor(budget / perShare); shares < float64(math.MaxInt) {
		qty = int(shares)
	}
	if in.MaxPositionValue > 0 {
		maxQty := int(math.Floor(in.MaxPositionValue / in.Entry))
		if qty > maxQty {
			qty = maxQty
			size.Capped = true
		}
	}

	size.Quantity = qty
	size.RiskAmount = shared.Round2(float64(qty) * perShare)
	size.PositionValue = shared.Round2(float64(qty) * in.Entry)

	switch {
	case qty == 0:
		size.Reason = "risk budget below the risk of one share"
	case size.Capped:
		size.Reason = fmt.Sprintf("%d shares, capped by max position value %.2f", qty,
			in.MaxPositionValue)
	default:
		size.Reason = fmt.Sprintf("%d shares risking %.2f of %.2f budget", qty, size.RiskAmount,
			size.RiskBudget)
	}

	return size
}

// Level represents the risk classification of a trade's stop distance.
type Level int

const (
	LowRisk Level = iota
	MediumRisk
	HighRisk
)

// String stringifies the provided risk level.
func (l Level) String() string {
	switch l {
	case LowRisk:
		return "LOW"
	case MediumRisk:
		return "MEDIUM"
	case HighRisk:
		return "HIGH"
	default:
		return "unknown"
	}
}

// Quality represents the classification of a trade's risk reward.
type Quality int

const (
	PoorRR Quality = iota
	FairRR
	GoodRR
	ExcellentRR
)

// String stringifies the provided risk reward quality.
func (q Quality) String() string {
	switch q {
	case PoorRR:
		return "POOR"
	case FairRR:
		return "FAIR"
	case GoodRR:
		return "GOOD"
	case ExcellentRR:
		return "EXCELLENT"
	default:
		return "unknown"
	}
}

// Assessment represents the independent risk level and risk reward quality of a trade.
type Assessment struct {
	StopDistancePct float64
	RiskReward      float64
	Level           Level
	Quality         Quality
}

// AssessTradeRisk classifies a trade's stop distance and risk reward. A stop above the entry
// is read as a short.
func AssessTradeRisk(entry, stop, target float64) *Assessment {
	a := &Assessment{Level: HighRisk, Quality: PoorRR}
	if !shared.IsValidPrice(entry) || !shared.IsFinite(stop) || !shared.IsFinite(target) {
		return a
	}

	direction := shared.Buy
	if stop > entry {
		direction = shared.Sell
	}

	a.StopDistancePct = shared.Round2(math.Abs(entry-stop) / entry * 100)
	a.RiskReward = shared.Round2(candidate.RiskReward(direction, entry, stop, target))

	switch {
	case a.StopDistancePct <= 3:
		a.Level = LowRisk
	case a.StopDistancePct <= 6:
		a.Level = MediumRisk
	default:
		a.Level = HighRisk
	}

	switch {
	case a.RiskReward < 1:
		a.Quality = PoorRR
	case a.RiskReward < 2:
		a.Quality = FairRR
	case a.RiskReward < 3:
		a.Quality = GoodRR
	default:
		a.Quality = ExcellentRR
	}

	return a
}
