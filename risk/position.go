package risk

import (
	"github.com/dnldd/swing/shared"
)

// Position represents caller owned state of an open long position. Risk calculations read it
// and return recommendations; they never mutate it.
type Position struct {
	ID            string
	Symbol        string
	ActualEntry   float64
	CurrentSL     float64
	CurrentTarget float64
	Qty           int
	DaysInTrade   int
}

// PnL returns the profit and loss amount and percentage of the position at the provided price.
func (p *Position) PnL(price float64) (float64, float64) {
	if !shared.IsValidPrice(p.ActualEntry) || !shared.IsFinite(price) {
		return 0, 0
	}

	amount := shared.Round2((price - p.ActualEntry) * float64(p.Qty))
	pct := shared.Round2(shared.PercentChange(p.ActualEntry, price))

	return amount, pct
}

// RiskReduction represents the change in exposure from moving a position's stop.
type RiskReduction struct {
	OldRiskPerShare      float64
	NewRiskPerShare      float64
	OldRiskAmount        float64
	NewRiskAmount        float64
	Reduction            float64
	ReductionPct         float64
	LockedProfitPerShare float64
	LockedProfit         float64
}

// CalculateRiskReduction computes the exposure change of moving the position's stop to newSL.
func CalculateRiskReduction(p Position, newSL float64) *RiskReduction {
	qty := float64(p.Qty)
	oldPerShare := max(p.ActualEntry-p.CurrentSL, 0)
	newPerShare := max(p.ActualEntry-newSL, 0)
	lockedPerShare := max(newSL-p.ActualEntry, 0)

	rr := &RiskReduction{
		OldRiskPerShare:      shared.Round2(oldPerShare),
		NewRiskPerShare:      shared.Round2(newPerShare),
		OldRiskAmount:        shared.Round2(oldPerShare * qty),
		NewRiskAmount:        shared.Round2(newPerShare * qty),
		Reduction:            shared.Round2((oldPerShare - newPerShare) * qty),
		LockedProfitPerShare: shared.Round2(lockedPerShare),
		LockedProfit:         shared.Round2(lockedPerShare * qty),
	}

	if oldPerShare > 0 {
		rr.ReductionPct = shared.Round2((oldPerShare - newPerShare) / oldPerShare * 100)
	}

	return rr
}
