package risk

import (
	"fmt"

	"github.com/dnldd/swing/shared"
)

// TrailMethod represents a trailing stop derivation.
type TrailMethod int

const (
	NoTrail TrailMethod = iota
	ATRTrail
	SwingLowTrail
	EMA20Trail
	BreakevenTrail
	LockOnePercentTrail
	LockHalfGainTrail
)

// String stringifies the provided trail method.
func (m TrailMethod) String() string {
	switch m {
	case ATRTrail:
		return "ATR_TRAIL"
	case SwingLowTrail:
		return "SWING_LOW"
	case EMA20Trail:
		return "EMA20_TRAIL"
	case BreakevenTrail:
		return "BREAKEVEN"
	case LockOnePercentTrail:
		return "LOCK_1PCT"
	case LockHalfGainTrail:
		return "LOCK_50PCT"
	default:
		return "NONE"
	}
}

// Config represents the risk engine tunables.
type Config struct {
	// ATRMultiple is the distance of the atr trail below price, in ATRs.
	ATRMultiple float64 `yaml:"atr_multiple"`
	// BufferATR is the buffer below swing lows and the ema20, in ATRs.
	BufferATR float64 `yaml:"buffer_atr"`
	// BufferPct is the buffer used when the atr is unknown, as a percentage of the level.
	BufferPct float64 `yaml:"buffer_pct"`
	// BreakevenPct is the profit from which the stop may move to entry.
	BreakevenPct float64 `yaml:"breakeven_pct"`
	// LockOnePct is the profit from which one percent of profit may be locked.
	LockOnePct float64 `yaml:"lock_one_pct"`
	// HalfGainPct is the profit above which half the gain may be locked.
	HalfGainPct float64 `yaml:"half_gain_pct"`
}

// DefaultConfig returns the default risk engine tunables.
func DefaultConfig() *Config {
	return &Config{
		ATRMultiple:  1.5,
		BufferATR:    0.25,
		BufferPct:    0.5,
		BreakevenPct: 2,
		LockOnePct:   3,
		HalfGainPct:  5,
	}
}

// TrailInput represents the inputs of a trailing stop evaluation. Zero valued market fields
// are treated as unknown.
type TrailInput struct {
	Position     Position
	CurrentPrice float64
	ATR          float64
	SwingLow     float64
	EMA20        float64
}

// TrailCandidate represents one proposed stop.
type TrailCandidate struct {
	Method   TrailMethod
	StopLoss float64
	Reason   string
}

// TrailResult represents a trailing stop recommendation. NewSL is zero unless ShouldTrail is set.
type TrailResult struct {
	ShouldTrail bool
	NewSL       float64
	Method      TrailMethod
	Reason      string
	ProfitPct   float64
	// Candidates lists the proposals that beat the current stop and sit below price.
	Candidates    []TrailCandidate
	RiskReduction *RiskReduction
}

// CalculateTrailingStop evaluates trailing stop methods using the default tunables.
func CalculateTrailingStop(in TrailInput) *TrailResult {
	return CalculateTrailingStopWithConfig(DefaultConfig(), in)
}

// buffer returns the distance kept below a structural level.
func (cfg *Config) buffer(atr, lvl float64) float64 {
	if shared.IsValidPrice(atr) {
		return cfg.BufferATR * atr
	}

	return lvl * cfg.BufferPct / 100
}

// proposals enumerates the stop proposals of every applicable method.
func (cfg *Config) proposals(in TrailInput, profitPct float64) []TrailCandidate {
	entry := in.Position.ActualEntry
	price := in.CurrentPrice
	proposals := []TrailCandidate{}

	if shared.IsValidPrice(in.ATR) {
		proposals = append(proposals, TrailCandidate{
			Method:   ATRTrail,
			StopLoss: price - cfg.ATRMultiple*in.ATR,
			Reason:   fmt.Sprintf("%.1fx atr below price", cfg.ATRMultiple),
		})
	}

	if shared.IsValidPrice(in.SwingLow) {
		proposals = append(proposals, TrailCandidate{
			Method:   SwingLowTrail,
			StopLoss: in.SwingLow - cfg.buffer(in.ATR, in.SwingLow),
			Reason:   fmt.Sprintf("below swing low %.2f", in.SwingLow),
		})
	}

	if shared.IsValidPrice(in.EMA20) {
		proposals = append(proposals, TrailCandidate{
			Method:   EMA20Trail,
			StopLoss: in.EMA20 - cfg.buffer(in.ATR, in.EMA20),
			Reason:   fmt.Sprintf("below ema20 %.2f", in.EMA20),
		})
	}

	if profitPct >= cfg.BreakevenPct {
		proposals = append(proposals, TrailCandidate{
			Method:   BreakevenTrail,
			StopLoss: entry,
			Reason:   fmt.Sprintf("profit %.2f%% allows breakeven", profitPct),
		})
	}

	if profitPct >= cfg.LockOnePct {
		proposals = append(proposals, TrailCandidate{
			Method:   LockOnePercentTrail,
			StopLoss: entry * 1.01,
			Reason:   fmt.Sprintf("profit %.2f%% allows locking 1%%", profitPct),
		})
	}

	if profitPct > cfg.HalfGainPct {
		proposals = append(proposals, TrailCandidate{
			Method:   LockHalfGainTrail,
			StopLoss: entry + (price-entry)*0.5,
			Reason:   fmt.Sprintf("profit %.2f%% allows locking half the gain", profitPct),
		})
	}

	for idx := range proposals {
		proposals[idx].StopLoss = shared.Round2(proposals[idx].StopLoss)
	}

	return proposals
}

// CalculateTrailingStopWithConfig recommends the most protective stop that is strictly above the current
// stop and strictly below price. No trail is recommended when that stop would meet or exceed
// the current target.
func CalculateTrailingStopWithConfig(cfg *Config, in TrailInput) *TrailResult {
	res := &TrailResult{Method: NoTrail, Candidates: []TrailCandidate{}}

	pos := in.Position
	if !shared.IsValidPrice(pos.ActualEntry) || !shared.IsValidPrice(in.CurrentPrice) {
		res.Reason = "invalid entry or current price"
		return res
	}

	res.ProfitPct = shared.Round2(shared.PercentChange(pos.ActualEntry, in.CurrentPrice))

	for _, p := range cfg.proposals(in, res.ProfitPct) {
		if p.StopLoss > pos.CurrentSL && p.StopLoss < in.CurrentPrice {
			res.Candidates = append(res.Candidates, p)
		}
	}

	if len(res.Candidates) == 0 {
		res.Reason = "no method improves on the current stop"
		return res
	}

	best := res.Candidates[0]
	for _, c := range res.Candidates[1:] {
		if c.StopLoss > best.StopLoss {
			best = c
		}
	}

	if pos.CurrentTarget > 0 && best.StopLoss >= pos.CurrentTarget {
		res.Reason = fmt.Sprintf("%s stop %.2f would meet the target %.2f", best.Method,
			best.StopLoss, pos.CurrentTarget)
		return res
	}

	res.ShouldTrail = true
	res.NewSL = best.StopLoss
	res.Method = best.Method
	res.Reason = fmt.Sprintf("raise stop to %.2f, %s", best.StopLoss, best.Reason)
	res.RiskReduction = CalculateRiskReduction(pos, best.StopLoss)

	return res
}
