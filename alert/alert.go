package alert

import (
	"fmt"

	"github.com/dnldd/swing/risk"
	"github.com/dnldd/swing/shared"
	"github.com/dnldd/swing/zone"
)

// Type represents the kind of an alert.
type Type int

const (
	StopLossHit Type = iota
	NearStopLoss
	TargetHit
	BeyondTarget
	NearTarget
	HighVolatility
	StaleTrade
	InEntryZone
	ApproachingEntryZone
	RegimeConflict
)

// String stringifies the provided alert type.
func (t Type) String() string {
	switch t {
	case StopLossHit:
		return "STOP_LOSS_HIT"
	case NearStopLoss:
		return "NEAR_STOP_LOSS"
	case TargetHit:
		return "TARGET_HIT"
	case BeyondTarget:
		return "BEYOND_TARGET"
	case NearTarget:
		return "NEAR_TARGET"
	case HighVolatility:
		return "HIGH_VOLATILITY"
	case StaleTrade:
		return "STALE_TRADE"
	case InEntryZone:
		return "IN_ENTRY_ZONE"
	case ApproachingEntryZone:
		return "APPROACHING_ENTRY_ZONE"
	case RegimeConflict:
		return "REGIME_CONFLICT"
	default:
		return "unknown"
	}
}

// Severity represents the urgency of an alert.
type Severity int

const (
	Info Severity = iota
	Low
	Medium
	High
	Critical
)

// String stringifies the provided severity.
func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Alert represents a transient severity tagged notice.
type Alert struct {
	Type           Type
	Severity       Severity
	Message        string
	Suggestion     string
	ActionRequired bool
}

const (
	// nearStopPct is the distance above the stop considered close to it.
	nearStopPct = 1.0
	// nearTargetRatio is the share of the target from which price is near it.
	nearTargetRatio = 0.99
	// beyondTargetRatio is the multiple of the target past which price has overshot it.
	beyondTargetRatio = 1.02
	// highATRPct is the atr percentage above which volatility is elevated.
	highATRPct = 5.0
	// staleTradeDays is the holding period from which a trade may be stale.
	staleTradeDays = 20
	// staleTradePnLPct is the profit below which an old trade is stale.
	staleTradePnLPct = 2.0
	// approachZonePct is the distance from the entry zone considered approaching.
	approachZonePct = 2.0
)

// ExitInput represents the inputs of an exit check.
type ExitInput struct {
	Position     risk.Position
	CurrentPrice float64
	// ATRPct is the current atr as a percentage of price, zero when unknown.
	ATRPct float64
}

// CheckExitConditions evaluates an open long position against its stop and target.
func CheckExitConditions(in ExitInput) []Alert {
	alerts := []Alert{}
	pos := in.Position
	price := in.CurrentPrice
	if !shared.IsValidPrice(price) {
		return alerts
	}

	if shared.IsValidPrice(pos.CurrentSL) {
		switch {
		case price <= pos.CurrentSL:
			alerts = append(alerts, Alert{
				Type:           StopLossHit,
				Severity:       Critical,
				Message:        fmt.Sprintf("price %.2f hit the stop loss %.2f", price, pos.CurrentSL),
				Suggestion:     "exit the position",
				ActionRequired: true,
			})
		case price <= pos.CurrentSL*(1+nearStopPct/100):
			alerts = append(alerts, Alert{
				Type:     NearStopLoss,
				Severity: High,
				Message: fmt.Sprintf("price %.2f is within %.0f%% of the stop loss %.2f", price,
					nearStopPct, pos.CurrentSL),
				Suggestion: "prepare to exit or reassess the stop",
			})
		}
	}

	if shared.IsValidPrice(pos.CurrentTarget) {
		switch {
		case price > pos.CurrentTarget*beyondTargetRatio:
			alerts = append(alerts, Alert{
				Type:     BeyondTarget,
				Severity: Medium,
				Message: fmt.Sprintf("price %.2f is beyond the target %.2f", price,
					pos.CurrentTarget),
				Suggestion: "trail the stop to protect the extended gain",
			})
		case price >= pos.CurrentTarget:
			alerts = append(alerts, Alert{
				Type:           TargetHit,
				Severity:       Critical,
				Message:        fmt.Sprintf("price %.2f hit the target %.2f", price, pos.CurrentTarget),
				Suggestion:     "take profit or trail the stop",
				ActionRequired: true,
			})
		case price >= pos.CurrentTarget*nearTargetRatio:
			alerts = append(alerts, Alert{
				Type:       NearTarget,
				Severity:   High,
				Message:    fmt.Sprintf("price %.2f is near the target %.2f", price, pos.CurrentTarget),
				Suggestion: "prepare to take profit",
			})
		}
	}

	if in.ATRPct > highATRPct {
		alerts = append(alerts, Alert{
			Type:       HighVolatility,
			Severity:   Medium,
			Message:    fmt.Sprintf("atr is %.2f%% of price", in.ATRPct),
			Suggestion: "widen the stop or reduce size",
		})
	}

	if pos.DaysInTrade >= staleTradeDays {
		_, pnlPct := pos.PnL(price)
		if pnlPct < staleTradePnLPct {
			alerts = append(alerts, Alert{
				Type:     StaleTrade,
				Severity: Low,
				Message: fmt.Sprintf("%d days in trade with %.2f%% profit", pos.DaysInTrade,
					pnlPct),
				Suggestion: "consider freeing the capital",
			})
		}
	}

	return alerts
}

// CheckEntryZoneProximity evaluates price against a pending entry zone.
func CheckEntryZoneProximity(price float64, z *zone.EntryZone) []Alert {
	alerts := []Alert{}
	if z == nil || !shared.IsValidPrice(price) {
		return alerts
	}

	if z.Contains(price) {
		alerts = append(alerts, Alert{
			Type:     InEntryZone,
			Severity: High,
			Message: fmt.Sprintf("price %.2f is inside the entry zone %.2f-%.2f", price, z.Low,
				z.High),
			Suggestion:     "look for the entry trigger",
			ActionRequired: true,
		})
		return alerts
	}

	var distance float64
	switch {
	case price > z.High:
		distance = shared.PercentChange(z.High, price)
	default:
		distance = shared.PercentChange(price, z.Low)
	}

	if distance <= approachZonePct {
		alerts = append(alerts, Alert{
			Type:     ApproachingEntryZone,
			Severity: Medium,
			Message: fmt.Sprintf("price %.2f is %.2f%% from the entry zone %.2f-%.2f", price,
				shared.Round2(distance), z.Low, z.High),
			Suggestion: "prepare the order",
		})
	}

	return alerts
}

// Status represents the profit and loss state of a position.
type Status int

const (
	Flat Status = iota
	SignificantLoss
	InDrawdown
	InProfit
	GoodProfit
	StrongProfit
)

// String stringifies the provided status.
func (s Status) String() string {
	switch s {
	case SignificantLoss:
		return "SIGNIFICANT_LOSS"
	case InDrawdown:
		return "IN_DRAWDOWN"
	case Flat:
		return "FLAT"
	case InProfit:
		return "IN_PROFIT"
	case GoodProfit:
		return "GOOD_PROFIT"
	case StrongProfit:
		return "STRONG_PROFIT"
	default:
		return "unknown"
	}
}

// StatusInput represents the inputs of a position status check.
type StatusInput struct {
	Position     risk.Position
	CurrentPrice float64
}

// PositionStatus represents the profit and loss of a position.
type PositionStatus struct {
	PnL    float64
	PnLPct float64
	Status Status
}

// CheckPositionStatus buckets the position's profit and loss. The first matching band wins.
func CheckPositionStatus(in StatusInput) *PositionStatus {
	pnl, pct := in.Position.PnL(in.CurrentPrice)
	st := &PositionStatus{PnL: pnl, PnLPct: pct}

	switch {
	case pct <= -5:
		st.Status = SignificantLoss
	case pct <= -2:
		st.Status = InDrawdown
	case pct >= 10:
		st.Status = StrongProfit
	case pct >= 5:
		st.Status = GoodProfit
	case pct >= 1:
		st.Status = InProfit
	default:
		st.Status = Flat
	}

	return st
}
