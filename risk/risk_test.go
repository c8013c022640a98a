package risk

import (
	"math"
	"math/rand"
	"testing"

	"github.com/dnldd/swing/shared"
	"github.com/peterldowns/testy/assert"
)

func TestCalculateTrailingStop(t *testing.T) {
	pos := Position{ActualEntry: 100, CurrentSL: 95, CurrentTarget: 120, Qty: 10}

	tests := []struct {
		name        string
		in          TrailInput
		shouldTrail bool
		newSL       float64
		method      TrailMethod
		candidates  int
	}{
		{
			name: "atr trail is most protective",
			in: TrailInput{Position: pos, CurrentPrice: 110, ATR: 2, SwingLow: 105,
				EMA20: 106},
			shouldTrail: true,
			newSL:       107,
			method:      ATRTrail,
			candidates:  6,
		},
		{
			name:        "small profit trails by atr only",
			in:          TrailInput{Position: pos, CurrentPrice: 101, ATR: 2},
			shouldTrail: true,
			newSL:       98,
			method:      ATRTrail,
			candidates:  1,
		},
		{
			name:        "swing buffer falls back to percent without atr",
			in:          TrailInput{Position: pos, CurrentPrice: 101, SwingLow: 100},
			shouldTrail: true,
			newSL:       99.5,
			method:      SwingLowTrail,
			candidates:  1,
		},
		{
			name:        "equal stops keep the first method",
			in:          TrailInput{Position: pos, CurrentPrice: 110, ATR: 2, EMA20: 107.5},
			shouldTrail: true,
			newSL:       107,
			method:      ATRTrail,
			candidates:  5,
		},
		{
			name: "stop would meet target",
			in: TrailInput{
				Position:     Position{ActualEntry: 100, CurrentSL: 95, CurrentTarget: 106, Qty: 10},
				CurrentPrice: 110,
				ATR:          2,
			},
			shouldTrail: false,
			candidates:  4,
		},
		{
			name: "no method beats the current stop",
			in: TrailInput{
				Position:     Position{ActualEntry: 100, CurrentSL: 108, CurrentTarget: 120, Qty: 10},
				CurrentPrice: 110,
				ATR:          2,
			},
			shouldTrail: false,
			candidates:  0,
		},
		{
			name:        "invalid price",
			in:          TrailInput{Position: pos, CurrentPrice: 0, ATR: 2},
			shouldTrail: false,
			candidates:  0,
		},
	}

	for _, test := range tests {
		res := CalculateTrailingStop(test.in)
		if res.ShouldTrail != test.shouldTrail {
			t.Errorf("%s: expected should trail %v, got %v (%s)", test.name, test.shouldTrail,
				res.ShouldTrail, res.Reason)
			continue
		}
		if res.NewSL != test.newSL {
			t.Errorf("%s: expected new stop %v, got %v", test.name, test.newSL, res.NewSL)
		}
		if res.Method != test.method {
			t.Errorf("%s: expected method %s, got %s", test.name, test.method, res.Method)
		}
		if len(res.Candidates) != test.candidates {
			t.Errorf("%s: expected %d candidates, got %d", test.name, test.candidates,
				len(res.Candidates))
		}
		if res.ShouldTrail != (res.RiskReduction != nil) {
			t.Errorf("%s: expected risk reduction only with a trail", test.name)
		}
	}
}

func TestTrailingStopMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 5000; i++ {
		entry := 10 + rng.Float64()*500
		pos := Position{
			ActualEntry:   shared.Round2(entry),
			CurrentSL:     shared.Round2(entry * (0.85 + rng.Float64()*0.2)),
			CurrentTarget: shared.Round2(entry * (1 + rng.Float64()*0.3)),
			Qty:           1 + rng.Intn(100),
		}
		price := shared.Round2(entry * (0.9 + rng.Float64()*0.35))
		in := TrailInput{
			Position:     pos,
			CurrentPrice: price,
			ATR:          shared.Round2(entry * rng.Float64() * 0.05),
			SwingLow:     shared.Round2(price * (0.9 + rng.Float64()*0.1)),
			EMA20:        shared.Round2(price * (0.92 + rng.Float64()*0.1)),
		}

		res := CalculateTrailingStop(in)
		if !res.ShouldTrail {
			continue
		}

		if res.NewSL <= pos.CurrentSL {
			t.Fatalf("new stop %v not above current stop %v", res.NewSL, pos.CurrentSL)
		}
		if res.NewSL >= pos.CurrentTarget {
			t.Fatalf("new stop %v not below target %v", res.NewSL, pos.CurrentTarget)
		}
		if res.NewSL >= price {
			t.Fatalf("new stop %v not below price %v", res.NewSL, price)
		}
		for _, c := range res.Candidates {
			if c.StopLoss > res.NewSL {
				t.Fatalf("candidate %s at %v above selected stop %v", c.Method, c.StopLoss, res.NewSL)
			}
		}
	}
}

func TestCalculateRiskReduction(t *testing.T) {
	pos := Position{ActualEntry: 100, CurrentSL: 95, Qty: 10}

	rr := CalculateRiskReduction(pos, 107)
	assert.Equal(t, rr, &RiskReduction{
		OldRiskPerShare:      5,
		NewRiskPerShare:      0,
		OldRiskAmount:        50,
		NewRiskAmount:        0,
		Reduction:            50,
		ReductionPct:         100,
		LockedProfitPerShare: 7,
		LockedProfit:         70,
	})

	rr = CalculateRiskReduction(pos, 98)
	assert.Equal(t, rr.NewRiskPerShare, 2)
	assert.Equal(t, rr.Reduction, 30)
	assert.Equal(t, rr.ReductionPct, 60)
	assert.Equal(t, rr.LockedProfit, 0)
}

func TestPositionPnL(t *testing.T) {
	pos := Position{ActualEntry: 100, Qty: 10}
	amount, pct := pos.PnL(95)
	assert.Equal(t, amount, -50)
	assert.Equal(t, pct, -5)

	amount, pct = pos.PnL(112.5)
	assert.Equal(t, amount, 125)
	assert.Equal(t, pct, 12.5)
}

func TestCalculatePositionSize(t *testing.T) {
	tests := []struct {
		name   string
		in     SizeInput
		qty    int
		capped bool
	}{
		{
			name: "risk budget",
			in:   SizeInput{AccountSize: 100000, RiskPercent: 1, Entry: 50, StopLoss: 48},
			qty:  500,
		},
		{
			name: "capped by position value",
			in: SizeInput{AccountSize: 100000, RiskPercent: 1, Entry: 50, StopLoss: 48,
				MaxPositionValue: 10000},
			qty:    200,
			capped: true,
		},
		{
			name: "floored quantity",
			in:   SizeInput{AccountSize: 1000, RiskPercent: 1, Entry: 50, StopLoss: 47},
			qty:  3,
		},
		{
			name: "budget below one share",
			in:   SizeInput{AccountSize: 1000, RiskPercent: 1, Entry: 50, StopLoss: 30},
			qty:  0,
		},
		{
			name: "stop equals entry",
			in:   SizeInput{AccountSize: 1000, RiskPercent: 1, Entry: 50, StopLoss: 50},
			qty:  0,
		},
		{
			name: "stop within a cent of entry",
			in:   SizeInput{AccountSize: 1e6, RiskPercent: 1, Entry: 1, StopLoss: 0.9999999999999999},
			qty:  0,
		},
		{
			name: "stop a fraction of a cent from entry",
			in:   SizeInput{AccountSize: 100000, RiskPercent: 1, Entry: 50, StopLoss: 49.996},
			qty:  0,
		},
		{
			name: "quantity beyond int range",
			in:   SizeInput{AccountSize: 1e30, RiskPercent: 1, Entry: 50, StopLoss: 49},
			qty:  math.MaxInt,
		},
		{
			name: "invalid entry",
			in:   SizeInput{AccountSize: 1000, RiskPercent: 1, StopLoss: 50},
			qty:  0,
		},
	}

	for _, test := range tests {
		size := CalculatePositionSize(test.in)
		if size.Quantity != test.qty {
			t.Errorf("%s: expected quantity %d, got %d", test.name, test.qty, size.Quantity)
		}
		if size.Capped != test.capped {
			t.Errorf("%s: expected capped %v, got %v", test.name, test.capped, size.Capped)
		}
		if size.Reason == "" {
			t.Errorf("%s: expected a reason", test.name)
		}
		if size.Quantity < 0 || size.RiskAmount < 0 {
			t.Errorf("%s: expected non-negative sizing, got %d shares risking %.2f", test.name,
				size.Quantity, size.RiskAmount)
		}
	}
}

func TestAssessTradeRisk(t *testing.T) {
	tests := []struct {
		name                string
		entry, stop, target float64
		level               Level
		quality             Quality
	}{
		{"tight stop excellent reward", 100, 98, 106, LowRisk, ExcellentRR},
		{"medium stop fair reward", 100, 95, 105, MediumRisk, FairRR},
		{"wide stop poor reward", 100, 90, 105, HighRisk, PoorRR},
		{"short", 100, 104, 92, MediumRisk, GoodRR},
	}

	for _, test := range tests {
		a := AssessTradeRisk(test.entry, test.stop, test.target)
		if a.Level != test.level {
			t.Errorf("%s: expected level %s, got %s", test.name, test.level, a.Level)
		}
		if a.Quality != test.quality {
			t.Errorf("%s: expected quality %s, got %s", test.name, test.quality, a.Quality)
		}
	}
}

func TestTrailMethodString(t *testing.T) {
	assert.Equal(t, ATRTrail.String(), "ATR_TRAIL")
	assert.Equal(t, LockHalfGainTrail.String(), "LOCK_50PCT")
	assert.Equal(t, NoTrail.String(), "NONE")
}
