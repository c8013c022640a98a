package alert

import (
	"testing"

	"github.com/dnldd/swing/risk"
	"github.com/dnldd/swing/zone"
	"github.com/peterldowns/testy/assert"
)

func alertTypes(alerts []Alert) []Type {
	types := []Type{}
	for _, a := range alerts {
		types = append(types, a.Type)
	}

	return types
}

func TestCheckExitConditions(t *testing.T) {
	pos := risk.Position{ActualEntry: 100, CurrentSL: 95, CurrentTarget: 110, Qty: 10}

	tests := []struct {
		name string
		in   ExitInput
		want []Type
	}{
		{"stop hit", ExitInput{Position: pos, CurrentPrice: 94.5}, []Type{StopLossHit}},
		{"stop touched", ExitInput{Position: pos, CurrentPrice: 95}, []Type{StopLossHit}},
		{"near stop", ExitInput{Position: pos, CurrentPrice: 95.9}, []Type{NearStopLoss}},
		{"quiet", ExitInput{Position: pos, CurrentPrice: 102}, []Type{}},
		{"near target", ExitInput{Position: pos, CurrentPrice: 109}, []Type{NearTarget}},
		{"target hit", ExitInput{Position: pos, CurrentPrice: 110.5}, []Type{TargetHit}},
		{"beyond target", ExitInput{Position: pos, CurrentPrice: 113}, []Type{BeyondTarget}},
		{
			"volatile",
			ExitInput{Position: pos, CurrentPrice: 102, ATRPct: 6},
			[]Type{HighVolatility},
		},
		{
			"stale",
			ExitInput{
				Position:     risk.Position{ActualEntry: 100, CurrentSL: 95, CurrentTarget: 110, Qty: 10, DaysInTrade: 25},
				CurrentPrice: 101,
			},
			[]Type{StaleTrade},
		},
		{
			"old but working",
			ExitInput{
				Position:     risk.Position{ActualEntry: 100, CurrentSL: 95, CurrentTarget: 110, Qty: 10, DaysInTrade: 25},
				CurrentPrice: 104,
			},
			[]Type{},
		},
		{"invalid price", ExitInput{Position: pos}, []Type{}},
	}

	for _, test := range tests {
		got := alertTypes(CheckExitConditions(test.in))
		if len(got) != len(test.want) {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, got)
			continue
		}
		for idx := range got {
			if got[idx] != test.want[idx] {
				t.Errorf("%s: expected %v, got %v", test.name, test.want, got)
			}
		}
	}
}

func TestExitSeverities(t *testing.T) {
	pos := risk.Position{ActualEntry: 100, CurrentSL: 95, CurrentTarget: 110, Qty: 10}

	alerts := CheckExitConditions(ExitInput{Position: pos, CurrentPrice: 94})
	assert.Equal(t, alerts[0].Severity, Critical)
	assert.True(t, alerts[0].ActionRequired)

	alerts = CheckExitConditions(ExitInput{Position: pos, CurrentPrice: 109.5})
	assert.Equal(t, alerts[0].Severity, High)
	assert.False(t, alerts[0].ActionRequired)

	alerts = CheckExitConditions(ExitInput{Position: pos, CurrentPrice: 120})
	assert.Equal(t, alerts[0].Severity, Medium)
}

func TestCheckEntryZoneProximity(t *testing.T) {
	z := &zone.EntryZone{Low: 97, High: 99, Center: 98}

	tests := []struct {
		name     string
		price    float64
		zone     *zone.EntryZone
		want     []Type
		severity Severity
	}{
		{"inside", 98, z, []Type{InEntryZone}, High},
		{"on the edge", 99, z, []Type{InEntryZone}, High},
		{"approaching from above", 100.5, z, []Type{ApproachingEntryZone}, Medium},
		{"approaching from below", 95.5, z, []Type{ApproachingEntryZone}, Medium},
		{"far above", 105, z, []Type{}, Info},
		{"no zone", 98, nil, []Type{}, Info},
	}

	for _, test := range tests {
		alerts := CheckEntryZoneProximity(test.price, test.zone)
		got := alertTypes(alerts)
		if len(got) != len(test.want) {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, got)
			continue
		}
		if len(got) > 0 && (got[0] != test.want[0] || alerts[0].Severity != test.severity) {
			t.Errorf("%s: expected %s/%s, got %s/%s", test.name, test.want[0], test.severity,
				got[0], alerts[0].Severity)
		}
	}
}

func TestCheckPositionStatus(t *testing.T) {
	tests := []struct {
		name   string
		price  float64
		pnl    float64
		pnlPct float64
		status Status
	}{
		{"significant loss", 95, -50, -5, SignificantLoss},
		{"drawdown", 97, -30, -3, InDrawdown},
		{"flat", 100.5, 5, 0.5, Flat},
		{"in profit", 102, 20, 2, InProfit},
		{"good profit", 105, 50, 5, GoodProfit},
		{"strong profit", 111, 110, 11, StrongProfit},
	}

	for _, test := range tests {
		st := CheckPositionStatus(StatusInput{
			Position:     risk.Position{ActualEntry: 100, Qty: 10},
			CurrentPrice: test.price,
		})
		if st.PnL != test.pnl || st.PnLPct != test.pnlPct || st.Status != test.status {
			t.Errorf("%s: expected %v/%v/%s, got %v/%v/%s", test.name, test.pnl, test.pnlPct,
				test.status, st.PnL, st.PnLPct, st.Status)
		}
	}
}

func TestStrings(t *testing.T) {
	assert.Equal(t, StopLossHit.String(), "STOP_LOSS_HIT")
	assert.Equal(t, RegimeConflict.String(), "REGIME_CONFLICT")
	assert.Equal(t, Critical.String(), "critical")
	assert.Equal(t, Info.String(), "info")
	assert.Equal(t, SignificantLoss.String(), "SIGNIFICANT_LOSS")
}
