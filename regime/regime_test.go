package regime

import (
	"testing"

	"github.com/dnldd/swing/shared"
	"github.com/peterldowns/testy/assert"
)

func linearCloses(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}

	return closes
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   Regime
	}{
		{"no data", nil, Unknown},
		{"too few closes", linearCloses(49, 100, 1), Unknown},
		{"rising benchmark", linearCloses(60, 100, 1), Bullish},
		{"falling benchmark", linearCloses(60, 200, -1), Bearish},
		{"flat benchmark", linearCloses(60, 100, 0), Neutral},
	}

	for _, test := range tests {
		res := Check(test.closes)
		if res.Regime != test.want {
			t.Errorf("%s: expected %s, got %s", test.name, test.want, res.Regime)
		}
	}
}

func TestCheckDistance(t *testing.T) {
	res := Check(linearCloses(60, 100, 1))
	assert.Equal(t, res.Last, 159)
	assert.Equal(t, res.EMA, 134.5)
	assert.Equal(t, res.DistancePct, 18.22)

	// A threshold wider than the move neutralises the regime.
	res = CheckWithConfig(&Config{Period: 50, ThresholdPct: 20}, linearCloses(60, 100, 1))
	assert.Equal(t, res.Regime, Neutral)
}

func TestAdvise(t *testing.T) {
	tests := []struct {
		name      string
		direction shared.Direction
		regime    Regime
		warnings  int
		conflicts bool
		aligns    bool
	}{
		{"buy in bear market", shared.Buy, Bearish, 1, true, false},
		{"sell in bull market", shared.Sell, Bullish, 1, true, false},
		{"buy in bull market", shared.Buy, Bullish, 0, false, true},
		{"sell in bear market", shared.Sell, Bearish, 0, false, true},
		{"buy in neutral market", shared.Buy, Neutral, 1, false, false},
		{"unknown regime", shared.Buy, Unknown, 0, false, false},
	}

	for _, test := range tests {
		warnings := Advise(test.direction, test.regime)
		if len(warnings) != test.warnings {
			t.Errorf("%s: expected %d warnings, got %v", test.name, test.warnings, warnings)
		}
		if Conflicts(test.direction, test.regime) != test.conflicts {
			t.Errorf("%s: expected conflicts %v", test.name, test.conflicts)
		}
		if Aligns(test.direction, test.regime) != test.aligns {
			t.Errorf("%s: expected aligns %v", test.name, test.aligns)
		}
	}
}

func TestRegimeString(t *testing.T) {
	assert.Equal(t, Bullish.String(), "BULLISH")
	assert.Equal(t, Bearish.String(), "BEARISH")
	assert.Equal(t, Neutral.String(), "NEUTRAL")
	assert.Equal(t, Unknown.String(), "UNKNOWN")
}
