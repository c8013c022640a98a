package shared

import "testing"

func TestTrendString(t *testing.T) {
	tests := []struct {
		name  string
		trend Trend
		want  string
	}{
		{
			"neutral trend",
			NeutralTrend,
			"NEUTRAL",
		},
		{
			"bullish trend",
			BullishTrend,
			"BULLISH",
		},
		{
			"bearish trend",
			BearishTrend,
			"BEARISH",
		},
		{
			"unknown trend",
			Trend(999),
			"UNKNOWN",
		},
	}

	for _, test := range tests {
		got := test.trend.String()
		if got != test.want {
			t.Errorf("%s: expected %s, got %s", test.name, test.want, got)
		}
	}
}

func TestDirectionString(t *testing.T) {
	tests := []struct {
		name      string
		direction Direction
		want      string
	}{
		{
			"buy",
			Buy,
			"BUY",
		},
		{
			"sell",
			Sell,
			"SELL",
		},
		{
			"unknown direction",
			Direction(999),
			"unknown",
		},
	}

	for _, test := range tests {
		got := test.direction.String()
		if got != test.want {
			t.Errorf("%s: expected %s, got %s", test.name, test.want, got)
		}
	}
}
