package candidate

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/dnldd/swing/indicator"
	"github.com/dnldd/swing/level"
	"github.com/dnldd/swing/shared"
	"github.com/peterldowns/testy/assert"
)

func scenarioInputs() (indicator.Set, *level.Pivots) {
	set := indicator.Set{
		indicator.Last:  100,
		indicator.ATR:   2,
		indicator.EMA20: 98,
	}
	pivots := &level.Pivots{Pivot: 97, R1: 101, R2: 104, S1: 94}

	return set, pivots
}

func findCandidate(candidates []Candidate, archetype Archetype) *Candidate {
	for idx := range candidates {
		if candidates[idx].Archetype == archetype {
			return &candidates[idx]
		}
	}

	return nil
}

func TestGenerateScenario(t *testing.T) {
	set, pivots := scenarioInputs()
	res := Generate(set, pivots, Options{Trend: shared.BullishTrend})
	assert.False(t, res.InsufficientData)
	assert.Equal(t, len(res.Candidates), 4)

	c1 := findCandidate(res.Candidates, Breakout)
	assert.True(t, c1 != nil)
	assert.Equal(t, c1.ID, "C1")
	assert.Equal(t, c1.Skeleton.Type, shared.Buy)
	assert.Equal(t, c1.Skeleton.Entry, 101.4)
	assert.Equal(t, c1.Skeleton.StopLoss, 98)
	assert.Equal(t, c1.Skeleton.Target, 104)
	assert.Equal(t, c1.Skeleton.RiskReward, 0.76)
	assert.Equal(t, c1.Skeleton.EntryRange, Range{Low: 101.4, High: 102})
	assert.False(t, c1.OK)
	assert.Equal(t, c1.Score.TrendAlign, 1)
	assert.Equal(t, c1.Score.DistancePct, 1.4)

	c2 := findCandidate(res.Candidates, Pullback)
	assert.Equal(t, c2.Skeleton.Entry, 98)
	assert.Equal(t, c2.Skeleton.StopLoss, 94)
	assert.Equal(t, c2.Skeleton.Target, 100)
	assert.Equal(t, c2.Skeleton.RiskReward, 0.5)
	assert.Equal(t, c2.Skeleton.EntryRange, Range{Low: 97.4, High: 98.6})

	c3 := findCandidate(res.Candidates, MeanReversion)
	assert.Equal(t, c3.Skeleton.Entry, 94)
	assert.Equal(t, c3.Skeleton.StopLoss, 92.4)
	assert.Equal(t, c3.Skeleton.Target, 97)
	assert.Equal(t, c3.Skeleton.RiskReward, 1.88)
	assert.True(t, c3.OK)

	c4 := findCandidate(res.Candidates, RangeFade)
	assert.Equal(t, c4.Skeleton.Type, shared.Sell)
	assert.Equal(t, c4.Skeleton.Entry, 101)
	assert.Equal(t, c4.Skeleton.StopLoss, 104)
	assert.Equal(t, c4.Skeleton.Target, 97)
	assert.Equal(t, c4.Skeleton.RiskReward, 1.33)
	assert.Equal(t, c4.Score.TrendAlign, 0)
	assert.True(t, c4.Skeleton.InvalidationsPreEntry[0].Above)

	// Candidates are emitted in archetype order.
	for idx, c := range res.Candidates {
		assert.Equal(t, c.Archetype, Archetype(idx))
	}
}

func TestGenerateInsufficientData(t *testing.T) {
	tests := []struct {
		name   string
		set    indicator.Set
		pivots *level.Pivots
	}{
		{
			name:   "empty indicators",
			set:    indicator.Set{},
			pivots: &level.Pivots{Pivot: 97, R1: 101},
		},
		{
			name:   "missing atr",
			set:    indicator.Set{indicator.Last: 100},
			pivots: &level.Pivots{Pivot: 97, R1: 101},
		},
		{
			name:   "missing pivots",
			set:    indicator.Set{indicator.Last: 100, indicator.ATR: 2},
			pivots: nil,
		},
		{
			name:   "zero pivot",
			set:    indicator.Set{indicator.Last: 100, indicator.ATR: 2},
			pivots: &level.Pivots{},
		},
	}

	for _, test := range tests {
		res := Generate(test.set, test.pivots, Options{})
		if !res.InsufficientData {
			t.Errorf("%s: expected insufficient data", test.name)
		}
		if len(res.Candidates) != 0 {
			t.Errorf("%s: expected no candidates, got %d", test.name, len(res.Candidates))
		}
		if len(res.Notes) != 1 {
			t.Errorf("%s: expected a single note, got %v", test.name, res.Notes)
		}
	}
}

func TestGenerateDiscardsNonPositiveRiskReward(t *testing.T) {
	set := indicator.Set{
		indicator.Last:  100,
		indicator.ATR:   2,
		indicator.EMA20: 110,
	}
	pivots := &level.Pivots{Pivot: 97, R1: 101, R2: 104, S1: 94}

	res := Generate(set, pivots, Options{})
	assert.False(t, res.InsufficientData)
	assert.True(t, findCandidate(res.Candidates, Breakout) == nil)

	found := false
	for _, note := range res.Notes {
		if strings.HasPrefix(note, "C1 Breakout discarded") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerateSkipsMissingLevels(t *testing.T) {
	set := indicator.Set{indicator.Last: 100, indicator.ATR: 2}
	pivots := &level.Pivots{Pivot: 97}

	res := Generate(set, pivots, Options{})
	assert.True(t, findCandidate(res.Candidates, Breakout) == nil)
	assert.True(t, findCandidate(res.Candidates, MeanReversion) == nil)
	assert.True(t, findCandidate(res.Candidates, RangeFade) == nil)

	c2 := findCandidate(res.Candidates, Pullback)
	assert.True(t, c2 != nil)
	assert.Equal(t, c2.Skeleton.Entry, 97)
	assert.Equal(t, c2.Skeleton.StopLoss, 95.4)
	assert.Equal(t, c2.Skeleton.Target, 99)
	assert.Equal(t, len(res.Notes), 3)
}

func TestScanTypeBonus(t *testing.T) {
	tests := []struct {
		scanType shared.ScanType
		matches  []Archetype
	}{
		{shared.BreakoutScan, []Archetype{Breakout}},
		{shared.PullbackScan, []Archetype{Pullback}},
		{shared.MomentumScan, []Archetype{Breakout, Pullback}},
		{shared.ConsolidationScan, []Archetype{Pullback, MeanReversion}},
		{shared.MeanReversionScan, []Archetype{MeanReversion}},
		{shared.RangeScan, []Archetype{MeanReversion, RangeFade}},
		{shared.UnknownScan, nil},
	}

	set, pivots := scenarioInputs()
	for _, test := range tests {
		res := Generate(set, pivots, Options{ScanType: test.scanType})
		for _, c := range res.Candidates {
			want := false
			for _, a := range test.matches {
				if a == c.Archetype {
					want = true
				}
			}

			if c.MatchesScanType != want {
				t.Errorf("%s/%s: expected match %v, got %v", test.scanType, c.ID, want, c.MatchesScanType)
			}

			bonus := 0.0
			if want {
				bonus = 0.25
			}
			if c.Score.ScanTypeBonus != bonus {
				t.Errorf("%s/%s: expected bonus %v, got %v", test.scanType, c.ID, bonus,
					c.Score.ScanTypeBonus)
			}
		}
	}
}

func TestRiskReward(t *testing.T) {
	tests := []struct {
		name                string
		direction           shared.Direction
		entry, stop, target float64
		want                float64
	}{
		{"buy", shared.Buy, 100, 98, 104, 2},
		{"buy inverted risk", shared.Buy, 100, 101, 104, 0},
		{"buy flat risk", shared.Buy, 100, 100, 104, 0},
		{"sell", shared.Sell, 100, 102, 95, 2.5},
		{"sell inverted risk", shared.Sell, 100, 99, 95, 0},
	}

	for _, test := range tests {
		got := RiskReward(test.direction, test.entry, test.stop, test.target)
		if got != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, got)
		}
	}
}

func TestRiskRewardSign(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		last := 10 + rng.Float64()*200
		atr := 0.1 + rng.Float64()*10
		set := indicator.Set{
			indicator.Last:    shared.Round2(last),
			indicator.ATR:     shared.Round2(atr),
			indicator.EMA20:   shared.Round2(last * (0.9 + rng.Float64()*0.2)),
			indicator.High20D: shared.Round2(last * (0.95 + rng.Float64()*0.15)),
		}
		pivots := level.ClassicPivots(last*(1+rng.Float64()*0.05), last*(1-rng.Float64()*0.05), last)

		res := Generate(set, pivots, Options{Trend: shared.NeutralTrend})
		for _, c := range res.Candidates {
			s := c.Skeleton
			var risk, reward float64
			if s.Type == shared.Buy {
				risk, reward = s.Entry-s.StopLoss, s.Target-s.Entry
			} else {
				risk, reward = s.StopLoss-s.Entry, s.Entry-s.Target
			}

			if s.RiskReward <= 0 || risk <= 0 || reward <= 0 {
				t.Fatalf("%s: invalid legs rr=%v risk=%v reward=%v", c.ID, s.RiskReward, risk, reward)
			}
			if s.EntryRange.Low > s.Entry || s.EntryRange.High < s.Entry {
				t.Fatalf("%s: entry %v outside band %+v", c.ID, s.Entry, s.EntryRange)
			}
		}
	}
}

func TestTrendAlignment(t *testing.T) {
	assert.Equal(t, TrendAlignment(shared.Buy, shared.BullishTrend), 1)
	assert.Equal(t, TrendAlignment(shared.Buy, shared.NeutralTrend), 0.5)
	assert.Equal(t, TrendAlignment(shared.Buy, shared.BearishTrend), 0)
	assert.Equal(t, TrendAlignment(shared.Sell, shared.BearishTrend), 1)
	assert.Equal(t, TrendAlignment(shared.Sell, shared.BullishTrend), 0)
}

func TestCustomConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OKRiskReward = 0.5
	cfg.ScanTypeBonus = 1

	set, pivots := scenarioInputs()
	res := NewGenerator(cfg).Generate(set, pivots, Options{ScanType: shared.BreakoutScan})
	c1 := findCandidate(res.Candidates, Breakout)
	assert.True(t, c1.OK)
	assert.Equal(t, c1.Score.ScanTypeBonus, 1)
}
