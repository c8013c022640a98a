package candidate

import (
	"fmt"

	"github.com/dnldd/swing/indicator"
	"github.com/dnldd/swing/level"
	"github.com/dnldd/swing/shared"
)

// Config represents the tunables of the candidate generator.
type Config struct {
	// ScanTypeBonus is the ranking bonus of a candidate favoured by the scan type.
	ScanTypeBonus float64 `yaml:"scan_type_bonus"`
	// OKRiskReward is the minimum risk reward of a candidate flagged ok.
	OKRiskReward float64 `yaml:"ok_risk_reward"`
	// BreakoutBufferATR is the confirmation buffer above resistance, in ATRs.
	BreakoutBufferATR float64 `yaml:"breakout_buffer_atr"`
	// BreakoutTargetATR is the fallback breakout target distance, in ATRs.
	BreakoutTargetATR float64 `yaml:"breakout_target_atr"`
	// PullbackTargetATR is the fallback pullback target distance, in ATRs.
	PullbackTargetATR float64 `yaml:"pullback_target_atr"`
	// ReversionTargetATR is the fallback mean reversion and range fade target distance, in ATRs.
	ReversionTargetATR float64 `yaml:"reversion_target_atr"`
	// StopATR is the fallback stop distance, in ATRs.
	StopATR float64 `yaml:"stop_atr"`
	// EntryBandATR is the half width of an entry band, in ATRs.
	EntryBandATR float64 `yaml:"entry_band_atr"`
	// InvalidationCloses is the number of consecutive closes beyond a level that cancels an entry.
	InvalidationCloses int `yaml:"invalidation_closes"`
}

// DefaultConfig returns the default candidate generator tunables.
func DefaultConfig() *Config {
	return &Config{
		ScanTypeBonus:      0.25,
		OKRiskReward:       1.5,
		BreakoutBufferATR:  0.2,
		BreakoutTargetATR:  1.2,
		PullbackTargetATR:  1.0,
		ReversionTargetATR: 0.8,
		StopATR:            0.8,
		EntryBandATR:       0.3,
		InvalidationCloses: 2,
	}
}

// Options represents the caller supplied context of a generation.
type Options struct {
	ScanType shared.ScanType
	Trend    shared.Trend
}

// Result represents the outcome of a generation.
type Result struct {
	Candidates       []Candidate
	InsufficientData bool
	Notes            []string
}

// Generator produces trade candidates.
type Generator struct {
	cfg *Config
}

// NewGenerator initializes a candidate generator.
func NewGenerator(cfg *Config) *Generator {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Generator{cfg: cfg}
}

// Generate produces trade candidates using the default tunables.
func Generate(set indicator.Set, pivots *level.Pivots, opts Options) *Result {
	return NewGenerator(nil).Generate(set, pivots, opts)
}

// inputs represents the parameter bundle shared by all archetypes.
type inputs struct {
	last     float64
	atr      float64
	ema20    float64
	high20d  float64
	rsi      float64
	hasEMA20 bool
	hasHigh  bool
	hasRSI   bool
	pivots   *level.Pivots
}

// Generate produces up to four trade candidates from the provided indicators and pivots.
// Candidates are emitted in archetype order.
func (g *Generator) Generate(set indicator.Set, pivots *level.Pivots, opts Options) *Result {
	res := &Result{Candidates: []Candidate{}}

	last, hasLast := set.Price(indicator.Last)
	atr, hasATR := set.Price(indicator.ATR)
	hasPivot := pivots != nil && shared.IsValidPrice(pivots.Pivot)

	var missing []string
	if !hasLast {
		missing = append(missing, indicator.Last)
	}
	if !hasATR {
		missing = append(missing, indicator.ATR)
	}
	if !hasPivot {
		missing = append(missing, "pivot")
	}
	if len(missing) > 0 {
		res.InsufficientData = true
		res.Notes = append(res.Notes, fmt.Sprintf("insufficient data: missing %v", missing))
		return res
	}

	in := inputs{last: last, atr: atr, pivots: pivots}
	in.ema20, in.hasEMA20 = set.Price(indicator.EMA20)
	in.high20d, in.hasHigh = set.Price(indicator.High20D)
	in.rsi, in.hasRSI = set.Get(indicator.RSI)

	builders := []struct {
		archetype Archetype
		build     func(inputs) (*plan, string)
	}{
		{Breakout, g.breakout},
		{Pullback, g.pullback},
		{MeanReversion, g.meanReversion},
		{RangeFade, g.rangeFade},
	}

	for _, b := range builders {
		archetype := b.archetype
		p, reason := b.build(in)
		if p == nil {
			res.Notes = append(res.Notes, fmt.Sprintf("%s %s skipped: %s",
				archetype.ID(), archetype.Name(), reason))
			continue
		}

		c, reason := g.finalize(archetype, p, in, opts)
		if c == nil {
			res.Notes = append(res.Notes, fmt.Sprintf("%s %s discarded: %s",
				archetype.ID(), archetype.Name(), reason))
			continue
		}

		res.Candidates = append(res.Candidates, *c)
	}

	if in.hasRSI && in.rsi >= 50 && containsArchetype(res.Candidates, MeanReversion) {
		res.Notes = append(res.Notes, fmt.Sprintf("C3 Mean Reversion: rsi %.2f is not stretched", in.rsi))
	}

	return res
}

// containsArchetype reports whether the provided candidates include the archetype.
func containsArchetype(candidates []Candidate, archetype Archetype) bool {
	for idx := range candidates {
		if candidates[idx].Archetype == archetype {
			return true
		}
	}

	return false
}

// plan represents the unrounded geometry of a candidate.
type plan struct {
	direction     shared.Direction
	entry         float64
	stop          float64
	target        float64
	bandLow       float64
	bandHigh      float64
	triggers      []string
	invalidations []Invalidation
}

// finalize rounds the plan and derives the candidate's risk reward and ranking inputs. A nil
// candidate is returned when the rounded risk reward is not positive.
func (g *Generator) finalize(archetype Archetype, p *plan, in inputs, opts Options) (*Candidate, string) {
	entry := shared.Round2(p.entry)
	stop := shared.Round2(p.stop)
	target := shared.Round2(p.target)

	rr := shared.Round2(RiskReward(p.direction, entry, stop, target))
	if rr <= 0 {
		return nil, fmt.Sprintf("non-positive risk reward (entry %.2f, stop %.2f, target %.2f)",
			entry, stop, target)
	}

	matches := MatchesScanType(archetype, opts.ScanType)
	bonus := 0.0
	if matches {
		bonus = g.cfg.ScanTypeBonus
	}

	distance := 0.0
	if in.last > 0 {
		diff := entry - in.last
		if diff < 0 {
			diff = -diff
		}
		distance = shared.Round2(diff / in.last * 100)
	}

	invalidations := make([]Invalidation, 0, len(p.invalidations))
	for _, inv := range p.invalidations {
		inv.Level = shared.Round2(inv.Level)
		invalidations = append(invalidations, inv)
	}

	c := &Candidate{
		ID:              archetype.ID(),
		Name:            archetype.Name(),
		Archetype:       archetype,
		MatchesScanType: matches,
		Score: Score{
			RR:            rr,
			TrendAlign:    TrendAlignment(p.direction, opts.Trend),
			DistancePct:   distance,
			ScanTypeBonus: bonus,
		},
		Skeleton: Skeleton{
			Type:  p.direction,
			Entry: entry,
			EntryRange: Range{
				Low:  shared.Round2(p.bandLow),
				High: shared.Round2(p.bandHigh),
			},
			Target:                target,
			StopLoss:              stop,
			RiskReward:            rr,
			Triggers:              p.triggers,
			InvalidationsPreEntry: invalidations,
		},
		OK: rr >= g.cfg.OKRiskReward,
	}

	return c, ""
}

// closesBeyond builds the consecutive-closes invalidation rule for the provided level.
func (g *Generator) closesBeyond(lvl float64, above bool) Invalidation {
	side := "below"
	if above {
		side = "above"
	}

	return Invalidation{
		Rule: fmt.Sprintf("%d consecutive 1h closes %s %.2f cancels the entry",
			g.cfg.InvalidationCloses, side, shared.Round2(lvl)),
		Timeframe:         "1h",
		Level:             lvl,
		ConsecutiveCloses: g.cfg.InvalidationCloses,
		Above:             above,
	}
}

// breakout builds the C1 plan: a buy stop above the strongest nearby resistance.
func (g *Generator) breakout(in inputs) (*plan, string) {
	resistance := 0.0
	if shared.IsValidPrice(in.pivots.R1) {
		resistance = in.pivots.R1
	}
	if in.hasHigh && in.high20d > resistance {
		resistance = in.high20d
	}
	if resistance == 0 {
		return nil, "no valid resistance level"
	}

	entry := resistance + g.cfg.BreakoutBufferATR*in.atr

	stop := in.pivots.Pivot
	if in.hasEMA20 && in.ema20 > stop {
		stop = in.ema20
	}

	target := entry + g.cfg.BreakoutTargetATR*in.atr
	if shared.IsValidPrice(in.pivots.R2) && in.pivots.R2 > entry {
		target = in.pivots.R2
	}

	return &plan{
		direction: shared.Buy,
		entry:     entry,
		stop:      stop,
		target:    target,
		bandLow:   entry,
		bandHigh:  entry + g.cfg.EntryBandATR*in.atr,
		triggers: []string{
			fmt.Sprintf("Daily close above %.2f", shared.Round2(resistance)),
			"Breakout volume above the 20-day average",
		},
		invalidations: []Invalidation{g.closesBeyond(stop, false)},
	}, ""
}

// pullback builds the C2 plan: a buy at the nearest dynamic support.
func (g *Generator) pullback(in inputs) (*plan, string) {
	entry := in.pivots.Pivot
	if in.hasEMA20 && in.ema20 > entry {
		entry = in.ema20
	}

	stop := entry - g.cfg.StopATR*in.atr
	if shared.IsValidPrice(in.pivots.S1) && in.pivots.S1 < entry {
		stop = in.pivots.S1
	}

	target := entry + g.cfg.PullbackTargetATR*in.atr
	if in.hasHigh && in.high20d > entry {
		target = in.high20d
	}

	band := g.cfg.EntryBandATR * in.atr

	return &plan{
		direction: shared.Buy,
		entry:     entry,
		stop:      stop,
		target:    target,
		bandLow:   entry - band,
		bandHigh:  entry + band,
		triggers: []string{
			fmt.Sprintf("Pullback holds %.2f", shared.Round2(entry)),
			"Bullish reversal candle in the entry band",
		},
		invalidations: []Invalidation{g.closesBeyond(stop, false)},
	}, ""
}

// meanReversion builds the C3 plan: a buy at the first pivot support.
func (g *Generator) meanReversion(in inputs) (*plan, string) {
	if !shared.IsValidPrice(in.pivots.S1) {
		return nil, "no valid s1"
	}
	entry := in.pivots.S1

	stop := entry - g.cfg.StopATR*in.atr
	if shared.IsValidPrice(in.pivots.S2) && in.pivots.S2 < entry {
		stop = in.pivots.S2
	}

	target := entry + g.cfg.ReversionTargetATR*in.atr
	if in.pivots.Pivot > entry {
		target = in.pivots.Pivot
	}

	band := g.cfg.EntryBandATR * in.atr

	return &plan{
		direction: shared.Buy,
		entry:     entry,
		stop:      stop,
		target:    target,
		bandLow:   entry - band,
		bandHigh:  entry + band,
		triggers: []string{
			fmt.Sprintf("Tag of s1 %.2f", shared.Round2(entry)),
			"Close back above s1 after the tag",
		},
		invalidations: []Invalidation{g.closesBeyond(stop, false)},
	}, ""
}

// rangeFade builds the C4 plan: a sell at the first pivot resistance.
func (g *Generator) rangeFade(in inputs) (*plan, string) {
	if !shared.IsValidPrice(in.pivots.R1) {
		return nil, "no valid r1"
	}
	entry := in.pivots.R1

	stop := entry + g.cfg.StopATR*in.atr
	if shared.IsValidPrice(in.pivots.R2) && in.pivots.R2 > entry {
		stop = in.pivots.R2
	}

	target := entry - g.cfg.ReversionTargetATR*in.atr
	if in.pivots.Pivot < entry {
		target = in.pivots.Pivot
	}

	band := g.cfg.EntryBandATR * in.atr

	return &plan{
		direction: shared.Sell,
		entry:     entry,
		stop:      stop,
		target:    target,
		bandLow:   entry - band,
		bandHigh:  entry + band,
		triggers: []string{
			fmt.Sprintf("Rejection at r1 %.2f", shared.Round2(entry)),
			"Close back below r1 after the tag",
		},
		invalidations: []Invalidation{g.closesBeyond(stop, true)},
	}, ""
}
