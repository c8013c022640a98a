package scoring

import (
	"fmt"

	"github.com/dnldd/swing/candidate"
	"github.com/dnldd/swing/indicator"
	"github.com/dnldd/swing/shared"
	"github.com/rs/zerolog"
)

// Grade represents the letter grade of a setup score.
type Grade int

const (
	GradeD Grade = iota
	GradeC
	GradeB
	GradeBPlus
	GradeA
	GradeAPlus
	GradeEliminated
)

// String stringifies the provided grade.
func (g Grade) String() string {
	switch g {
	case GradeAPlus:
		return "A+"
	case GradeA:
		return "A"
	case GradeBPlus:
		return "B+"
	case GradeB:
		return "B"
	case GradeC:
		return "C"
	case GradeD:
		return "D"
	case GradeEliminated:
		return "ELIMINATED"
	default:
		return "unknown"
	}
}

// ParseGrade parses the provided grade string.
func ParseGrade(s string) (Grade, error) {
	for g := GradeD; g <= GradeEliminated; g++ {
		if g.String() == s {
			return g, nil
		}
	}

	return GradeD, fmt.Errorf("unknown grade provided: %s", s)
}

// UnmarshalText decodes a grade from its string form.
func (g *Grade) UnmarshalText(text []byte) error {
	parsed, err := ParseGrade(string(text))
	if err != nil {
		return err
	}

	*g = parsed
	return nil
}

// GradeThreshold represents the minimum score of a grade.
type GradeThreshold struct {
	Min   int   `yaml:"min"`
	Grade Grade `yaml:"grade"`
}

// Config represents the scoring tunables.
type Config struct {
	// MaxRSI is the daily rsi above which a setup is eliminated.
	MaxRSI float64 `yaml:"max_rsi"`
	// MaxWeeklyRSI is the weekly rsi above which a setup is eliminated.
	MaxWeeklyRSI float64 `yaml:"max_weekly_rsi"`
	// MinPullbackRSI is the daily rsi below which a pullback setup is eliminated.
	MinPullbackRSI float64 `yaml:"min_pullback_rsi"`
	// Grades lists grade thresholds in descending order of their minimum score.
	Grades []GradeThreshold `yaml:"grades"`
	// RankRRWeight is the ranking weight of a candidate's risk reward.
	RankRRWeight float64 `yaml:"rank_rr_weight"`
	// RankTrendWeight is the ranking weight of a candidate's trend alignment.
	RankTrendWeight float64 `yaml:"rank_trend_weight"`
	// RankDistanceWeight is the ranking penalty per percent of entry distance.
	RankDistanceWeight float64 `yaml:"rank_distance_weight"`
	// RankMaxDistancePct caps the entry distance penalised by ranking.
	RankMaxDistancePct float64 `yaml:"rank_max_distance_pct"`
	// PreferredRR is the risk reward of candidates preferred by ranking.
	PreferredRR float64 `yaml:"preferred_rr"`
	// MinConfidence is the lower confidence clamp.
	MinConfidence float64 `yaml:"min_confidence"`
	// MaxConfidence is the upper confidence clamp.
	MaxConfidence float64 `yaml:"max_confidence"`
	// RankScoreCeiling is the ranking score mapped to the maximum base confidence.
	RankScoreCeiling float64 `yaml:"rank_score_ceiling"`
}

// DefaultConfig returns the default scoring tunables.
func DefaultConfig() *Config {
	return &Config{
		MaxRSI:         72,
		MaxWeeklyRSI:   72,
		MinPullbackRSI: 35,
		Grades: []GradeThreshold{
			{Min: 80, Grade: GradeAPlus},
			{Min: 70, Grade: GradeA},
			{Min: 60, Grade: GradeBPlus},
			{Min: 50, Grade: GradeB},
			{Min: 40, Grade: GradeC},
		},
		RankRRWeight:       0.55,
		RankTrendWeight:    0.35,
		RankDistanceWeight: 0.10,
		RankMaxDistancePct: 5,
		PreferredRR:        1.5,
		MinConfidence:      0.30,
		MaxConfidence:      0.95,
		RankScoreCeiling:   2.5,
	}
}

// GradeFor returns the grade of the provided score.
func (cfg *Config) GradeFor(score int) Grade {
	for _, g := range cfg.Grades {
		if score >= g.Min {
			return g.Grade
		}
	}

	return GradeD
}

// FactorScore represents the points awarded by one factor.
type FactorScore struct {
	Factor    string
	Value     float64
	Available bool
	Points    int
	Max       int
	Reason    string
}

// ScoreResult represents a setup quality score.
type ScoreResult struct {
	Score             int
	Grade             Grade
	Strategy          Strategy
	Breakdown         []FactorScore
	Eliminated        bool
	EliminationReason string
}

// TradeLevels represents the entry, stop and target of the setup being scored.
type TradeLevels struct {
	Direction shared.Direction
	Entry     float64
	StopLoss  float64
	Target    float64
}

// TradeLevelsFrom extracts trade levels from the provided candidate.
func TradeLevelsFrom(c *candidate.Candidate) *TradeLevels {
	if c == nil {
		return nil
	}

	return &TradeLevels{
		Direction: c.Skeleton.Type,
		Entry:     c.Skeleton.Entry,
		StopLoss:  c.Skeleton.StopLoss,
		Target:    c.Skeleton.Target,
	}
}

// ScorerConfig represents the configuration of the setup scorer.
type ScorerConfig struct {
	// Rules represents the scoring tunables.
	Rules *Config
	// Debug logs the factor breakdown of every score when set.
	Debug bool
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// Scorer computes setup quality scores.
type Scorer struct {
	cfg *ScorerConfig
}

// NewScorer initializes a setup scorer.
func NewScorer(cfg *ScorerConfig) *Scorer {
	if cfg == nil {
		cfg = &ScorerConfig{Logger: zerolog.Nop()}
	}
	if cfg.Rules == nil {
		cfg.Rules = DefaultConfig()
	}

	return &Scorer{cfg: cfg}
}

// eliminate checks the hard pre-filter gates, returning the reason of the first one that trips.
func (s *Scorer) eliminate(set indicator.Set, strategy Strategy) (string, bool) {
	rules := s.cfg.Rules

	rsi, hasRSI := set.Get(indicator.RSI)
	weeklyRSI, hasWeeklyRSI := set.Get(indicator.WeeklyRSI)

	switch {
	case hasRSI && rsi > rules.MaxRSI:
		return fmt.Sprintf("too extended: daily rsi %.2f above %.0f", rsi, rules.MaxRSI), true
	case hasWeeklyRSI && weeklyRSI > rules.MaxWeeklyRSI:
		return fmt.Sprintf("weekly overbought: weekly rsi %.2f above %.0f", weeklyRSI,
			rules.MaxWeeklyRSI), true
	case strategy == Pullback && hasRSI && rsi < rules.MinPullbackRSI:
		return fmt.Sprintf("trend may be broken: daily rsi %.2f below %.0f", rsi,
			rules.MinPullbackRSI), true
	default:
		return "", false
	}
}

// factorValue derives the input value of the named factor.
func factorValue(name string, set indicator.Set, trade *TradeLevels, benchmarkReturn1M *float64) (float64, bool) {
	switch name {
	case FactorVolume:
		return set.Get(indicator.VolumeVsAvg)
	case FactorRiskReward:
		if trade == nil {
			return 0, false
		}
		return shared.Round2(candidate.RiskReward(trade.Direction, trade.Entry, trade.StopLoss,
			trade.Target)), true
	case FactorRSIPosition, FactorRSICooling:
		return set.Get(indicator.RSI)
	case FactorWeeklyMove:
		return set.Get(indicator.Return1W)
	case FactorEMA20Proximity:
		return set.Get(indicator.EMA20DistPct)
	case FactorUpside:
		last, ok := set.Price(indicator.Last)
		if !ok || trade == nil {
			return 0, false
		}
		move := trade.Target - last
		if trade.Direction == shared.Sell {
			move = last - trade.Target
		}
		return shared.Round2(move / last * 100), true
	case FactorRelativeStrength:
		ret, ok := set.Get(indicator.Return1M)
		if !ok || benchmarkReturn1M == nil {
			return 0, false
		}
		return shared.Round2(ret - *benchmarkReturn1M), true
	case FactorPriceAccessibility:
		return set.Price(indicator.Last)
	case FactorTrendStructure:
		if _, ok := set.Price(indicator.Last); !ok {
			return 0, false
		}
		switch indicator.DetermineTrend(set) {
		case shared.BullishTrend:
			return 2, true
		case shared.BearishTrend:
			return 0, true
		default:
			return 1, true
		}
	default:
		return 0, false
	}
}

// CalculateSetupScore computes the 0-100 quality score of a setup. Elimination gates are
// evaluated first; an eliminated setup scores 0 with a single breakdown entry.
func (s *Scorer) CalculateSetupScore(set indicator.Set, trade *TradeLevels, benchmarkReturn1M *float64, scanType shared.ScanType) *ScoreResult {
	strategy := StrategyForScanType(scanType)

	if reason, ok := s.eliminate(set, strategy); ok {
		res := &ScoreResult{
			Score:             0,
			Grade:             GradeEliminated,
			Strategy:          strategy,
			Eliminated:        true,
			EliminationReason: reason,
			Breakdown: []FactorScore{{
				Factor:    "elimination",
				Available: true,
				Reason:    reason,
			}},
		}

		if s.cfg.Debug {
			s.cfg.Logger.Debug().Str("strategy", strategy.String()).
				Msgf("setup eliminated: %s", reason)
		}

		return res
	}

	rubric := RubricFor(strategy)
	res := &ScoreResult{
		Strategy:  strategy,
		Breakdown: make([]FactorScore, 0, len(rubric.Factors)),
	}

	for _, f := range rubric.Factors {
		fs := FactorScore{Factor: f.Name, Max: f.Max}

		v, ok := factorValue(f.Name, set, trade, benchmarkReturn1M)
		if ok {
			if band, found := f.Match(v); found {
				fs.Value = v
				fs.Available = true
				fs.Points = band.Points
			}
		}
		fs.Reason = DescribeFactor(f, fs)

		res.Score += fs.Points
		res.Breakdown = append(res.Breakdown, fs)

		if s.cfg.Debug {
			s.cfg.Logger.Debug().Str("strategy", strategy.String()).Str("factor", f.Name).
				Int("points", fs.Points).Int("max", fs.Max).Msg(fs.Reason)
		}
	}

	res.Grade = s.cfg.Rules.GradeFor(res.Score)

	return res
}
