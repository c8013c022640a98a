package scoring

import (
	"math"

	"github.com/dnldd/swing/candidate"
	"github.com/dnldd/swing/indicator"
	"github.com/dnldd/swing/regime"
	"github.com/dnldd/swing/shared"
)

const (
	// elevatedATRPct is the atr percentage above which a setup is considered volatile.
	elevatedATRPct = 4.0
	// lowSentimentConfidence is the sentiment confidence below which sentiment is weak.
	lowSentimentConfidence = 0.5
	// lowVolumeRatio is the volume ratio below which conviction is lacking.
	lowVolumeRatio = 0.8
	// highVolumeRatio is the volume ratio from which conviction is strong.
	highVolumeRatio = 1.5
	// poorRR is the risk reward below which a setup is unattractive.
	poorRR = 1.0
	// volatileRR is the risk reward below which a volatile setup is penalised.
	volatileRR = 1.5
	// strongRR is the risk reward from which a setup is attractive.
	strongRR = 2.5
	// distantEntryPct is the entry distance above which an entry is considered far.
	distantEntryPct = 3.0
	// closeEntryPct is the entry distance from which an entry is considered near.
	closeEntryPct = 1.0
)

// Sentiment represents an external directional sentiment reading.
type Sentiment struct {
	Sentiment  shared.Sentiment
	Confidence float64
}

// ConfidenceInput represents the inputs of a confidence calculation.
type ConfidenceInput struct {
	// Candidate is the ranked best candidate; its Score.Total is the ranking score.
	Candidate  *candidate.Candidate
	Indicators indicator.Set
	Sentiment  *Sentiment
	Regime     regime.Regime
}

// Adjustment represents one applied confidence adjustment.
type Adjustment struct {
	Reason string
	Delta  float64
}

// Confidence represents a setup confidence in [MinConfidence, MaxConfidence].
type Confidence struct {
	Value       float64
	Base        float64
	Adjustments []Adjustment
}

// CalculateConfidence computes setup confidence using the default tunables.
func CalculateConfidence(in ConfidenceInput) *Confidence {
	return calculateConfidence(DefaultConfig(), in)
}

// CalculateConfidence computes setup confidence using the scorer's tunables.
func (s *Scorer) CalculateConfidence(in ConfidenceInput) *Confidence {
	return calculateConfidence(s.cfg.Rules, in)
}

// calculateConfidence linearly maps the ranking score onto the confidence range, applies the
// ordered adjustments and clamps the result.
func calculateConfidence(cfg *Config, in ConfidenceInput) *Confidence {
	conf := &Confidence{Adjustments: []Adjustment{}}
	if in.Candidate == nil {
		conf.Base = cfg.MinConfidence
		conf.Value = cfg.MinConfidence
		return conf
	}

	c := in.Candidate
	span := cfg.MaxConfidence - cfg.MinConfidence
	ratio := 0.0
	if cfg.RankScoreCeiling > 0 {
		ratio = math.Max(0, math.Min(c.Score.Total/cfg.RankScoreCeiling, 1))
	}
	conf.Base = shared.Round2(cfg.MinConfidence + ratio*span)

	direction := c.Skeleton.Type
	rr := c.Skeleton.RiskReward
	distance := c.Score.DistancePct
	atrPct, hasATRPct := in.Indicators.Get(indicator.ATRPct)
	volume, hasVolume := in.Indicators.Get(indicator.VolumeVsAvg)

	var sentimentConflict, sentimentAlign, weakSentiment bool
	if in.Sentiment != nil {
		switch in.Sentiment.Sentiment {
		case shared.Bullish:
			sentimentConflict = direction == shared.Sell
			sentimentAlign = direction == shared.Buy
		case shared.Bearish:
			sentimentConflict = direction == shared.Buy
			sentimentAlign = direction == shared.Sell
		}
		weakSentiment = in.Sentiment.Confidence < lowSentimentConfidence
	}

	rules := []struct {
		applies bool
		reason  string
		delta   float64
	}{
		{sentimentConflict, "sentiment conflict", -0.10},
		{hasATRPct && atrPct > elevatedATRPct && rr < volatileRR, "volatile with poor risk reward", -0.08},
		{in.Sentiment != nil && weakSentiment, "low sentiment confidence", -0.03},
		{hasVolume && volume < lowVolumeRatio, "low volume", -0.05},
		{rr < poorRR, "poor risk reward", -0.07},
		{distance > distantEntryPct, "distant entry", -0.05},
		{sentimentAlign, "sentiment alignment", 0.05},
		{rr >= strongRR, "strong risk reward", 0.05},
		{hasVolume && volume >= highVolumeRatio, "high volume", 0.04},
		{distance <= closeEntryPct, "close entry", 0.03},
		{c.Score.TrendAlign >= 1, "strong trend alignment", 0.04},
		{regime.Conflicts(direction, in.Regime), "regime conflict", -0.05},
		{regime.Aligns(direction, in.Regime), "regime alignment", 0.02},
	}

	value := conf.Base
	for _, rule := range rules {
		if !rule.applies {
			continue
		}

		value += rule.delta
		conf.Adjustments = append(conf.Adjustments, Adjustment{Reason: rule.reason, Delta: rule.delta})
	}

	conf.Value = shared.Round2(math.Max(cfg.MinConfidence, math.Min(value, cfg.MaxConfidence)))

	return conf
}
