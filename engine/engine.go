package engine

import (
	"context"
	"sync"

	"github.com/dnldd/swing/alert"
	"github.com/dnldd/swing/candidate"
	"github.com/dnldd/swing/indicator"
	"github.com/dnldd/swing/level"
	"github.com/dnldd/swing/regime"
	"github.com/dnldd/swing/risk"
	"github.com/dnldd/swing/scoring"
	"github.com/dnldd/swing/shared"
	"github.com/dnldd/swing/zone"
	"github.com/rs/zerolog"
)

const (
	// maxWorkers is the maximum number of concurrent analyses.
	maxWorkers = 16
)

type EngineConfig struct {
	// Tunables represents the numeric heuristics of the pipeline. Defaults apply when nil.
	Tunables *Tunables
	// Debug logs the factor breakdown of every setup score.
	Debug bool
	// Logger represents the application logger.
	Logger zerolog.Logger
}

type Engine struct {
	cfg       *EngineConfig
	generator *candidate.Generator
	scorer    *scoring.Scorer
	workers   chan struct{}
	calculate func(cfg *indicator.Config, candles []shared.Candle) (indicator.Set, error)
}

// NewEngine initializes a new analysis engine.
func NewEngine(cfg *EngineConfig) *Engine {
	if cfg == nil {
		cfg = &EngineConfig{Logger: zerolog.Nop()}
	}
	if cfg.Tunables == nil {
		cfg.Tunables = DefaultTunables()
	}

	return &Engine{
		cfg:       cfg,
		generator: candidate.NewGenerator(&cfg.Tunables.Candidate),
		scorer: scoring.NewScorer(&scoring.ScorerConfig{
			Rules:  &cfg.Tunables.Scoring,
			Debug:  cfg.Debug,
			Logger: cfg.Logger,
		}),
		workers:   make(chan struct{}, maxWorkers),
		calculate: indicator.CalculateWithConfig,
	}
}

// Request represents an analysis request for one symbol.
type Request struct {
	Symbol   string
	Candles  []shared.Candle
	ScanType shared.ScanType
	// Benchmark is the optional benchmark index series used for relative strength and regime.
	Benchmark []shared.Candle
	// Sentiment is the optional external sentiment reading.
	Sentiment *scoring.Sentiment
}

// Analysis represents the full outcome of analysing one symbol. Stages that lack their
// prerequisites are left nil rather than failing the analysis.
type Analysis struct {
	Symbol           string
	Error            string
	InsufficientData bool
	LastPrice        float64
	Indicators       indicator.Set
	Trend            shared.Trend
	Health           indicator.Health
	Levels           *level.Levels
	EntryZone        *zone.EntryZone
	Candidates       *candidate.Result
	Ranking          *scoring.Ranking
	Score            *scoring.ScoreResult
	Confidence       *scoring.Confidence
	Regime           *regime.Result
	Risk             *risk.Assessment
	Alerts           []alert.Alert
	Warnings         []string
}

// Card represents the condensed view of a symbol shown in listings.
type Card struct {
	Symbol    string
	Error     string
	LastPrice float64
	Trend     shared.Trend
	EntryZone *zone.EntryZone
	Pivots    *level.Pivots
}

// core represents the stages shared by the card and full analysis paths.
type core struct {
	set    indicator.Set
	trend  shared.Trend
	levels *level.Levels
	pivots *level.Pivots
	zone   *zone.EntryZone
}

// computeCore runs the indicator, trend, level and entry zone stages. Both the card and the
// full analysis go through it so their shared fields always agree.
func (e *Engine) computeCore(candles []shared.Candle) (*core, error) {
	set, err := e.calculate(&e.cfg.Tunables.Indicator, candles)
	if err != nil {
		return nil, err
	}

	c := &core{
		set:    set,
		trend:  indicator.DetermineTrend(set),
		levels: level.Calculate(set),
	}
	if c.levels != nil {
		c.pivots = c.levels.Pivots
	}
	c.zone = zone.CalculateEntryZone(zone.ParamsFrom(set, c.pivots))

	return c, nil
}

// QuickCard computes the condensed view of a symbol.
func (e *Engine) QuickCard(symbol string, candles []shared.Candle) *Card {
	card := &Card{Symbol: symbol, Trend: shared.NeutralTrend}

	c, err := e.computeCore(candles)
	if err != nil {
		card.Error = err.Error()
		return card
	}

	card.LastPrice = c.set[indicator.Last]
	card.Trend = c.trend
	card.EntryZone = c.zone
	card.Pivots = c.pivots

	return card
}

// benchmarkContext derives the regime and one month return of the benchmark series.
func (e *Engine) benchmarkContext(symbol string, candles []shared.Candle) (*regime.Result, *float64) {
	if len(candles) == 0 {
		return &regime.Result{Regime: regime.Unknown}, nil
	}

	reg := regime.CheckCandles(&e.cfg.Tunables.Regime, candles)

	set, err := e.calculate(&e.cfg.Tunables.Indicator, candles)
	if err != nil {
		e.cfg.Logger.Warn().Str("symbol", symbol).Err(err).Msg("benchmark indicators unavailable")
		return reg, nil
	}

	ret, ok := set.Get(indicator.Return1M)
	if !ok {
		return reg, nil
	}

	return reg, &ret
}

// Analyze runs the full pipeline for the provided request. It never panics on bad input;
// indicator failures are reported through the analysis error and short-circuit later stages.
func (e *Engine) Analyze(req Request) *Analysis {
	analysis := &Analysis{
		Symbol:   req.Symbol,
		Trend:    shared.NeutralTrend,
		Alerts:   []alert.Alert{},
		Warnings: []string{},
	}

	c, err := e.computeCore(req.Candles)
	if err != nil {
		e.cfg.Logger.Warn().Str("symbol", req.Symbol).Err(err).Msg("indicator calculation failed")
		analysis.Error = err.Error()
		analysis.InsufficientData = true
		return analysis
	}

	analysis.Indicators = c.set
	analysis.LastPrice = c.set[indicator.Last]
	analysis.Trend = c.trend
	analysis.Health = indicator.CheckDataHealth(c.set)
	analysis.Levels = c.levels
	analysis.EntryZone = c.zone

	analysis.Candidates = e.generator.Generate(c.set, c.pivots, candidate.Options{
		ScanType: req.ScanType,
		Trend:    c.trend,
	})
	analysis.InsufficientData = !analysis.Health.OK || analysis.Candidates.InsufficientData
	if analysis.InsufficientData {
		e.cfg.Logger.Warn().Str("symbol", req.Symbol).
			Strs("missing", analysis.Health.MissingRequired).Msg("insufficient data for analysis")
	}

	analysis.Ranking = e.scorer.PickBestCandidate(analysis.Candidates)
	best := analysis.Ranking.Best

	var benchmarkReturn *float64
	analysis.Regime, benchmarkReturn = e.benchmarkContext(req.Symbol, req.Benchmark)

	analysis.Score = e.scorer.CalculateSetupScore(c.set, scoring.TradeLevelsFrom(best),
		benchmarkReturn, req.ScanType)
	analysis.Confidence = e.scorer.CalculateConfidence(scoring.ConfidenceInput{
		Candidate:  best,
		Indicators: c.set,
		Sentiment:  req.Sentiment,
		Regime:     analysis.Regime.Regime,
	})

	analysis.Alerts = append(analysis.Alerts, alert.CheckEntryZoneProximity(analysis.LastPrice,
		c.zone)...)

	if best != nil {
		analysis.Risk = risk.AssessTradeRisk(best.Skeleton.Entry, best.Skeleton.StopLoss,
			best.Skeleton.Target)

		analysis.Warnings = regime.Advise(best.Skeleton.Type, analysis.Regime.Regime)
		if regime.Conflicts(best.Skeleton.Type, analysis.Regime.Regime) {
			for _, warning := range analysis.Warnings {
				analysis.Alerts = append(analysis.Alerts, alert.Alert{
					Type:       alert.RegimeConflict,
					Severity:   alert.Info,
					Message:    warning,
					Suggestion: "reduce size or wait for the regime to turn",
				})
			}
		}
	}

	return analysis
}

// AnalyzeBatch analyses the provided requests concurrently. Results keep request order; a
// request left unscheduled because the context ended has a nil result.
func (e *Engine) AnalyzeBatch(ctx context.Context, reqs []Request) ([]*Analysis, error) {
	results := make([]*Analysis, len(reqs))

	var wg sync.WaitGroup
schedule:
	for idx := range reqs {
		select {
		case <-ctx.Done():
			break schedule
		case e.workers <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = e.Analyze(reqs[idx])
			<-e.workers
		}(idx)
	}

	wg.Wait()

	return results, ctx.Err()
}

// PositionReview represents the evaluation of an open position.
type PositionReview struct {
	Position risk.Position
	Error    string
	Price    float64
	Status   *alert.PositionStatus
	Trail    *risk.TrailResult
	Alerts   []alert.Alert
}

// ReviewPosition evaluates an open position against its latest candles: profit and loss
// status, trailing stop recommendation and exit alerts.
func (e *Engine) ReviewPosition(pos risk.Position, candles []shared.Candle) *PositionReview {
	review := &PositionReview{Position: pos, Alerts: []alert.Alert{}}

	set, err := e.calculate(&e.cfg.Tunables.Indicator, candles)
	if err != nil {
		e.cfg.Logger.Warn().Str("symbol", pos.Symbol).Err(err).Msg("indicator calculation failed")
		review.Error = err.Error()
		return review
	}

	review.Price = set[indicator.Last]
	review.Status = alert.CheckPositionStatus(alert.StatusInput{
		Position:     pos,
		CurrentPrice: review.Price,
	})
	review.Trail = risk.CalculateTrailingStopWithConfig(&e.cfg.Tunables.Risk, risk.TrailInput{
		Position:     pos,
		CurrentPrice: review.Price,
		ATR:          set[indicator.ATR],
		SwingLow:     set[indicator.SwingLow],
		EMA20:        set[indicator.EMA20],
	})
	review.Alerts = alert.CheckExitConditions(alert.ExitInput{
		Position:     pos,
		CurrentPrice: review.Price,
		ATRPct:       set[indicator.ATRPct],
	})

	return review
}
