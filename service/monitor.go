package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dnldd/swing/alert"
	"github.com/dnldd/swing/database"
	"github.com/dnldd/swing/engine"
	"github.com/dnldd/swing/fetch"
	"github.com/dnldd/swing/risk"
	"github.com/dnldd/swing/shared"
	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// DefaultScanSchedule runs the setup scan after the US close on weekdays.
	DefaultScanSchedule = "30 16 * * 1-5"
	// DefaultReviewSchedule runs the position review after the scan.
	DefaultReviewSchedule = "45 16 * * 1-5"
	// defaultLookbackDays is the calendar span of history requested per symbol.
	defaultLookbackDays = 400
)

// NotifyFunc delivers alerts raised for a symbol.
type NotifyFunc func(symbol string, alerts []alert.Alert)

// MonitorConfig represents the configuration of the swing monitor.
type MonitorConfig struct {
	// Symbols are scanned in addition to the stored watchlist.
	Symbols []string
	// Benchmark is the index symbol used for regime and relative strength.
	Benchmark string
	// Fetcher fetches daily candles.
	Fetcher fetch.CandleFetcher
	// Store persists the watchlist, positions and alerts. Optional when symbols are provided.
	Store database.Store
	// Engine is the analysis engine.
	Engine *engine.Engine
	// ScanSchedule is the cron expression of the setup scan.
	ScanSchedule string
	// ReviewSchedule is the cron expression of the position review.
	ReviewSchedule string
	// Location is the timezone the schedules are evaluated in.
	Location *time.Location
	// LookbackDays is the calendar span of history fetched per symbol.
	LookbackDays int
	// AccountSize is the account value used to size qualifying setups.
	AccountSize float64
	// RiskPercent is the share of the account risked per trade, in percent.
	RiskPercent float64
	// MaxPositionValue caps the value of a sized position when positive.
	MaxPositionValue float64
	// Notify delivers raised alerts. Optional.
	Notify NotifyFunc
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *MonitorConfig) Validate() error {
	var errs error

	if cfg.Fetcher == nil {
		errs = errors.Join(errs, fmt.Errorf("candle fetcher cannot be nil"))
	}
	if cfg.Engine == nil {
		errs = errors.Join(errs, fmt.Errorf("analysis engine cannot be nil"))
	}
	if cfg.Store == nil && len(cfg.Symbols) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no symbols or store provided for monitor"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}
	if cfg.AccountSize < 0 {
		errs = errors.Join(errs, fmt.Errorf("account size cannot be negative"))
	}
	if cfg.RiskPercent < 0 || cfg.RiskPercent > 100 {
		errs = errors.Join(errs, fmt.Errorf("risk percent must be within [0, 100], got %.2f",
			cfg.RiskPercent))
	}

	return errs
}

// Stats represents the running counters of the monitor.
type Stats struct {
	Scans     uint64
	Reviews   uint64
	Setups    uint64
	Trails    uint64
	Alerts    uint64
	Failures  uint64
	LastRunID string
}

// Monitor schedules setup scans and open position reviews.
type Monitor struct {
	cfg       *MonitorConfig
	scheduler *gocron.Scheduler
	now       func() time.Time

	scans     *atomic.Uint64
	reviews   *atomic.Uint64
	setups    *atomic.Uint64
	trails    *atomic.Uint64
	alerts    *atomic.Uint64
	failures  *atomic.Uint64
	lastRunID *atomic.String

	// running and wg.Add are guarded by mtx so no job joins the group after Run starts waiting.
	mtx     sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewMonitor initializes a new swing monitor.
func NewMonitor(cfg *MonitorConfig) (*Monitor, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating monitor config: %w", err)
	}

	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.ScanSchedule == "" {
		cfg.ScanSchedule = DefaultScanSchedule
	}
	if cfg.ReviewSchedule == "" {
		cfg.ReviewSchedule = DefaultReviewSchedule
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaultLookbackDays
	}

	m := &Monitor{
		cfg:       cfg,
		scheduler: gocron.NewScheduler(cfg.Location),
		now:       time.Now,
		scans:     atomic.NewUint64(0),
		reviews:   atomic.NewUint64(0),
		setups:    atomic.NewUint64(0),
		trails:    atomic.NewUint64(0),
		alerts:    atomic.NewUint64(0),
		failures:  atomic.NewUint64(0),
		lastRunID: atomic.NewString(""),
	}

	m.scheduler.SingletonModeAll()

	_, err = m.scheduler.Cron(cfg.ScanSchedule).Do(m.scheduledRun, "scan", m.RunScan)
	if err != nil {
		return nil, fmt.Errorf("scheduling scan job: %w", err)
	}

	_, err = m.scheduler.Cron(cfg.ReviewSchedule).Do(m.scheduledRun, "review", m.RunReview)
	if err != nil {
		return nil, fmt.Errorf("scheduling review job: %w", err)
	}

	return m, nil
}

// Stats returns a snapshot of the monitor counters.
func (m *Monitor) Stats() Stats {
	return Stats{
		Scans:     m.scans.Load(),
		Reviews:   m.reviews.Load(),
		Setups:    m.setups.Load(),
		Trails:    m.trails.Load(),
		Alerts:    m.alerts.Load(),
		Failures:  m.failures.Load(),
		LastRunID: m.lastRunID.Load(),
	}
}

// scheduledRun executes a scheduled job while the monitor is running.
func (m *Monitor) scheduledRun(name string, job func(ctx context.Context) error) {
	m.mtx.Lock()
	if !m.running {
		m.mtx.Unlock()
		return
	}
	m.wg.Add(1)
	m.mtx.Unlock()
	defer m.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute*10)
	defer cancel()

	err := job(ctx)
	if err != nil {
		m.failures.Inc()
		m.cfg.Logger.Error().Err(err).Str("job", name).Msg("scheduled job failed")
	}
}

// fetchCandles fetches the lookback window of daily candles for the provided symbol.
func (m *Monitor) fetchCandles(ctx context.Context, symbol string) ([]shared.Candle, error) {
	to := m.now().In(m.cfg.Location)
	from := to.AddDate(0, 0, -m.cfg.LookbackDays)

	return m.cfg.Fetcher.FetchDailyHistorical(ctx, symbol, from, to)
}

// watchlist merges the stored watchlist with the configured symbols.
func (m *Monitor) watchlist(ctx context.Context) ([]database.WatchlistEntry, error) {
	var entries []database.WatchlistEntry
	seen := make(map[string]bool)

	if m.cfg.Store != nil {
		stored, err := m.cfg.Store.FetchWatchlist(ctx)
		if err != nil {
			return nil, err
		}

		for _, entry := range stored {
			if seen[entry.Symbol] {
				continue
			}
			seen[entry.Symbol] = true
			entries = append(entries, entry)
		}
	}

	for _, symbol := range m.cfg.Symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		entries = append(entries, database.WatchlistEntry{Symbol: symbol})
	}

	return entries, nil
}

// raise persists and delivers the provided alerts.
func (m *Monitor) raise(ctx context.Context, symbol string, positionID string, alerts []alert.Alert) {
	if len(alerts) == 0 {
		return
	}

	m.alerts.Add(uint64(len(alerts)))

	if m.cfg.Store != nil {
		err := m.cfg.Store.PersistAlerts(ctx, symbol, positionID, alerts)
		if err != nil {
			m.failures.Inc()
			m.cfg.Logger.Error().Err(err).Str("symbol", symbol).Msg("persisting alerts")
		}
	}

	if m.cfg.Notify != nil {
		m.cfg.Notify(symbol, alerts)
	}
}

// RunScan analyses every watchlist symbol and reports qualifying setups.
func (m *Monitor) RunScan(ctx context.Context) error {
	runID := uuid.New().String()
	m.lastRunID.Store(runID)
	m.scans.Inc()

	logger := m.cfg.Logger.With().Str("run", runID).Str("job", "scan").Logger()

	entries, err := m.watchlist(ctx)
	if err != nil {
		return fmt.Errorf("fetching watchlist: %w", err)
	}

	var benchmark []shared.Candle
	if m.cfg.Benchmark != "" {
		benchmark, err = m.fetchCandles(ctx, m.cfg.Benchmark)
		if err != nil {
			m.failures.Inc()
			logger.Warn().Err(err).Str("benchmark", m.cfg.Benchmark).Msg("benchmark unavailable")
		}
	}

	reqs := make([]engine.Request, 0, len(entries))
	for _, entry := range entries {
		candles, err := m.fetchCandles(ctx, entry.Symbol)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			m.failures.Inc()
			logger.Error().Err(err).Str("symbol", entry.Symbol).Msg("fetching candles")
			continue
		}

		reqs = append(reqs, engine.Request{
			Symbol:    entry.Symbol,
			Candles:   candles,
			ScanType:  entry.ScanType,
			Benchmark: benchmark,
		})
	}

	analyses, err := m.cfg.Engine.AnalyzeBatch(ctx, reqs)
	if err != nil {
		return fmt.Errorf("analysing watchlist: %w", err)
	}

	for _, analysis := range analyses {
		if analysis == nil {
			continue
		}

		if analysis.Error != "" || analysis.InsufficientData {
			logger.Info().Str("symbol", analysis.Symbol).Str("error", analysis.Error).
				Msg("skipped, insufficient data")
			continue
		}

		best := analysis.Ranking.Best
		if best != nil && best.OK {
			m.setups.Inc()

			size := risk.CalculatePositionSize(risk.SizeInput{
				AccountSize:      m.cfg.AccountSize,
				RiskPercent:      m.cfg.RiskPercent,
				Entry:            best.Skeleton.Entry,
				StopLoss:         best.Skeleton.StopLoss,
				MaxPositionValue: m.cfg.MaxPositionValue,
			})

			logger.Info().
				Str("symbol", analysis.Symbol).
				Str("setup", best.Name).
				Str("grade", analysis.Score.Grade.String()).
				Float64("entry", best.Skeleton.Entry).
				Float64("stop", best.Skeleton.StopLoss).
				Float64("target", best.Skeleton.Target).
				Float64("rr", best.Skeleton.RiskReward).
				Float64("confidence", analysis.Confidence.Value).
				Int("qty", size.Quantity).
				Msg(analysis.Ranking.Reason)
		}

		m.raise(ctx, analysis.Symbol, "", analysis.Alerts)
	}

	logger.Info().Int("symbols", len(analyses)).Msg("scan complete")

	return nil
}

// RunReview evaluates every open position, raising stops that should trail and alerts that
// need attention.
func (m *Monitor) RunReview(ctx context.Context) error {
	if m.cfg.Store == nil {
		return nil
	}

	runID := uuid.New().String()
	m.lastRunID.Store(runID)
	m.reviews.Inc()

	logger := m.cfg.Logger.With().Str("run", runID).Str("job", "review").Logger()

	positions, err := m.cfg.Store.FetchOpenPositions(ctx, m.now())
	if err != nil {
		return fmt.Errorf("fetching open positions: %w", err)
	}

	for _, pos := range positions {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		candles, err := m.fetchCandles(ctx, pos.Symbol)
		if err != nil {
			m.failures.Inc()
			logger.Error().Err(err).Str("symbol", pos.Symbol).Msg("fetching candles")
			continue
		}

		review := m.cfg.Engine.ReviewPosition(pos, candles)
		if review.Error != "" {
			m.failures.Inc()
			logger.Warn().Str("symbol", pos.Symbol).Str("error", review.Error).Msg("review failed")
			continue
		}

		if review.Trail != nil && review.Trail.ShouldTrail {
			err := m.cfg.Store.UpdateStopLoss(ctx, pos.ID, review.Trail.NewSL,
				review.Trail.Method.String())
			if err != nil {
				m.failures.Inc()
				logger.Error().Err(err).Str("symbol", pos.Symbol).Msg("updating stop loss")
			} else {
				m.trails.Inc()
				logger.Info().Str("symbol", pos.Symbol).Float64("from", pos.CurrentSL).
					Float64("to", review.Trail.NewSL).Msg(review.Trail.Reason)
			}
		}

		m.raise(ctx, pos.Symbol, pos.ID, review.Alerts)
	}

	logger.Info().Int("positions", len(positions)).Msg("review complete")

	return nil
}

// Run handles the lifecycle processes of the monitor.
func (m *Monitor) Run(ctx context.Context) {
	m.mtx.Lock()
	m.running = true
	m.mtx.Unlock()
	m.scheduler.StartAsync()

	<-ctx.Done()

	m.mtx.Lock()
	m.running = false
	m.mtx.Unlock()
	m.scheduler.Stop()
	m.wg.Wait()
}
