package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dnldd/swing/alert"
	"github.com/dnldd/swing/database"
	"github.com/dnldd/swing/engine"
	"github.com/dnldd/swing/risk"
	"github.com/dnldd/swing/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog"
)

var start = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// linearCandles creates n daily candles with closes rising by one from base.
func linearCandles(n int, base float64) []shared.Candle {
	candles := make([]shared.Candle, n)
	for idx := range n {
		close := base + float64(idx)
		candles[idx] = shared.Candle{
			Timestamp: start.AddDate(0, 0, idx),
			Open:      close - 0.5,
			High:      close + 1,
			Low:       close - 1,
			Close:     close,
			Volume:    1000,
		}
	}

	return candles
}

type testFetcher struct {
	mtx     sync.Mutex
	candles map[string][]shared.Candle
	calls   []string
}

func (f *testFetcher) FetchDailyHistorical(ctx context.Context, symbol string, from time.Time, to time.Time) ([]shared.Candle, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.calls = append(f.calls, symbol)
	candles, ok := f.candles[symbol]
	if !ok {
		return nil, fmt.Errorf("no data for %s", symbol)
	}

	return candles, nil
}

type stopUpdate struct {
	PositionID string
	NewSL      float64
	Method     string
}

type testStore struct {
	mtx       sync.Mutex
	watchlist []database.WatchlistEntry
	positions []risk.Position
	updates   []stopUpdate
	alerts    map[string][]alert.Alert
}

func (s *testStore) FetchWatchlist(ctx context.Context) ([]database.WatchlistEntry, error) {
	return s.watchlist, nil
}

func (s *testStore) FetchOpenPositions(ctx context.Context, now time.Time) ([]risk.Position, error) {
	return s.positions, nil
}

func (s *testStore) UpdateStopLoss(ctx context.Context, positionID string, newSL float64, method string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.updates = append(s.updates, stopUpdate{PositionID: positionID, NewSL: newSL, Method: method})
	return nil
}

func (s *testStore) PersistAlerts(ctx context.Context, symbol string, positionID string, alerts []alert.Alert) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.alerts == nil {
		s.alerts = make(map[string][]alert.Alert)
	}
	s.alerts[symbol] = append(s.alerts[symbol], alerts...)
	return nil
}

func setupMonitor(t *testing.T, fetcher *testFetcher, store database.Store, symbols []string) *Monitor {
	logger := zerolog.Nop()
	m, err := NewMonitor(&MonitorConfig{
		Symbols:     symbols,
		Benchmark:   "SPY",
		Fetcher:     fetcher,
		Store:       store,
		Engine:      engine.NewEngine(&engine.EngineConfig{Logger: logger}),
		AccountSize: 100000,
		RiskPercent: 1,
		Logger:      &logger,
	})
	assert.NoError(t, err)
	m.now = func() time.Time { return start.AddDate(0, 0, 300) }

	return m
}

func TestMonitorConfigValidate(t *testing.T) {
	logger := zerolog.Nop()
	eng := engine.NewEngine(&engine.EngineConfig{Logger: logger})
	fetcher := &testFetcher{}

	tests := []struct {
		name    string
		cfg     MonitorConfig
		wantErr []string
	}{
		{
			name: "valid config with symbols",
			cfg: MonitorConfig{
				Symbols: []string{"AAPL"},
				Fetcher: fetcher,
				Engine:  eng,
				Logger:  &logger,
			},
		},
		{
			name: "valid config with store",
			cfg: MonitorConfig{
				Store:   &testStore{},
				Fetcher: fetcher,
				Engine:  eng,
				Logger:  &logger,
			},
		},
		{
			name: "missing collaborators",
			cfg:  MonitorConfig{},
			wantErr: []string{
				"candle fetcher cannot be nil",
				"analysis engine cannot be nil",
				"no symbols or store provided for monitor",
				"logger cannot be nil",
			},
		},
		{
			name: "bad risk inputs",
			cfg: MonitorConfig{
				Symbols:     []string{"AAPL"},
				Fetcher:     fetcher,
				Engine:      eng,
				Logger:      &logger,
				AccountSize: -1,
				RiskPercent: 120,
			},
			wantErr: []string{
				"account size cannot be negative",
				"risk percent must be within [0, 100], got 120.00",
			},
		},
	}

	for _, test := range tests {
		err := test.cfg.Validate()
		if len(test.wantErr) == 0 {
			if err != nil {
				t.Errorf("%s: expected no error, got %v", test.name, err)
			}
			continue
		}

		if err == nil {
			t.Errorf("%s: expected error(s) %v, got none", test.name, test.wantErr)
			continue
		}
		for _, want := range test.wantErr {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("%s: expected error to contain %q, got %v", test.name, want, err)
			}
		}
	}
}

func TestNewMonitorBadSchedule(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewMonitor(&MonitorConfig{
		Symbols:      []string{"AAPL"},
		Fetcher:      &testFetcher{},
		Engine:       engine.NewEngine(&engine.EngineConfig{Logger: logger}),
		ScanSchedule: "not a cron expression",
		Logger:       &logger,
	})
	assert.Error(t, err)
}

func TestMonitorWatchlist(t *testing.T) {
	store := &testStore{
		watchlist: []database.WatchlistEntry{
			{Symbol: "AAPL", ScanType: shared.BreakoutScan},
			{Symbol: "MSFT", ScanType: shared.PullbackScan},
			{Symbol: "AAPL", ScanType: shared.RangeScan},
		},
	}
	m := setupMonitor(t, &testFetcher{}, store, []string{" msft", "nvda", ""})

	entries, err := m.watchlist(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, entries, []database.WatchlistEntry{
		{Symbol: "AAPL", ScanType: shared.BreakoutScan},
		{Symbol: "MSFT", ScanType: shared.PullbackScan},
		{Symbol: "NVDA", ScanType: shared.UnknownScan},
	})
}

func TestRunScan(t *testing.T) {
	fetcher := &testFetcher{
		candles: map[string][]shared.Candle{
			"SPY":  linearCandles(260, 400),
			"AAPL": linearCandles(260, 100),
			"TINY": linearCandles(5, 10),
		},
	}
	store := &testStore{
		watchlist: []database.WatchlistEntry{
			{Symbol: "AAPL", ScanType: shared.MomentumScan},
			{Symbol: "TINY"},
			{Symbol: "GONE"},
		},
	}

	var notified []string
	m := setupMonitor(t, fetcher, store, nil)
	m.cfg.Notify = func(symbol string, alerts []alert.Alert) {
		notified = append(notified, symbol)
	}

	err := m.RunScan(context.Background())
	assert.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, stats.Scans, uint64(1))
	assert.Equal(t, stats.Reviews, uint64(0))
	// The missing symbol is the only failure.
	assert.Equal(t, stats.Failures, uint64(1))
	assert.NotEqual(t, stats.LastRunID, "")
	assert.Equal(t, fetcher.calls, []string{"SPY", "AAPL", "TINY", "GONE"})

	// Short histories never raise alerts.
	_, ok := store.alerts["TINY"]
	assert.False(t, ok)
	for _, symbol := range notified {
		assert.True(t, len(store.alerts[symbol]) > 0)
	}
}

func TestRunScanMissingBenchmark(t *testing.T) {
	fetcher := &testFetcher{
		candles: map[string][]shared.Candle{
			"AAPL": linearCandles(260, 100),
		},
	}
	m := setupMonitor(t, fetcher, nil, []string{"AAPL"})

	err := m.RunScan(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, m.Stats().Failures, uint64(1))
}

func TestRunScanCancelled(t *testing.T) {
	fetcher := &testFetcher{
		candles: map[string][]shared.Candle{
			"SPY":  linearCandles(260, 400),
			"AAPL": linearCandles(260, 100),
		},
	}
	m := setupMonitor(t, fetcher, nil, []string{"AAPL"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.RunScan(ctx)
	assert.Error(t, err)
}

func TestRunReview(t *testing.T) {
	fetcher := &testFetcher{
		candles: map[string][]shared.Candle{
			"LIN": linearCandles(60, 100),
		},
	}
	store := &testStore{
		positions: []risk.Position{
			{
				ID:            "a1",
				Symbol:        "LIN",
				ActualEntry:   120,
				CurrentSL:     110,
				CurrentTarget: 200,
				Qty:           10,
			},
			{
				ID:          "b2",
				Symbol:      "GONE",
				ActualEntry: 50,
				CurrentSL:   45,
				Qty:         10,
			},
		},
	}
	m := setupMonitor(t, fetcher, store, nil)

	err := m.RunReview(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, store.updates, []stopUpdate{
		{PositionID: "a1", NewSL: 156, Method: risk.ATRTrail.String()},
	})

	stats := m.Stats()
	assert.Equal(t, stats.Reviews, uint64(1))
	assert.Equal(t, stats.Trails, uint64(1))
	assert.Equal(t, stats.Failures, uint64(1))
	assert.Equal(t, stats.Alerts, uint64(0))
}

func TestRunReviewWithoutStore(t *testing.T) {
	m := setupMonitor(t, &testFetcher{}, nil, []string{"AAPL"})

	err := m.RunReview(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, m.Stats().Reviews, uint64(0))
}

func TestMonitorGracefulShutdown(t *testing.T) {
	m := setupMonitor(t, &testFetcher{}, &testStore{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ensure the monitor can be run and gracefully terminated.
	time.AfterFunc(time.Millisecond*200, func() {
		cancel()
	})
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	<-done
}

func TestScheduledRunLifecycle(t *testing.T) {
	m := setupMonitor(t, &testFetcher{}, &testStore{}, nil)

	var calls int
	job := func(ctx context.Context) error {
		calls++
		return fmt.Errorf("job failed")
	}

	// Ensure jobs are skipped before the monitor runs.
	m.scheduledRun("scan", job)
	assert.Equal(t, calls, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	isRunning := func() bool {
		m.mtx.Lock()
		defer m.mtx.Unlock()
		return m.running
	}
	deadline := time.Now().Add(time.Second * 5)
	for !isRunning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	assert.True(t, isRunning())

	m.scheduledRun("scan", job)
	assert.Equal(t, calls, 1)
	assert.Equal(t, m.Stats().Failures, uint64(1))

	// Ensure jobs racing shutdown either complete before Run returns or are skipped.
	var wg sync.WaitGroup
	var mtx sync.Mutex
	var late int
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.scheduledRun("review", func(ctx context.Context) error {
				mtx.Lock()
				late++
				mtx.Unlock()
				return nil
			})
		}()
	}
	cancel()
	<-done
	wg.Wait()
	assert.True(t, late <= 8)

	m.scheduledRun("scan", job)
	assert.Equal(t, calls, 1)
	assert.False(t, isRunning())
}
