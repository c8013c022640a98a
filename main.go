package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dnldd/swing/alert"
	"github.com/dnldd/swing/database"
	"github.com/dnldd/swing/engine"
	"github.com/dnldd/swing/fetch"
	"github.com/dnldd/swing/risk"
	"github.com/dnldd/swing/service"
	"github.com/dnldd/swing/shared"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

// analyseFile analyses the configured candles file and prints the report.
func analyseFile(cfg *Config, eng *engine.Engine) error {
	candles, err := fetch.LoadCandlesFile(cfg.CandlesFile)
	if err != nil {
		return err
	}

	analysis := eng.Analyze(engine.Request{
		Symbol:   cfg.CandlesFile,
		Candles:  candles,
		ScanType: shared.ParseScanType(cfg.ScanType),
	})

	rep := buildReport(analysis, risk.SizeInput{
		AccountSize:      cfg.AccountSize,
		RiskPercent:      cfg.RiskPercent,
		MaxPositionValue: cfg.MaxPositionValue,
	})
	out, err := marshalReport(rep)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	fmt.Println(string(out))

	return nil
}

// runMonitor runs the scheduled scan and review until the context is cancelled.
func runMonitor(ctx context.Context, cfg *Config, eng *engine.Engine, logger zerolog.Logger) error {
	loc := time.UTC
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("loading timezone: %w", err)
		}
	}

	fmp, err := fetch.NewFMPClient(&fetch.FMPConfig{APIKey: cfg.FMPAPIKey, BaseURL: fetch.BaseURL})
	if err != nil {
		return fmt.Errorf("creating fmp client: %w", err)
	}

	var store database.Store
	if cfg.DBEndpoint != "" {
		dbLogger := logger.With().Str("component", "database").Logger()
		db, err := database.NewDatabase(ctx, &database.DatabaseConfig{
			Endpoint: cfg.DBEndpoint,
			User:     cfg.DBUser,
			Pass:     cfg.DBPass,
			Logger:   &dbLogger,
		})
		if err != nil {
			return fmt.Errorf("creating database: %w", err)
		}
		defer db.Close()

		store = db
	}

	alertLogger := logger.With().Str("component", "alerts").Logger()
	notify := func(symbol string, alerts []alert.Alert) {
		for _, a := range alerts {
			evt := alertLogger.Info()
			if a.ActionRequired {
				evt = alertLogger.Warn()
			}
			evt.Str("symbol", symbol).Str("type", a.Type.String()).
				Str("severity", a.Severity.String()).Str("suggestion", a.Suggestion).Msg(a.Message)
		}
	}

	monitorLogger := logger.With().Str("component", "monitor").Logger()
	monitor, err := service.NewMonitor(&service.MonitorConfig{
		Symbols:          cfg.Symbols,
		Benchmark:        cfg.Benchmark,
		Fetcher:          fmp,
		Store:            store,
		Engine:           eng,
		ScanSchedule:     cfg.ScanSchedule,
		ReviewSchedule:   cfg.ReviewSchedule,
		Location:         loc,
		AccountSize:      cfg.AccountSize,
		RiskPercent:      cfg.RiskPercent,
		MaxPositionValue: cfg.MaxPositionValue,
		Notify:           notify,
		Logger:           &monitorLogger,
	})
	if err != nil {
		return fmt.Errorf("creating monitor: %w", err)
	}

	monitor.Run(ctx)

	stats := monitor.Stats()
	logger.Info().Uint64("scans", stats.Scans).Uint64("reviews", stats.Reviews).
		Uint64("setups", stats.Setups).Uint64("failures", stats.Failures).Msg("monitor stopped")

	return nil
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Error().Err(err).Msg("loading config")
		return
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := log.With().Str("service", "swing").Logger()

	tunables := engine.DefaultTunables()
	if cfg.TunablesPath != "" {
		tunables, err = engine.LoadTunables(cfg.TunablesPath)
		if err != nil {
			logger.Error().Err(err).Msg("loading tunables")
			return
		}
	}

	eng := engine.NewEngine(&engine.EngineConfig{
		Tunables: tunables,
		Debug:    cfg.Debug,
		Logger:   logger.With().Str("component", "engine").Logger(),
	})

	if cfg.CandlesFile != "" {
		err = analyseFile(&cfg, eng)
		if err != nil {
			logger.Error().Err(err).Msg("analysing candles file")
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleTermination(ctx, cancel)

	err = runMonitor(ctx, &cfg, eng, logger)
	if err != nil {
		logger.Error().Err(err).Msg("running monitor")
	}
}
