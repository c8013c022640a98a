package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the configuration struct for the service.
type Config struct {
	// Symbols represents the symbols scanned in addition to the stored watchlist.
	Symbols []string
	// Benchmark is the index symbol used for regime and relative strength.
	Benchmark string
	// FMPAPIkey is the FMP service API Key.
	FMPAPIKey string
	// DBEndpoint is the rqlite endpoint. The watchlist and position review require it.
	DBEndpoint string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string
	// ScanSchedule is the cron expression of the setup scan.
	ScanSchedule string
	// ReviewSchedule is the cron expression of the position review.
	ReviewSchedule string
	// Timezone is the timezone schedules run in.
	Timezone string
	// AccountSize is the account value used to size setups.
	AccountSize float64
	// RiskPercent is the share of the account risked per trade, in percent.
	RiskPercent float64
	// MaxPositionValue caps the value of a sized position when positive.
	MaxPositionValue float64
	// TunablesPath is the optional yaml file overriding the engine tunables.
	TunablesPath string
	// CandlesFile analyses a single candles file and exits.
	CandlesFile string
	// ScanType is the scan classification applied to the candles file.
	ScanType string
	// Debug enables debug logging of score breakdowns.
	Debug bool

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.AccountSize < 0 {
		errs = errors.Join(errs, fmt.Errorf("account size cannot be negative"))
	}
	if cfg.RiskPercent < 0 || cfg.RiskPercent > 100 {
		errs = errors.Join(errs, fmt.Errorf("risk percent must be within [0, 100]"))
	}
	if cfg.MaxPositionValue < 0 {
		errs = errors.Join(errs, fmt.Errorf("max position value cannot be negative"))
	}

	// A candles file analysis needs no market data or storage access.
	if cfg.CandlesFile != "" {
		return errs
	}

	if len(cfg.Symbols) == 0 && cfg.DBEndpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("no symbols or database endpoint provided for monitor"))
	}
	if cfg.FMPAPIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp api key cannot be an empty string"))
	}
	if cfg.Timezone != "" {
		_, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("loading timezone %s: %w", cfg.Timezone, err))
		}
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Float64:
		var def float64
		if defValue != "" {
			def, _ = strconv.ParseFloat(defValue, 64)
		}
		flag.Float64Var(value.(*float64), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	flags := []struct {
		name  string
		value interface{}
		usage string
	}{
		{"symbols", &cfg.Symbols, "the scanned symbols"},
		{"benchmark", &cfg.Benchmark, "the benchmark index symbol"},
		{"fmpapikey", &cfg.FMPAPIKey, "the FMP api key"},
		{"dbendpoint", &cfg.DBEndpoint, "the rqlite endpoint"},
		{"dbuser", &cfg.DBUser, "the database user"},
		{"dbpass", &cfg.DBPass, "the database user pass"},
		{"scanschedule", &cfg.ScanSchedule, "the cron expression of the setup scan"},
		{"reviewschedule", &cfg.ReviewSchedule, "the cron expression of the position review"},
		{"timezone", &cfg.Timezone, "the timezone schedules run in"},
		{"accountsize", &cfg.AccountSize, "the account size used to size setups"},
		{"riskpercent", &cfg.RiskPercent, "the percent of the account risked per trade"},
		{"maxpositionvalue", &cfg.MaxPositionValue, "the maximum value of a position"},
		{"tunables", &cfg.TunablesPath, "the engine tunables yaml file"},
		{"candlesfile", &cfg.CandlesFile, "analyse the provided candles file and exit"},
		{"scantype", &cfg.ScanType, "the scan type of the candles file"},
		{"debug", &cfg.Debug, "the debug logging flag"},
	}

	// Register command line arguments using loaded environment variables as defaults.
	for _, f := range flags {
		err = cfg.registerFlag(f.name, f.value, f.usage)
		if err != nil {
			return err
		}
	}

	// Parse command-line flags.
	flag.Parse()

	return cfg.Validate()
}
