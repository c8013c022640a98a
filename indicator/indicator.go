package indicator

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dnldd/swing/shared"
)

// Indicator names. A Set only carries the names it could compute.
const (
	Last         = "last"
	Open         = "open"
	High         = "high"
	Low          = "low"
	Volume       = "volume"
	PrevHigh     = "prev_high"
	PrevLow      = "prev_low"
	PrevClose    = "prev_close"
	EMA20        = "ema20"
	EMA50        = "ema50"
	EMA200       = "ema200"
	SMA20        = "sma20"
	SMA50        = "sma50"
	SMA200       = "sma200"
	RSI          = "rsi"
	WeeklyRSI    = "weekly_rsi"
	ATR          = "atr"
	ATRPct       = "atr_pct"
	VolumeAvg20  = "volume_avg_20"
	VolumeVsAvg  = "volume_vs_avg"
	High20D      = "high_20d"
	Low20D       = "low_20d"
	Return1M     = "return_1m"
	Return1W     = "return_1w"
	MACD         = "macd"
	MACDSignal   = "macd_signal"
	MACDHist     = "macd_hist"
	BBUpper      = "bb_upper"
	BBMiddle     = "bb_middle"
	BBLower      = "bb_lower"
	VWAP20D      = "vwap_20d"
	SwingLow     = "swing_low"
	SwingHigh    = "swing_high"
	EMA20DistPct = "ema20_dist_pct"
	BarCount     = "bars"
)

// Minimum-bar gates, keyed the way they appear in configuration.
const (
	gatePrev      = "prev"
	gateEMA20     = "ema20"
	gateEMA50     = "ema50"
	gateEMA200    = "ema200"
	gateSMA20     = "sma20"
	gateSMA50     = "sma50"
	gateSMA200    = "sma200"
	gateRSI       = "rsi"
	gateWeeklyRSI = "weekly_rsi"
	gateATR       = "atr"
	gateMACD      = "macd"
	gateBollinger = "bollinger"
	gateVolumeAvg = "volume_avg"
	gateRange     = "range_20d"
	gateReturn1M  = "return_1m"
	gateReturn1W  = "return_1w"
	gateVWAP      = "vwap_20d"
	gateSwing     = "swing"
)

const (
	// rsiPeriod is the lookback period for RSI.
	rsiPeriod = 14
	// atrPeriod is the lookback period for ATR.
	atrPeriod = 14
	// rangePeriod is the lookback period for swing extremes, average volume and rolling vwap.
	rangePeriod = 20
	// monthBars is the number of bars back used for the one month return.
	monthBars = 22
	// weekBars is the number of bars back used for the one week return.
	weekBars = 5
	// swingWing is the number of bars required on either side of a fractal swing point.
	swingWing = 2
)

// ErrNoCandleData is returned when no usable candle remains after normalization.
var ErrNoCandleData = errors.New("no valid candle data provided")

// Set is a flat mapping of indicator name to value. Names absent from the set could not be
// computed from the available history; they are never defaulted to zero.
type Set map[string]float64

// Get returns the named indicator and whether it was computed.
func (s Set) Get(name string) (float64, bool) {
	v, ok := s[name]
	return v, ok
}

// Has reports whether the named indicator was computed.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Price returns the named indicator when it is a usable price.
func (s Set) Price(name string) (float64, bool) {
	v, ok := s[name]
	if !ok || !shared.IsValidPrice(v) {
		return 0, false
	}

	return v, true
}

// Names returns the sorted names of the computed indicators.
func (s Set) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// put stores the provided value rounded to two decimals, skipping non-finite values.
func (s Set) put(name string, value float64) {
	if !shared.IsFinite(value) {
		return
	}

	s[name] = shared.Round2(value)
}

// Config represents the indicator calculator configuration.
type Config struct {
	// MinBars maps an indicator gate to the minimum number of bars it needs. An entry can
	// raise a gate freely but can only lower it as far as the gate's structural floor, so
	// only gates whose default sits above the floor (macd: 35 over 34) can be lowered.
	MinBars map[string]int `yaml:"min_bars"`
}

// DefaultConfig returns a fresh default indicator configuration.
func DefaultConfig() *Config {
	return &Config{
		MinBars: map[string]int{
			gatePrev:      2,
			gateEMA20:     20,
			gateEMA50:     50,
			gateEMA200:    200,
			gateSMA20:     20,
			gateSMA50:     50,
			gateSMA200:    200,
			gateRSI:       rsiPeriod + 1,
			gateATR:       atrPeriod + 1,
			gateWeeklyRSI: rsiPeriod + 1,
			gateMACD:      35,
			gateBollinger: rangePeriod,
			gateVolumeAvg: rangePeriod + 1,
			gateRange:     rangePeriod,
			gateReturn1M:  monthBars + 1,
			gateReturn1W:  weekBars + 1,
			gateVWAP:      rangePeriod,
			gateSwing:     2*swingWing + 1,
		},
	}
}

// floorBars holds the structural minimum bars of every gate, the fewest bars its routine can
// compute from or index into. Defaults may sit above a floor, as the MACD gate does.
var floorBars = map[string]int{
	gatePrev:      2,
	gateEMA20:     20,
	gateEMA50:     50,
	gateEMA200:    200,
	gateSMA20:     20,
	gateSMA50:     50,
	gateSMA200:    200,
	gateRSI:       rsiPeriod + 1,
	gateATR:       atrPeriod + 1,
	gateWeeklyRSI: rsiPeriod + 1,
	gateMACD:      34,
	gateBollinger: rangePeriod,
	gateVolumeAvg: rangePeriod + 1,
	gateRange:     rangePeriod,
	gateReturn1M:  monthBars + 1,
	gateReturn1W:  weekBars + 1,
	gateVWAP:      rangePeriod,
	gateSwing:     2*swingWing + 1,
}

// minBars returns the minimum bars for the provided gate. A configured value below the
// gate's structural floor is raised to the floor.
func (cfg *Config) minBars(gate string) int {
	return max(cfg.MinBars[gate], floorBars[gate])
}

// series represents the column form of a candle sequence.
type series struct {
	opens   []float64
	highs   []float64
	lows    []float64
	closes  []float64
	volumes []float64
}

// newSeries splits the provided candles into columns.
func newSeries(candles []shared.Candle) *series {
	s := &series{
		opens:   make([]float64, len(candles)),
		highs:   make([]float64, len(candles)),
		lows:    make([]float64, len(candles)),
		closes:  make([]float64, len(candles)),
		volumes: make([]float64, len(candles)),
	}

	for idx := range candles {
		s.opens[idx] = candles[idx].Open
		s.highs[idx] = candles[idx].High
		s.lows[idx] = candles[idx].Low
		s.closes[idx] = candles[idx].Close
		s.volumes[idx] = candles[idx].Volume
	}

	return s
}

// Calculate computes the indicator set for the provided candles using the default configuration.
func Calculate(candles []shared.Candle) (Set, error) {
	return CalculateWithConfig(DefaultConfig(), candles)
}

// CalculateWithConfig computes the indicator set for the provided candles. The candles are
// normalized first, so any ordering is accepted. A panic raised by an underlying statistical
// routine is recovered and returned as an error.
func CalculateWithConfig(cfg *Config, raw []shared.Candle) (set Set, err error) {
	candles := shared.NormalizeCandles(raw)
	if len(candles) == 0 {
		return nil, ErrNoCandleData
	}

	defer func() {
		if r := recover(); r != nil {
			set = nil
			err = fmt.Errorf("computing indicators: %v", r)
		}
	}()

	n := len(candles)
	s := newSeries(candles)
	set = make(Set)

	last := s.closes[n-1]
	set.put(Last, last)
	set.put(Open, s.opens[n-1])
	set.put(High, s.highs[n-1])
	set.put(Low, s.lows[n-1])
	set.put(Volume, s.volumes[n-1])
	set[BarCount] = float64(n)

	if n >= cfg.minBars(gatePrev) {
		prev := candles[n-2]
		set.put(PrevHigh, prev.High)
		set.put(PrevLow, prev.Low)
		set.put(PrevClose, prev.Close)
	}

	averages := []struct {
		name   string
		gate   string
		period int
		fn     func([]float64, int) (float64, bool)
	}{
		{EMA20, gateEMA20, 20, EMA},
		{EMA50, gateEMA50, 50, EMA},
		{EMA200, gateEMA200, 200, EMA},
		{SMA20, gateSMA20, 20, SMA},
		{SMA50, gateSMA50, 50, SMA},
		{SMA200, gateSMA200, 200, SMA},
	}
	for _, avg := range averages {
		if n < cfg.minBars(avg.gate) {
			continue
		}
		if v, ok := avg.fn(s.closes, avg.period); ok {
			set.put(avg.name, v)
		}
	}

	if ema20, ok := set[EMA20]; ok && ema20 != 0 {
		set.put(EMA20DistPct, shared.PercentChange(ema20, last))
	}

	if n >= cfg.minBars(gateRSI) {
		if v, ok := RSIValue(s.closes, rsiPeriod); ok {
			set.put(RSI, v)
		}
	}

	weekly := weeklyCloses(candles)
	if len(weekly) >= cfg.minBars(gateWeeklyRSI) {
		if v, ok := RSIValue(weekly, rsiPeriod); ok {
			set.put(WeeklyRSI, v)
		}
	}

	if n >= cfg.minBars(gateATR) {
		if atr, ok := ATRValue(s.highs, s.lows, s.closes, atrPeriod); ok {
			set.put(ATR, atr)
			set.put(ATRPct, atr/last*100)
		}
	}

	if n >= cfg.minBars(gateVolumeAvg) {
		window := s.volumes[n-1-rangePeriod : n-1]
		avg := mean(window)
		if avg > 0 {
			set.put(VolumeAvg20, avg)
			set.put(VolumeVsAvg, s.volumes[n-1]/avg)
		}
	}

	if n >= cfg.minBars(gateRange) {
		set.put(High20D, slices.Max(s.highs[n-rangePeriod:]))
		set.put(Low20D, slices.Min(s.lows[n-rangePeriod:]))
	}

	if n >= cfg.minBars(gateReturn1M) {
		set.put(Return1M, shared.PercentChange(s.closes[n-1-monthBars], last))
	}

	if n >= cfg.minBars(gateReturn1W) {
		set.put(Return1W, shared.PercentChange(s.closes[n-1-weekBars], last))
	}

	if n >= cfg.minBars(gateMACD) {
		macd, signal, hist := MACDValues(s.closes)
		set.put(MACD, macd)
		set.put(MACDSignal, signal)
		set.put(MACDHist, hist)
	}

	if n >= cfg.minBars(gateBollinger) {
		upper, middle, lower := BollingerValues(s.closes, rangePeriod, 2)
		set.put(BBUpper, upper)
		set.put(BBMiddle, middle)
		set.put(BBLower, lower)
	}

	if n >= cfg.minBars(gateVWAP) {
		if vwap, ok := RollingVWAP(candles[n-rangePeriod:]); ok {
			set.put(VWAP20D, vwap)
		}
	}

	if n >= cfg.minBars(gateSwing) {
		window := candles[max(0, n-rangePeriod):]
		if low, ok := LastSwingLow(window, swingWing); ok {
			set.put(SwingLow, low)
		}
		if high, ok := LastSwingHigh(window, swingWing); ok {
			set.put(SwingHigh, high)
		}
	}

	return set, nil
}

// mean returns the arithmetic mean of the provided values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
