package shared

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DateLayout is the format layout for parsing daily dates.
	DateLayout = "2006-01-02"
	// DateTimeLayout is the format layout for parsing dates with a time component.
	DateTimeLayout = "2006-01-02 15:04:05"
	// millisecondThreshold is the unix timestamp above which values are read as milliseconds.
	millisecondThreshold = 1e12
)

var (
	timestampKeys = []string{"timestamp", "time", "date", "t"}
	openKeys      = []string{"open", "o"}
	highKeys      = []string{"high", "h"}
	lowKeys       = []string{"low", "l"}
	closeKeys     = []string{"close", "c"}
	volumeKeys    = []string{"volume", "v"}
)

// ParseCandles parses candles from the provided json data. The payload must be an array whose
// elements are either arrays of the form [timestamp, open, high, low, close, volume] or objects.
// Elements without a usable close are skipped. The result is not normalized.
func ParseCandles(data []byte) ([]Candle, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid candle json payload")
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("expected a json array of candles, got %s", root.Type.String())
	}

	return ParseCandleResults(root.Array())
}

// ParseCandleResults parses candles from the provided json elements.
func ParseCandleResults(data []gjson.Result) ([]Candle, error) {
	candles := make([]Candle, 0, len(data))
	for idx := range data {
		candle, ok, err := parseCandle(data[idx])
		if err != nil {
			return nil, fmt.Errorf("parsing candle at index %d: %w", idx, err)
		}
		if !ok {
			continue
		}

		candles = append(candles, candle)
	}

	return candles, nil
}

// parseCandle parses a single array or object form candle.
func parseCandle(el gjson.Result) (Candle, bool, error) {
	var candle Candle
	var ts gjson.Result

	switch {
	case el.IsArray():
		fields := el.Array()
		if len(fields) < 5 {
			return candle, false, nil
		}

		ts = fields[0]
		candle.Open = fields[1].Float()
		candle.High = fields[2].Float()
		candle.Low = fields[3].Float()
		candle.Close = fields[4].Float()
		if len(fields) > 5 {
			candle.Volume = fields[5].Float()
		}
	case el.IsObject():
		ts = lookup(el, timestampKeys)
		candle.Open = lookup(el, openKeys).Float()
		candle.High = lookup(el, highKeys).Float()
		candle.Low = lookup(el, lowKeys).Float()
		candle.Close = lookup(el, closeKeys).Float()
		candle.Volume = lookup(el, volumeKeys).Float()
	default:
		return candle, false, nil
	}

	if !IsValidPrice(candle.Close) {
		return candle, false, nil
	}

	date, err := parseTimestamp(ts)
	if err != nil {
		return candle, false, err
	}

	candle.Timestamp = date

	return candle, true, nil
}

// lookup returns the first present value among the provided keys.
func lookup(el gjson.Result, keys []string) gjson.Result {
	for _, key := range keys {
		res := el.Get(key)
		if res.Exists() {
			return res
		}
	}

	return gjson.Result{}
}

// parseTimestamp parses unix seconds, unix milliseconds or date strings. A missing timestamp
// yields the zero time.
func parseTimestamp(ts gjson.Result) (time.Time, error) {
	switch ts.Type {
	case gjson.Null:
		return time.Time{}, nil
	case gjson.Number:
		return fromUnix(ts.Float()), nil
	case gjson.String:
		str := strings.TrimSpace(ts.String())
		if str == "" {
			return time.Time{}, nil
		}

		if num, err := strconv.ParseFloat(str, 64); err == nil {
			return fromUnix(num), nil
		}

		for _, layout := range []string{DateLayout, DateTimeLayout, time.RFC3339} {
			date, err := time.Parse(layout, str)
			if err == nil {
				return date.UTC(), nil
			}
		}

		return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", str)
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type: %s", ts.Type.String())
	}
}

// fromUnix converts unix seconds or milliseconds into a UTC time.
func fromUnix(value float64) time.Time {
	if value > millisecondThreshold {
		return time.UnixMilli(int64(value)).UTC()
	}

	return time.Unix(int64(value), 0).UTC()
}
