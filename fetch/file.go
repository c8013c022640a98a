package fetch

import (
	"fmt"
	"os"

	"github.com/dnldd/swing/shared"
)

// LoadCandlesFile loads and normalizes candles from the json file at the provided path.
func LoadCandlesFile(path string) ([]shared.Candle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candles from file with path '%s': %w", path, err)
	}

	candles, err := ParseDailyCandles(data)
	if err != nil {
		return nil, fmt.Errorf("parsing candles file: %w", err)
	}

	return shared.NormalizeCandles(candles), nil
}
