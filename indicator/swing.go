package indicator

import "github.com/dnldd/swing/shared"

// LastSwingLow returns the most recent fractal swing low: a low strictly below the lows of the
// wing bars on either side of it.
func LastSwingLow(candles []shared.Candle, wing int) (float64, bool) {
	for i := len(candles) - 1 - wing; i >= wing; i-- {
		current := candles[i].Low
		isPivot := true

		for j := 1; j <= wing; j++ {
			if candles[i-j].Low <= current || candles[i+j].Low <= current {
				isPivot = false
				break
			}
		}

		if isPivot {
			return current, true
		}
	}

	return 0, false
}

// LastSwingHigh returns the most recent fractal swing high.
func LastSwingHigh(candles []shared.Candle, wing int) (float64, bool) {
	for i := len(candles) - 1 - wing; i >= wing; i-- {
		current := candles[i].High
		isPivot := true

		for j := 1; j <= wing; j++ {
			if candles[i-j].High >= current || candles[i+j].High >= current {
				isPivot = false
				break
			}
		}

		if isPivot {
			return current, true
		}
	}

	return 0, false
}
