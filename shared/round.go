package shared

import (
	"github.com/shopspring/decimal"
)

// Round2 rounds the provided value to two decimal places, half away from zero, on value*100.
// Non-finite values are returned unchanged.
func Round2(v float64) float64 {
	if !IsFinite(v) {
		return v
	}

	return decimal.NewFromFloat(v * 100).Round(0).Shift(-2).InexactFloat64()
}

// PercentChange returns the percentage change from base to value.
func PercentChange(base float64, value float64) float64 {
	if base == 0 {
		return 0
	}

	return (value - base) / base * 100
}
