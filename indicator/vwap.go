package indicator

import (
	"github.com/dnldd/swing/shared"
)

// vwapAccumulator accumulates the volume weighted average price over a window of candles.
type vwapAccumulator struct {
	typicalPriceVolume float64
	volume             float64
}

// update cummulatively updates the accumulator with the provided candle.
func (v *vwapAccumulator) update(candle *shared.Candle) {
	v.typicalPriceVolume += candle.TypicalPrice() * candle.Volume
	v.volume += candle.Volume
}

// value returns the current volume weighted average price.
func (v *vwapAccumulator) value() (float64, bool) {
	if v.volume == 0 {
		return 0, false
	}

	return v.typicalPriceVolume / v.volume, true
}

// RollingVWAP returns the volume weighted average price of the provided candles.
func RollingVWAP(candles []shared.Candle) (float64, bool) {
	var acc vwapAccumulator
	for idx := range candles {
		acc.update(&candles[idx])
	}

	return acc.value()
}
