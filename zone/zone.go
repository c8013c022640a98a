package zone

import (
	"github.com/dnldd/swing/indicator"
	"github.com/dnldd/swing/level"
	"github.com/dnldd/swing/shared"
)

const (
	// atrHalfWidth is the zone half width as a multiple of ATR.
	atrHalfWidth = 0.5
	// fallbackHalfWidthPercent is the zone half width as a fraction of the center without ATR.
	fallbackHalfWidthPercent = 0.01
)

// Basis names what an entry zone was anchored on.
const (
	BasedOnEMA20AndPivot = "ema20+pivot"
	BasedOnEMA20         = "ema20"
	BasedOnPivot         = "pivot"
	BasedOnPrice         = "price"
)

// Params represents the inputs of the entry zone. Non-positive or non-finite values are
// treated as unavailable.
type Params struct {
	EMA20        float64
	Pivot        float64
	ATR          float64
	CurrentPrice float64
}

// EntryZone represents the single reconciled entry band of an analysis.
type EntryZone struct {
	Low     float64
	High    float64
	Center  float64
	BasedOn string
}

// Contains reports whether the provided price is inside the zone, bounds included.
func (z *EntryZone) Contains(price float64) bool {
	return price >= z.Low && price <= z.High
}

// ParamsFrom extracts entry zone parameters from an indicator set and its pivots.
func ParamsFrom(set indicator.Set, pivots *level.Pivots) Params {
	params := Params{
		EMA20:        set[indicator.EMA20],
		ATR:          set[indicator.ATR],
		CurrentPrice: set[indicator.Last],
	}
	if pivots != nil {
		params.Pivot = pivots.Pivot
	}

	return params
}

// CalculateEntryZone derives the entry band. It is the only place an entry zone is computed so
// every caller gets identical results for identical inputs. It returns nil when no anchor is
// available.
func CalculateEntryZone(params Params) *EntryZone {
	hasEMA20 := shared.IsValidPrice(params.EMA20)
	hasPivot := shared.IsValidPrice(params.Pivot)

	var center float64
	var basis string
	switch {
	case hasEMA20 && hasPivot:
		center = (params.EMA20 + params.Pivot) / 2
		basis = BasedOnEMA20AndPivot
	case hasEMA20:
		center = params.EMA20
		basis = BasedOnEMA20
	case hasPivot:
		center = params.Pivot
		basis = BasedOnPivot
	case shared.IsValidPrice(params.CurrentPrice):
		center = params.CurrentPrice
		basis = BasedOnPrice
	default:
		return nil
	}

	halfWidth := center * fallbackHalfWidthPercent
	if shared.IsValidPrice(params.ATR) {
		halfWidth = params.ATR * atrHalfWidth
	}

	return &EntryZone{
		Low:     shared.Round2(center - halfWidth),
		High:    shared.Round2(center + halfWidth),
		Center:  shared.Round2(center),
		BasedOn: basis,
	}
}
