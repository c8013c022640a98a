package level

import (
	"github.com/dnldd/swing/shared"
)

const (
	// camarillaFactor is the scale factor of Camarilla levels.
	camarillaFactor = 1.1
)

// Method represents a pivot formula.
type Method int

const (
	Classic Method = iota
	Fibonacci
	Camarilla
)

// String stringifies the provided pivot method.
func (m Method) String() string {
	switch m {
	case Classic:
		return "classic"
	case Fibonacci:
		return "fibonacci"
	case Camarilla:
		return "camarilla"
	default:
		return "unknown"
	}
}

// Pivots represents pivot, resistance and support levels derived from one session.
type Pivots struct {
	Method Method
	Pivot  float64
	R1     float64
	R2     float64
	R3     float64
	S1     float64
	S2     float64
	S3     float64
}

// validSession reports whether the provided session values are all finite.
func validSession(high, low, close float64) bool {
	return shared.IsFinite(high) && shared.IsFinite(low) && shared.IsFinite(close)
}

// round rounds every level of the provided pivots.
func (p *Pivots) round() *Pivots {
	p.Pivot = shared.Round2(p.Pivot)
	p.R1 = shared.Round2(p.R1)
	p.R2 = shared.Round2(p.R2)
	p.R3 = shared.Round2(p.R3)
	p.S1 = shared.Round2(p.S1)
	p.S2 = shared.Round2(p.S2)
	p.S3 = shared.Round2(p.S3)
	return p
}

// ClassicPivots computes floor pivots from the previous session. It returns nil if any input is
// not a finite number.
func ClassicPivots(high, low, close float64) *Pivots {
	if !validSession(high, low, close) {
		return nil
	}

	p := (high + low + close) / 3
	pivots := &Pivots{
		Method: Classic,
		Pivot:  p,
		R1:     2*p - low,
		S1:     2*p - high,
		R2:     p + (high - low),
		S2:     p - (high - low),
		R3:     high + 2*(p-low),
		S3:     low - 2*(high-p),
	}

	return pivots.round()
}

// FibonacciPivots computes pivots spaced by fibonacci ratios of the session range.
func FibonacciPivots(high, low, close float64) *Pivots {
	if !validSession(high, low, close) {
		return nil
	}

	p := (high + low + close) / 3
	r := high - low
	pivots := &Pivots{
		Method: Fibonacci,
		Pivot:  p,
		R1:     p + 0.382*r,
		S1:     p - 0.382*r,
		R2:     p + 0.618*r,
		S2:     p - 0.618*r,
		R3:     p + r,
		S3:     p - r,
	}

	return pivots.round()
}

// CamarillaPivots computes close anchored Camarilla pivots.
func CamarillaPivots(high, low, close float64) *Pivots {
	if !validSession(high, low, close) {
		return nil
	}

	r := (high - low) * camarillaFactor
	pivots := &Pivots{
		Method: Camarilla,
		Pivot:  (high + low + close) / 3,
		R1:     close + r/12,
		S1:     close - r/12,
		R2:     close + r/6,
		S2:     close - r/6,
		R3:     close + r/4,
		S3:     close - r/4,
	}

	return pivots.round()
}

// CalculatePivots computes pivots with the provided method.
func CalculatePivots(method Method, high, low, close float64) *Pivots {
	switch method {
	case Fibonacci:
		return FibonacciPivots(high, low, close)
	case Camarilla:
		return CamarillaPivots(high, low, close)
	default:
		return ClassicPivots(high, low, close)
	}
}
