package shared

// Trend represents the daily trend classification of a market.
type Trend int

const (
	NeutralTrend Trend = iota
	BullishTrend
	BearishTrend
)

// String stringifies the provided trend.
func (t Trend) String() string {
	switch t {
	case NeutralTrend:
		return "NEUTRAL"
	case BullishTrend:
		return "BULLISH"
	case BearishTrend:
		return "BEARISH"
	default:
		return "UNKNOWN"
	}
}

// Direction represents the direction of a trade.
type Direction int

const (
	Buy Direction = iota
	Sell
)

// String stringifies the provided direction.
func (d Direction) String() string {
	switch d {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "unknown"
	}
}
