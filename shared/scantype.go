package shared

import "strings"

// ScanType represents the scan classification a symbol was surfaced by.
type ScanType int

const (
	UnknownScan ScanType = iota
	BreakoutScan
	PullbackScan
	MomentumScan
	ConsolidationScan
	MeanReversionScan
	RangeScan
)

// String stringifies the provided scan type.
func (s ScanType) String() string {
	switch s {
	case BreakoutScan:
		return "BREAKOUT"
	case PullbackScan:
		return "PULLBACK"
	case MomentumScan:
		return "MOMENTUM"
	case ConsolidationScan:
		return "CONSOLIDATION"
	case MeanReversionScan:
		return "MEAN_REVERSION"
	case RangeScan:
		return "RANGE"
	default:
		return "UNKNOWN"
	}
}

// ParseScanType parses the provided scan type label. Unrecognized labels map to UnknownScan.
func ParseScanType(label string) ScanType {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "BREAKOUT":
		return BreakoutScan
	case "PULLBACK":
		return PullbackScan
	case "MOMENTUM":
		return MomentumScan
	case "CONSOLIDATION":
		return ConsolidationScan
	case "MEAN_REVERSION", "MEANREVERSION":
		return MeanReversionScan
	case "RANGE":
		return RangeScan
	default:
		return UnknownScan
	}
}
