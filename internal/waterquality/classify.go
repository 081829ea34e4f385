package waterquality

import (
	"fmt"
	"strconv"
	"strings"
)

// AlertLevel classifies a reading's overall severity.
type AlertLevel string

const (
	LevelNormal   AlertLevel = "normal"
	LevelWarning  AlertLevel = "warning"
	LevelCritical AlertLevel = "critical"
)

// Thresholds matching the embedded device's own firmware constants, so the
// server and the device always agree on what counts as an alert.
const (
	// TDSThreshold is the maximum acceptable total-dissolved-solids
	// concentration in ppm.
	TDSThreshold = 500.0

	// TurbidityThreshold is the minimum acceptable turbidity sensor voltage.
	// The sensor outputs LOWER voltage for murkier water, so readings below
	// this value indicate turbid water.
	TurbidityThreshold = 2.32

	// PHLow and PHHigh bound the WHO safe pH range, inclusive.
	PHLow  = 6.5
	PHHigh = 8.5
)

// Flag names for individual threshold violations.
const (
	FlagHighTDS      = "high_tds"
	FlagTurbidWater  = "turbid_water"
	FlagPHOutOfRange = "ph_out_of_range"
)

// Flags returns the set of violated thresholds for a reading, in a fixed
// order. An empty result means all parameters are within safe bounds.
func Flags(turbidity, tds, ph float64) []string {
	var flags []string
	if tds > TDSThreshold {
		flags = append(flags, FlagHighTDS)
	}
	if turbidity < TurbidityThreshold {
		flags = append(flags, FlagTurbidWater)
	}
	if ph < PHLow || ph > PHHigh {
		flags = append(flags, FlagPHOutOfRange)
	}
	return flags
}

// Classify maps raw sensor values to an overall alert level. The rule is
// count-based, not a severity ranking: zero violated thresholds is normal,
// exactly one is a warning, two or more is critical.
func Classify(turbidity, tds, ph float64) AlertLevel {
	switch n := len(Flags(turbidity, tds, ph)); {
	case n == 0:
		return LevelNormal
	case n >= 2:
		return LevelCritical
	default:
		return LevelWarning
	}
}

// Describe renders a human-readable summary of which thresholds a reading
// violated, using the same constants and boundary semantics as Classify.
func Describe(turbidity, tds, ph float64) string {
	var parts []string
	if tds > TDSThreshold {
		parts = append(parts, fmt.Sprintf("High TDS (%s ppm)", trimFloat(tds)))
	}
	if turbidity < TurbidityThreshold {
		parts = append(parts, fmt.Sprintf("Turbid water (%sV)", trimFloat(turbidity)))
	}
	if ph < PHLow || ph > PHHigh {
		parts = append(parts, fmt.Sprintf("pH out of range (%s)", trimFloat(ph)))
	}
	if len(parts) == 0 {
		return "All parameters normal"
	}
	return strings.Join(parts, ", ")
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
