// Package units provides the velocity units trajectory files may be expressed in
package units

import "strings"

// Unit constants
const (
	MPS   = "mps"   // metres per second
	KMPS  = "kmps"  // kilometres per second
	KMPH  = "kmph"  // kilometres per hour
	AUDAY = "auday" // astronomical units per day
)

// SpeedOfLightMPS is the speed of light in vacuum, in m/s.
const SpeedOfLightMPS = 299792458.0

// AstronomicalUnit is the IAU 2012 astronomical unit, in metres.
const AstronomicalUnit = 149597870700.0

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, KMPS, KMPH, AUDAY}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ConvertSpeed converts a speed from metres per second to the target units.
// Unknown units are treated as m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case KMPS:
		return speedMPS / 1000
	case KMPH:
		return speedMPS * 3.6
	case AUDAY:
		return speedMPS * 86400 / AstronomicalUnit
	default:
		return speedMPS
	}
}

// SpeedOfLight returns c expressed in the given units.
func SpeedOfLight(unit string) float64 {
	return ConvertSpeed(SpeedOfLightMPS, unit)
}
