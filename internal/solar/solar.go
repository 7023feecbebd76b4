// Package solar interprets irradiation figures: the latitude based tilt and
// azimuth recommendation, plausibility checks and chart scaling.
package solar

import (
	"fmt"
	"math"
	"time"

	"github.com/ngmaloney/solar-terminal/internal/models"
)

// Plausible yearly irradiation range in kWh/m²/year
const (
	MinPlausibleYearly = 800.0
	MaxPlausibleYearly = 2500.0
)

// Azimuths of the two recommended orientations
const (
	AzimuthNorth = 0.0
	AzimuthSouth = 180.0
)

// Recommendation is the heuristic optimal orientation for a latitude
type Recommendation struct {
	Tilt    float64
	Azimuth float64
}

// Recommend derives the optimal orientation from latitude alone.
// Tilt matches the absolute latitude; panels face the equator.
func Recommend(latitude float64) Recommendation {
	azimuth := AzimuthNorth
	if latitude > 0 {
		azimuth = AzimuthSouth
	}
	return Recommendation{
		Tilt:    math.Abs(latitude),
		Azimuth: azimuth,
	}
}

// TiltImprovement compares the chosen tilt with the optimal one.
// When both differ after rounding to whole degrees it returns the absolute
// difference in degrees, which is shown as an improvement percentage.
func TiltImprovement(optimalTilt, chosenTilt float64) (float64, bool) {
	if math.Round(optimalTilt) == math.Round(chosenTilt) {
		return 0, false
	}
	return math.Abs(chosenTilt - optimalTilt), true
}

// PlausibilityWarning returns a user facing warning when the yearly figure
// falls outside the plausible range, or "" otherwise.
func PlausibilityWarning(yearly float64) string {
	if yearly >= MinPlausibleYearly && yearly <= MaxPlausibleYearly {
		return ""
	}
	return fmt.Sprintf("Yearly irradiation of %.0f kWh/m² is outside the expected range of %.0f–%.0f kWh/m². Please double-check the location and panel settings.",
		yearly, MinPlausibleYearly, MaxPlausibleYearly)
}

// SeasonMonths returns the summer and winter months for a hemisphere
func SeasonMonths(latitude float64) (summer, winter time.Month) {
	if latitude > 0 {
		return time.June, time.December
	}
	return time.December, time.June
}

// SeasonalAnomaly reports whether the summer month does not exceed the
// winter month for the hemisphere of latitude.
func SeasonalAnomaly(latitude float64, monthly [models.MonthsPerYear]float64) bool {
	summer, winter := SeasonMonths(latitude)
	return monthly[summer-1] <= monthly[winter-1]
}

// RelativeMonthly scales each month against the strongest month, so the
// maximum becomes 1. All zeros stay zero.
func RelativeMonthly(monthly [models.MonthsPerYear]float64) [models.MonthsPerYear]float64 {
	var max float64
	for _, v := range monthly {
		if v > max {
			max = v
		}
	}

	var rel [models.MonthsPerYear]float64
	if max <= 0 {
		return rel
	}
	for i, v := range monthly {
		if v > 0 {
			rel[i] = v / max
		}
	}
	return rel
}

// CompassLabel names the cardinal or intercardinal direction of an azimuth
func CompassLabel(azimuth float64) string {
	labels := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	a := math.Mod(azimuth, 360)
	if a < 0 {
		a += 360
	}
	idx := int(math.Round(a/45)) % len(labels)
	return labels[idx]
}
