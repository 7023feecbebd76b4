package models

import "time"

// MonthsPerYear is the number of monthly figures in a result
const MonthsPerYear = 12

// IrradiationResult is the outcome of one successful estimation query.
// It is replaced wholesale by the next successful query.
type IrradiationResult struct {
	Position          Position
	Panel             PanelConfig
	YearlyIrradiation float64                // kWh/m²/year
	Monthly           [MonthsPerYear]float64 // January first
	OptimalTilt       float64                // degrees
	OptimalAzimuth    float64                // 0 or 180
	Loss              float64                // shading loss at calculation time, percent
	Warning           string                 // plausibility warning, empty when plausible
	CalculatedAt      time.Time
}

// HasWarning reports whether the result carries a plausibility warning
func (r *IrradiationResult) HasWarning() bool {
	return r != nil && r.Warning != ""
}
