package models

import "fmt"

// Latitude and longitude bounds in degrees
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Position is a point on the globe selected by the user
type Position struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Valid reports whether both coordinates are inside their ranges
func (p Position) Valid() bool {
	return p.Latitude >= MinLatitude && p.Latitude <= MaxLatitude &&
		p.Longitude >= MinLongitude && p.Longitude <= MaxLongitude
}

// Northern reports whether the position is north of the equator.
// The equator itself counts as southern.
func (p Position) Northern() bool {
	return p.Latitude > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%.5f, %.5f", p.Latitude, p.Longitude)
}
