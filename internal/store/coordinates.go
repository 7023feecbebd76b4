package store

import (
	"math"
	"strconv"
	"strings"

	"github.com/ngmaloney/solar-terminal/internal/models"
)

// coordinateDecimals is the precision used when a map click fills the text fields
const coordinateDecimals = 5

// Coordinates holds the selected position and the raw lat/lng text fields
type Coordinates struct {
	position *models.Position
	LatText  string
	LngText  string
}

// Position returns the selected position, or nil before the first selection
func (c Coordinates) Position() *models.Position {
	if c.position == nil {
		return nil
	}
	p := *c.position
	return &p
}

// SetFromMapClick overwrites the position and both text fields
func (c *Coordinates) SetFromMapClick(lat, lng float64) {
	c.position = &models.Position{Latitude: lat, Longitude: lng}
	c.LatText = strconv.FormatFloat(lat, 'f', coordinateDecimals, 64)
	c.LngText = strconv.FormatFloat(lng, 'f', coordinateDecimals, 64)
}

// SetFromTextEntry stores the raw text and replaces the position only when
// both fields parse and are in range. It reports whether the position changed.
func (c *Coordinates) SetFromTextEntry(latText, lngText string) bool {
	c.LatText = latText
	c.LngText = lngText

	lat, ok := parseCoordinate(latText)
	if !ok {
		return false
	}
	lng, ok := parseCoordinate(lngText)
	if !ok {
		return false
	}

	pos := models.Position{Latitude: lat, Longitude: lng}
	if !pos.Valid() {
		return false
	}
	c.position = &pos
	return true
}

// parseCoordinate accepts plain decimal numbers only. ParseFloat would also
// take hex floats and underscore separators.
func parseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
