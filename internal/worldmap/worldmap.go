// Package worldmap renders an equirectangular world map on a character grid.
// Each cell stands for the coordinate at its centre; selecting a cell is the
// terminal equivalent of clicking a web map.
package worldmap

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/solar-terminal/internal/models"
)

const (
	minWidth  = 24
	minHeight = 8

	landRune     = '▒'
	waterRune    = ' '
	equatorRune  = '·'
	meridianRune = '·'
	markerRune   = '◉'
	cursorRune   = '+'
)

var (
	landStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCF7F"))
	gridStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A90E2"))
	markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D")).Bold(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true).Bold(true)
)

// Map is the map widget state
type Map struct {
	width, height int
	col, row      int
	marker        *models.Position
	land          *LandMask
	raster        [][]bool
}

// New creates a map of the given size in cells with the cursor at 0°, 0°
func New(width, height int, land *LandMask) Map {
	m := Map{land: land}
	m.Resize(width, height)
	m.CenterOn(0, 0)
	return m
}

// Size returns the grid dimensions
func (m Map) Size() (width, height int) {
	return m.width, m.height
}

// Resize changes the grid size, keeping the cursor on the same coordinate
func (m *Map) Resize(width, height int) {
	if width < minWidth {
		width = minWidth
	}
	if height < minHeight {
		height = minHeight
	}
	if width == m.width && height == m.height && m.raster != nil {
		return
	}

	var lat, lng float64
	hadSize := m.width > 0
	if hadSize {
		lat, lng = m.Cursor()
	}

	m.width, m.height = width, height
	m.rasterize()

	if hadSize {
		m.CenterOn(lat, lng)
	}
}

func (m *Map) rasterize() {
	m.raster = make([][]bool, m.height)
	for row := range m.raster {
		m.raster[row] = make([]bool, m.width)
		if m.land == nil {
			continue
		}
		for col := range m.raster[row] {
			lat, lng := m.CellToLatLng(col, row)
			m.raster[row][col] = m.land.Contains(lat, lng)
		}
	}
}

// CellToLatLng returns the coordinate at the centre of a cell
func (m Map) CellToLatLng(col, row int) (lat, lng float64) {
	lng = models.MinLongitude + (float64(col)+0.5)*360/float64(m.width)
	lat = models.MaxLatitude - (float64(row)+0.5)*180/float64(m.height)
	return lat, lng
}

// LatLngToCell returns the cell containing a coordinate
func (m Map) LatLngToCell(lat, lng float64) (col, row int) {
	col = int(math.Floor((lng - models.MinLongitude) / 360 * float64(m.width)))
	row = int(math.Floor((models.MaxLatitude - lat) / 180 * float64(m.height)))
	return clampInt(col, 0, m.width-1), clampInt(row, 0, m.height-1)
}

// Cursor returns the coordinate under the cursor
func (m Map) Cursor() (lat, lng float64) {
	return m.CellToLatLng(m.col, m.row)
}

// CursorCell returns the cursor cell
func (m Map) CursorCell() (col, row int) {
	return m.col, m.row
}

// Move shifts the cursor; it wraps around in longitude and stops at the poles
func (m *Map) Move(dCol, dRow int) {
	m.col = ((m.col+dCol)%m.width + m.width) % m.width
	m.row = clampInt(m.row+dRow, 0, m.height-1)
}

// CenterOn moves the cursor to the cell containing (lat, lng)
func (m *Map) CenterOn(lat, lng float64) {
	m.col, m.row = m.LatLngToCell(lat, lng)
}

// SetCursorCell moves the cursor to a cell, as a mouse click does.
// It reports whether the cell is on the map.
func (m *Map) SetCursorCell(col, row int) bool {
	if col < 0 || row < 0 || col >= m.width || row >= m.height {
		return false
	}
	m.col, m.row = col, row
	return true
}

// SetMarker places the single marker, or removes it when pos is nil
func (m *Map) SetMarker(pos *models.Position) {
	if pos == nil {
		m.marker = nil
		return
	}
	p := *pos
	m.marker = &p
}

// Marker returns the marker position, or nil
func (m Map) Marker() *models.Position {
	return m.marker
}

// View renders the grid. The cursor is only drawn when focused.
func (m Map) View(focused bool) string {
	markerCol, markerRow := -1, -1
	if m.marker != nil {
		markerCol, markerRow = m.LatLngToCell(m.marker.Latitude, m.marker.Longitude)
	}
	equatorRow := m.height / 2
	meridianCol := m.width / 2

	var b strings.Builder
	for row := 0; row < m.height; row++ {
		for col := 0; col < m.width; col++ {
			switch {
			case focused && col == m.col && row == m.row:
				b.WriteString(cursorStyle.Render(string(cursorRune)))
			case col == markerCol && row == markerRow:
				b.WriteString(markerStyle.Render(string(markerRune)))
			case m.raster[row][col]:
				b.WriteString(landStyle.Render(string(landRune)))
			case row == equatorRow:
				b.WriteString(gridStyle.Render(string(equatorRune)))
			case col == meridianCol:
				b.WriteString(gridStyle.Render(string(meridianRune)))
			default:
				b.WriteRune(waterRune)
			}
		}
		if row < m.height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
