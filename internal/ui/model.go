package ui

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/ngmaloney/solar-terminal/internal/geocoding"
	"github.com/ngmaloney/solar-terminal/internal/models"
	"github.com/ngmaloney/solar-terminal/internal/pvgis"
	"github.com/ngmaloney/solar-terminal/internal/store"
	"github.com/ngmaloney/solar-terminal/internal/worldmap"
)

// Focus identifies the control receiving keyboard input
type Focus int

const (
	FocusMap       Focus = iota // World map cursor
	FocusLat                    // Latitude text entry
	FocusLng                    // Longitude text entry
	FocusSearch                 // Place search
	FocusTilt                   // Tilt slider
	FocusAzimuth                // Azimuth slider
	FocusShading                // Shading loss slider
	FocusCalculate              // Calculate button
	focusCount
)

// Zone ids for mouse hit testing
const (
	mapZoneID       = "worldmap"
	calculateZoneID = "calculate"
)

// User facing messages
const (
	noLocationNotice = "Please select a location first: click the map, press Enter on it, or type coordinates."
	apiErrorText     = "The irradiation service returned an error. Please try again."
	fetchErrorText   = "Could not fetch irradiation data. Please check your connection and try again."
)

// Slider step sizes
const (
	smallStep  = 1.0
	bigStep    = 10.0
	mapBigStep = 5
)

var zoneOnce sync.Once

// Model represents the application's state
type Model struct {
	width   int
	height  int
	focus   Focus
	keys    keyMap
	help    help.Model
	onStart []tea.Cmd

	// Application state: position, panel, result, query in flight
	store store.Store

	// Map
	worldMap worldmap.Map

	// Inputs
	latInput    textinput.Model
	lngInput    textinput.Model
	searchInput textinput.Model
	slider      progress.Model
	spinner     spinner.Model

	// Collaborators
	estimator pvgis.Estimator
	locator   geocoding.Locator

	// Place search
	searching    bool
	searchStatus string

	notice string
}

// NewModel creates a new application model. locator and land may be nil.
func NewModel(estimator pvgis.Estimator, locator geocoding.Locator, panel models.PanelConfig, land *worldmap.LandMask) Model {
	zoneOnce.Do(zone.NewGlobal)

	lat := textinput.New()
	lat.Placeholder = "e.g. 51.16570"
	lat.CharLimit = 24
	lat.Width = 14

	lng := textinput.New()
	lng.Placeholder = "e.g. 10.45150"
	lng.CharLimit = 24
	lng.Width = 14

	search := textinput.New()
	search.Placeholder = "City or address"
	search.CharLimit = 100
	search.Width = 24

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return Model{
		focus:       FocusMap,
		keys:        defaultKeyMap(),
		help:        help.New(),
		store:       store.New(panel),
		worldMap:    worldmap.New(72, 18, land),
		latInput:    lat,
		lngInput:    lng,
		searchInput: search,
		slider: progress.New(
			progress.WithSolidFill(string(colorPrimary)),
			progress.WithoutPercentage(),
			progress.WithWidth(24),
		),
		spinner:   s,
		estimator: estimator,
		locator:   locator,
	}
}

// EnterCoordinates types coordinates into the text fields, as a user would
func (m *Model) EnterCoordinates(latText, lngText string) bool {
	m.latInput.SetValue(latText)
	m.lngInput.SetValue(lngText)
	return m.applyTextEntry()
}

// SelectPosition selects a point as a map click does
func (m *Model) SelectPosition(lat, lng float64) {
	m.store.Coords.SetFromMapClick(lat, lng)
	m.latInput.SetValue(m.store.Coords.LatText)
	m.lngInput.SetValue(m.store.Coords.LngText)
	m.worldMap.CenterOn(lat, lng)
	m.worldMap.SetMarker(m.store.Coords.Position())
	m.notice = ""
}

// CalculateOnStart makes Init trigger a calculation
func (m *Model) CalculateOnStart() {
	m.onStart = append(m.onStart, func() tea.Msg { return CalculateMsg{} })
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(append([]tea.Cmd{textinput.Blink}, m.onStart...)...)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeMap()
		return m, nil

	case CalculateMsg:
		return m.calculate()

	case calculatedMsg:
		m.store.Complete(msg.id, msg.result, msg.err)
		return m, nil

	case placeFoundMsg:
		m.searching = false
		if msg.err != nil {
			log.Printf("place search %q failed: %v", msg.query, msg.err)
			m.searchStatus = fmt.Sprintf("No place found for %q", msg.query)
			return m, nil
		}
		m.SelectPosition(msg.location.Latitude, msg.location.Longitude)
		m.searchStatus = msg.location.Name
		return m, nil

	case spinner.TickMsg:
		if !m.store.Loading() && !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other component messages go to the focused input
	return m.updateFocusedInput(msg)
}

// handleKey routes keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	textFocused := m.focusIsText()

	switch {
	case key.Matches(msg, m.keys.Quit) && (msg.Type == tea.KeyCtrlC || !textFocused):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Calculate):
		return m.calculate()
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % focusCount)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Help) && !textFocused:
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.focus {
	case FocusMap:
		return m.handleMapKey(msg)
	case FocusLat, FocusLng:
		return m.handleCoordinateInput(msg)
	case FocusSearch:
		return m.handleSearchInput(msg)
	case FocusTilt, FocusAzimuth, FocusShading:
		return m.handleSliderKey(msg)
	case FocusCalculate:
		if key.Matches(msg, m.keys.Select) {
			return m.calculate()
		}
	}
	return m, nil
}

// handleMapKey moves the map cursor; Enter selects the cell under it
func (m Model) handleMapKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.worldMap.Move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.worldMap.Move(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.worldMap.Move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.worldMap.Move(1, 0)
	case key.Matches(msg, m.keys.FastUp):
		m.worldMap.Move(0, -mapBigStep)
	case key.Matches(msg, m.keys.FastDown):
		m.worldMap.Move(0, mapBigStep)
	case key.Matches(msg, m.keys.FastLeft):
		m.worldMap.Move(-mapBigStep, 0)
	case key.Matches(msg, m.keys.FastRight):
		m.worldMap.Move(mapBigStep, 0)
	case key.Matches(msg, m.keys.Select):
		m.clickMap()
	}
	return m, nil
}

// handleCoordinateInput edits the lat/lng fields and applies valid pairs
func (m Model) handleCoordinateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Select) {
		m.setFocus(m.focus + 1)
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	if m.focus == FocusLat {
		m.latInput, cmd = m.latInput.Update(msg)
	} else {
		m.lngInput, cmd = m.lngInput.Update(msg)
	}
	m.applyTextEntry()
	return m, cmd
}

// handleSearchInput edits the place query; Enter starts the search
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Select) {
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" || m.searching || m.locator == nil {
			return m, nil
		}
		m.searching = true
		m.searchStatus = ""
		return m, tea.Batch(m.spinner.Tick, searchPlace(m.locator, query))
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleSliderKey adjusts the focused slider
func (m Model) handleSliderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var delta float64
	switch {
	case key.Matches(msg, m.keys.FastLeft):
		delta = -bigStep
	case key.Matches(msg, m.keys.FastRight):
		delta = bigStep
	case key.Matches(msg, m.keys.Left):
		delta = -smallStep
	case key.Matches(msg, m.keys.Right):
		delta = smallStep
	case key.Matches(msg, m.keys.Select):
		m.setFocus(m.focus + 1)
		return m, nil
	default:
		return m, nil
	}

	cfg := m.store.Panel.Config()
	switch m.focus {
	case FocusTilt:
		m.store.Panel.SetTilt(cfg.Tilt + delta)
	case FocusAzimuth:
		m.store.Panel.SetAzimuth(cfg.Azimuth + delta)
	case FocusShading:
		m.store.Panel.SetShadingLoss(cfg.ShadingLoss + delta)
	}
	return m, nil
}

// handleMouse maps left clicks onto the map and the controls
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	if z := zone.Get(mapZoneID); z != nil && z.InBounds(msg) {
		col, row := z.Pos(msg)
		if m.worldMap.SetCursorCell(col, row) {
			m.setFocus(FocusMap)
			m.clickMap()
		}
		return m, nil
	}

	if z := zone.Get(calculateZoneID); z != nil && z.InBounds(msg) {
		m.setFocus(FocusCalculate)
		return m.calculate()
	}

	for f := FocusLat; f < FocusCalculate; f++ {
		if z := zone.Get(focusZoneID(f)); z != nil && z.InBounds(msg) {
			m.setFocus(f)
			return m, textinput.Blink
		}
	}
	return m, nil
}

// calculate starts a query unless the trigger is disabled
func (m Model) calculate() (tea.Model, tea.Cmd) {
	q, err := m.store.Begin()
	if errors.Is(err, store.ErrNoLocation) {
		m.notice = noLocationNotice
		return m, nil
	}
	if err != nil {
		return m, nil
	}

	m.notice = ""
	return m, tea.Batch(m.spinner.Tick, runCalculation(m.estimator, q))
}

// clickMap selects the coordinate under the map cursor
func (m *Model) clickMap() {
	lat, lng := m.worldMap.Cursor()
	m.SelectPosition(lat, lng)
}

// applyTextEntry pushes the raw text fields into the coordinate store
func (m *Model) applyTextEntry() bool {
	if !m.store.Coords.SetFromTextEntry(m.latInput.Value(), m.lngInput.Value()) {
		return false
	}
	pos := m.store.Coords.Position()
	m.worldMap.SetMarker(pos)
	m.worldMap.CenterOn(pos.Latitude, pos.Longitude)
	m.notice = ""
	return true
}

func (m *Model) setFocus(f Focus) {
	m.focus = f
	m.latInput.Blur()
	m.lngInput.Blur()
	m.searchInput.Blur()

	switch f {
	case FocusLat:
		m.latInput.Focus()
	case FocusLng:
		m.lngInput.Focus()
	case FocusSearch:
		m.searchInput.Focus()
	}
}

func (m Model) focusIsText() bool {
	return m.focus == FocusLat || m.focus == FocusLng || m.focus == FocusSearch
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case FocusLat:
		m.latInput, cmd = m.latInput.Update(msg)
	case FocusLng:
		m.lngInput, cmd = m.lngInput.Update(msg)
	case FocusSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

// resizeMap fits the map into the left column, keeping roughly a 2:1 aspect
func (m *Model) resizeMap() {
	mapWidth := m.width*3/5 - 4
	mapHeight := mapWidth / 4
	if maxHeight := m.height / 2; mapHeight > maxHeight {
		mapHeight = maxHeight
	}
	m.worldMap.Resize(mapWidth, mapHeight)
}

// errorText turns a failed query into the generic user facing message
func errorText(err error) string {
	if errors.Is(err, pvgis.ErrAPI) {
		return apiErrorText
	}
	return fetchErrorText
}

func focusZoneID(f Focus) string {
	return fmt.Sprintf("focus-%d", f)
}
