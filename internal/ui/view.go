package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/ngmaloney/solar-terminal/internal/models"
	"github.com/ngmaloney/solar-terminal/internal/solar"
)

// sideBySideMinWidth is the narrowest terminal that fits map and controls in one row
const sideBySideMinWidth = 100

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render("☀ Solar Terminal")
	subtitle := mutedStyle.Render("PVGIS irradiation estimate for any point on earth")

	mapPane := m.renderMapPane()
	controls := m.renderControls()

	var top string
	if m.width >= sideBySideMinWidth {
		top = lipgloss.JoinHorizontal(lipgloss.Top, mapPane, " ", controls)
	} else {
		top = lipgloss.JoinVertical(lipgloss.Left, mapPane, controls)
	}

	var sections []string
	sections = append(sections, title, subtitle, "", top)
	sections = append(sections, sectionHeaderStyle.Render("☀ RESULTS"), m.renderResults())
	sections = append(sections, helpStyle.Render(m.help.View(m.keys)))

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderMapPane renders the map with the current selection underneath
func (m Model) renderMapPane() string {
	focused := m.focus == FocusMap
	body := zone.Mark(mapZoneID, m.worldMap.View(focused))

	lat, lng := m.worldMap.Cursor()
	caption := mutedStyle.Render(fmt.Sprintf("Cursor %.2f, %.2f", lat, lng))
	if pos := m.store.Coords.Position(); pos != nil {
		caption += mutedStyle.Render(" • ") + valueStyle.Render("◉ "+pos.String())
	}

	style := paneStyle
	if focused {
		style = activePaneStyle
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, body, caption))
}

// renderControls renders the coordinate entries, sliders and trigger
func (m Model) renderControls() string {
	panel := m.store.Panel.Config()

	var lines []string
	lines = append(lines,
		m.controlRow(FocusLat, "Latitude", m.latInput.View()),
		m.controlRow(FocusLng, "Longitude", m.lngInput.View()),
		m.controlRow(FocusSearch, "Place", m.searchInput.View()),
	)
	if status := m.searchLine(); status != "" {
		lines = append(lines, "           "+status)
	}
	lines = append(lines,
		"",
		m.controlRow(FocusTilt, "Tilt", m.sliderView(panel.Tilt, models.MaxTilt, fmt.Sprintf("%3.0f°", panel.Tilt))),
		m.controlRow(FocusAzimuth, "Azimuth", m.sliderView(panel.Azimuth, models.MaxAzimuth,
			fmt.Sprintf("%3.0f° %s", panel.Azimuth, solar.CompassLabel(panel.Azimuth)))),
		m.controlRow(FocusShading, "Shading", m.sliderView(panel.ShadingLoss, models.MaxShadingLoss, fmt.Sprintf("%3.0f%%", panel.ShadingLoss))),
		"",
		m.renderTrigger(),
	)

	if m.store.Coords.Position() == nil || m.notice != "" {
		notice := m.notice
		if notice == "" {
			notice = noLocationNotice
		}
		lines = append(lines, "", lipgloss.NewStyle().Width(44).Render(mutedStyle.Render(notice)))
	}

	style := paneStyle
	if m.focus != FocusMap {
		style = activePaneStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) controlRow(f Focus, label, control string) string {
	l := labelStyle.Width(10).Render(label)
	if m.focus == f {
		l = activeLabelStyle.Width(10).Render(label)
	}
	return zone.Mark(focusZoneID(f), l+" "+control)
}

func (m Model) sliderView(value, limit float64, suffix string) string {
	return m.slider.ViewAs(value/limit) + " " + valueStyle.Render(suffix)
}

func (m Model) searchLine() string {
	switch {
	case m.searching:
		return m.spinner.View() + mutedStyle.Render(" Searching...")
	case m.searchStatus != "":
		return mutedStyle.Render(truncate(m.searchStatus, 40))
	}
	return ""
}

// renderTrigger renders the calculate button; it is disabled without a
// position and while a query is in flight
func (m Model) renderTrigger() string {
	var button string
	switch {
	case m.store.Loading():
		button = disabledButtonStyle.Render("Calculating") + " " + m.spinner.View()
	case !m.store.CanCalculate():
		button = disabledButtonStyle.Render("Calculate")
	case m.focus == FocusCalculate:
		button = activeButtonStyle.Render("▶ Calculate")
	default:
		button = buttonStyle.Render("Calculate")
	}
	return zone.Mark(calculateZoneID, button)
}

// truncate shortens s to n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
