package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ngmaloney/solar-terminal/internal/models"
	"github.com/ngmaloney/solar-terminal/internal/solar"
)

const (
	chartHeight   = 10
	chartMinWidth = 48
)

// renderResults renders the latest result, or the error of the last query
func (m Model) renderResults() string {
	if err := m.store.Err(); err != nil {
		return errorStyle.Render("✗ " + errorText(err))
	}

	result := m.store.Result()
	if result == nil {
		if m.store.Loading() {
			return m.spinner.View() + mutedStyle.Render(" Fetching irradiation data...")
		}
		return mutedStyle.Render("No results yet. Select a location and press Calculate.")
	}

	var lines []string
	lines = append(lines,
		labelStyle.Render("Yearly irradiation: ")+
			valueStyle.Bold(true).Render(fmt.Sprintf("%s kWh/m²/year", formatKWh(result.YearlyIrradiation))),
		labelStyle.Render("Location: ")+valueStyle.Render(result.Position.String())+
			labelStyle.Render("   Shading loss: ")+valueStyle.Render(fmt.Sprintf("%.0f%%", result.Loss)),
	)

	if result.HasWarning() {
		lines = append(lines, warningStyle.Render("⚠ "+result.Warning))
	}

	lines = append(lines,
		"",
		labelStyle.Render("Monthly yield (relative to the best month)"),
		m.renderMonthlyChart(result.Monthly),
		"",
		m.renderRecommendation(result),
	)

	return strings.Join(lines, "\n")
}

// renderMonthlyChart draws one bar per month scaled against the maximum month
func (m Model) renderMonthlyChart(monthly [models.MonthsPerYear]float64) string {
	width := m.width - 4
	if width < chartMinWidth {
		width = chartMinWidth
	}
	if width > 96 {
		width = 96
	}

	rel := solar.RelativeMonthly(monthly)
	data := make([]barchart.BarData, 0, len(rel))
	for i, r := range rel {
		label := time.Month(i + 1).String()[:3]
		data = append(data, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: label, Value: r * 100, Style: barStyle},
			},
		})
	}

	bc := barchart.New(width, chartHeight)
	bc.PushAll(data)
	bc.Draw()
	return bc.View()
}

// renderRecommendation compares the current tilt with the optimal orientation
func (m Model) renderRecommendation(result *models.IrradiationResult) string {
	panel := m.store.Panel.Config()

	var lines []string
	lines = append(lines, titleStyle.Render("Recommendation"))
	lines = append(lines,
		fmt.Sprintf("Optimal tilt: %s", valueStyle.Render(fmt.Sprintf("%.1f°", result.OptimalTilt))),
		fmt.Sprintf("Optimal azimuth: %s", valueStyle.Render(fmt.Sprintf("%.0f° (%s)",
			result.OptimalAzimuth, solar.CompassLabel(result.OptimalAzimuth)))),
	)

	if gain, ok := solar.TiltImprovement(result.OptimalTilt, panel.Tilt); ok {
		lines = append(lines, successStyle.Render(fmt.Sprintf(
			"Adjusting the tilt from %.0f° to %.0f° could improve the yield by about %.0f%%.",
			panel.Tilt, math.Round(result.OptimalTilt), gain)))
	} else {
		lines = append(lines, mutedStyle.Render("Your tilt already matches the recommendation."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// formatKWh formats an energy figure with thousands separators
func formatKWh(v float64) string {
	return humanize.Commaf(math.Round(v))
}
