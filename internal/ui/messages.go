package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/solar-terminal/internal/geocoding"
	"github.com/ngmaloney/solar-terminal/internal/models"
	"github.com/ngmaloney/solar-terminal/internal/pvgis"
	"github.com/ngmaloney/solar-terminal/internal/store"
)

// CalculateMsg asks the model to start a calculation, as the trigger does
type CalculateMsg struct{}

// calculatedMsg is sent when an estimation query finishes
type calculatedMsg struct {
	id     uint64
	result *models.IrradiationResult
	err    error
}

// placeFoundMsg is sent when a place search finishes
type placeFoundMsg struct {
	query    string
	location *geocoding.Location
	err      error
}

// runCalculation performs the estimation query in the background.
// Any timeout comes from the estimator's own HTTP client.
func runCalculation(estimator pvgis.Estimator, q store.Query) tea.Cmd {
	return func() tea.Msg {
		pos := q.Position
		result, err := estimator.Calculate(context.Background(), &pos, q.Panel)
		return calculatedMsg{id: q.ID, result: result, err: err}
	}
}

// searchPlace performs geocoding in the background
func searchPlace(locator geocoding.Locator, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		location, err := locator.Geocode(ctx, query)
		return placeFoundMsg{query: query, location: location, err: err}
	}
}
