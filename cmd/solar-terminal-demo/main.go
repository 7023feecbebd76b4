package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/solar-terminal/internal/models"
	"github.com/ngmaloney/solar-terminal/internal/pvgis"
	"github.com/ngmaloney/solar-terminal/internal/solar"
	"github.com/ngmaloney/solar-terminal/internal/ui"
)

// demoEstimator answers every query with central European figures
type demoEstimator struct{}

func (demoEstimator) Calculate(ctx context.Context, pos *models.Position, panel models.PanelConfig) (*models.IrradiationResult, error) {
	if pos == nil {
		return nil, pvgis.ErrNoLocation
	}

	// Pretend to talk to the network
	select {
	case <-time.After(800 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	monthly := [models.MonthsPerYear]float64{
		31.2, 48.9, 86.4, 121.7, 139.5, 141.0,
		145.3, 131.8, 97.6, 66.1, 35.4, 25.7,
	}
	scale := 1 - panel.ShadingLoss/100

	var yearly float64
	for i := range monthly {
		monthly[i] *= scale
		yearly += monthly[i]
	}

	rec := solar.Recommend(pos.Latitude)
	return &models.IrradiationResult{
		Position:          *pos,
		Panel:             panel,
		YearlyIrradiation: yearly,
		Monthly:           monthly,
		OptimalTilt:       rec.Tilt,
		OptimalAzimuth:    rec.Azimuth,
		Loss:              panel.ShadingLoss,
		Warning:           solar.PlausibilityWarning(yearly),
		CalculatedAt:      time.Now(),
	}, nil
}

// This demo shows the UI with mock data
func main() {
	m := ui.NewModel(demoEstimator{}, nil, models.PanelConfig{
		Tilt:        20,
		Azimuth:     models.DefaultAzimuth,
		ShadingLoss: models.DefaultShadingLoss,
	}, nil)

	// Berlin
	m.SelectPosition(52.52000, 13.40500)
	m.CalculateOnStart()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}
