package pvgis

import (
	"context"

	"github.com/ngmaloney/solar-terminal/internal/models"
)

// Estimator defines the interface for fetching irradiation estimates
type Estimator interface {
	// Calculate estimates the yearly and monthly yield for a panel at pos.
	// A nil pos fails with ErrNoLocation before any request is made.
	Calculate(ctx context.Context, pos *models.Position, panel models.PanelConfig) (*models.IrradiationResult, error)
}
