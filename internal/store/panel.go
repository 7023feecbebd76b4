package store

import (
	"github.com/ngmaloney/solar-terminal/internal/models"
)

// Panel holds the user's tilt, azimuth and shading choice
type Panel struct {
	config models.PanelConfig
}

// NewPanel starts from cfg, clamped into range
func NewPanel(cfg models.PanelConfig) Panel {
	return Panel{config: cfg.Clamped()}
}

// Config returns the current configuration
func (p Panel) Config() models.PanelConfig {
	return p.config
}

// SetTilt sets the tilt in degrees, clamped to 0..90
func (p *Panel) SetTilt(v float64) {
	p.config.Tilt = v
	p.config = p.config.Clamped()
}

// SetAzimuth sets the azimuth in degrees, clamped to 0..360
func (p *Panel) SetAzimuth(v float64) {
	p.config.Azimuth = v
	p.config = p.config.Clamped()
}

// SetShadingLoss sets the shading loss in percent, clamped to 0..50
func (p *Panel) SetShadingLoss(v float64) {
	p.config.ShadingLoss = v
	p.config = p.config.Clamped()
}
