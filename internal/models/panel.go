package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Panel defaults used at startup
const (
	DefaultTilt        = 35.0
	DefaultAzimuth     = 180.0
	DefaultShadingLoss = 0.0
)

// Slider ranges
const (
	MaxTilt        = 90.0
	MaxAzimuth     = 360.0
	MaxShadingLoss = 50.0
)

var validate = validator.New()

// PanelConfig describes how the modules are mounted.
// Azimuth uses 0/360 = north, 90 = east, 180 = south.
type PanelConfig struct {
	Tilt        float64 `json:"tilt" validate:"gte=0,lte=90"`
	Azimuth     float64 `json:"azimuth" validate:"gte=0,lte=360"`
	ShadingLoss float64 `json:"shading_loss" validate:"gte=0,lte=50"`
}

// DefaultPanelConfig returns the startup configuration
func DefaultPanelConfig() PanelConfig {
	return PanelConfig{
		Tilt:        DefaultTilt,
		Azimuth:     DefaultAzimuth,
		ShadingLoss: DefaultShadingLoss,
	}
}

// Validate checks every field against its slider range
func (c PanelConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid panel config: %w", err)
	}
	return nil
}

// Clamped returns a copy with every field forced into range
func (c PanelConfig) Clamped() PanelConfig {
	return PanelConfig{
		Tilt:        clamp(c.Tilt, 0, MaxTilt),
		Azimuth:     clamp(c.Azimuth, 0, MaxAzimuth),
		ShadingLoss: clamp(c.ShadingLoss, 0, MaxShadingLoss),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
