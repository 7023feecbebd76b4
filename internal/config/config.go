// Package config loads the terminal's settings from the environment.
//
// Values are resolved in this order: OS environment, then an optional .env
// file in the working directory, then the defaults in the struct tags.
// Command-line flags are applied on top by the caller.
package config

import (
	"time"
)

// Config is the top-level configuration
type Config struct {
	LogFile string `envconfig:"SOLAR_LOG_FILE" default:"solar-terminal.log"`

	PVGIS    PVGISConfig
	Geocoder GeocoderConfig
	Map      MapConfig
	Panel    PanelConfig
}

// PVGISConfig holds the estimation service settings.
// A zero timeout leaves the request waiting until the service answers.
type PVGISConfig struct {
	BaseURL   string        `envconfig:"SOLAR_PVGIS_URL" default:"https://re.jrc.ec.europa.eu/api/v5_2" validate:"required,url"`
	Timeout   time.Duration `envconfig:"SOLAR_PVGIS_TIMEOUT" default:"0s" validate:"gte=0"`
	UserAgent string        `envconfig:"SOLAR_USER_AGENT" default:"SolarTerminal/1.0 (github.com/ngmaloney/solar-terminal)"`
}

// GeocoderConfig holds the place search settings
type GeocoderConfig struct {
	URL     string        `envconfig:"SOLAR_GEOCODER_URL" default:"https://nominatim.openstreetmap.org/search" validate:"required,url"`
	Timeout time.Duration `envconfig:"SOLAR_GEOCODER_TIMEOUT" default:"10s" validate:"gt=0"`
}

// MapConfig holds the map widget settings.
// Without a coastline path the Natural Earth land polygons are downloaded
// from LandURL into DataDir on first run.
type MapConfig struct {
	CoastlinePath string `envconfig:"SOLAR_COASTLINE_SHP"`
	DataDir       string `envconfig:"SOLAR_DATA_DIR" default:"data" validate:"required"`
	LandURL       string `envconfig:"SOLAR_LAND_URL" default:"https://naciscdn.org/naturalearth/110m/physical/ne_110m_land.zip" validate:"required,url"`
}

// PanelConfig holds the startup slider values
type PanelConfig struct {
	Tilt        float64 `envconfig:"SOLAR_DEFAULT_TILT" default:"35" validate:"gte=0,lte=90"`
	Azimuth     float64 `envconfig:"SOLAR_DEFAULT_AZIMUTH" default:"180" validate:"gte=0,lte=360"`
	ShadingLoss float64 `envconfig:"SOLAR_DEFAULT_SHADING" default:"0" validate:"gte=0,lte=50"`
}
