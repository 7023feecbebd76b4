package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/solar-terminal/internal/config"
	"github.com/ngmaloney/solar-terminal/internal/geocoding"
	"github.com/ngmaloney/solar-terminal/internal/models"
	"github.com/ngmaloney/solar-terminal/internal/pvgis"
	"github.com/ngmaloney/solar-terminal/internal/ui"
	"github.com/ngmaloney/solar-terminal/internal/worldmap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	lat := flag.String("lat", "", "Latitude to preselect in decimal degrees (requires --lon)")
	lon := flag.String("lon", "", "Longitude to preselect in decimal degrees (requires --lat)")
	tilt := flag.Float64("tilt", cfg.Panel.Tilt, "Panel tilt in degrees (0-90)")
	azimuth := flag.Float64("azimuth", cfg.Panel.Azimuth, "Panel azimuth in degrees, 180 = south (0-360)")
	shading := flag.Float64("shading", cfg.Panel.ShadingLoss, "Shading loss in percent (0-50)")
	coastline := flag.String("coastline", cfg.Map.CoastlinePath, "Polygon shapefile used to draw land on the map")
	calculate := flag.Bool("calculate", false, "Calculate immediately (requires --lat and --lon)")
	flag.Parse()

	if (*lat == "") != (*lon == "") {
		fmt.Println("Error: --lat and --lon must be given together.")
		os.Exit(1)
	}
	if *calculate && *lat == "" {
		fmt.Println("Error: --calculate requires --lat and --lon.")
		os.Exit(1)
	}

	panel := models.PanelConfig{Tilt: *tilt, Azimuth: *azimuth, ShadingLoss: *shading}
	if err := panel.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogging(cfg.LogFile)
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	landPath := *coastline
	if landPath == "" {
		fmt.Println("Preparing world map...")
		landPath, err = worldmap.ProvisionLand(context.Background(), cfg.Map.DataDir, cfg.Map.LandURL)
		if err != nil {
			log.Printf("Warning: could not provision land outlines: %v", err)
		}
	}

	var land *worldmap.LandMask
	if landPath != "" {
		land, err = worldmap.LoadLandMask(landPath)
		if err != nil {
			// The map still works without land outlines
			log.Printf("Warning: could not load coastline %s: %v", landPath, err)
		}
	}

	estimator := pvgis.NewPVCalcClient(cfg.PVGIS.BaseURL, cfg.PVGIS.Timeout)
	estimator.SetUserAgent(cfg.PVGIS.UserAgent)
	locator := geocoding.NewGeocoder(cfg.Geocoder.URL, cfg.Geocoder.Timeout)

	m := ui.NewModel(estimator, locator, panel, land)
	if *lat != "" {
		if !m.EnterCoordinates(*lat, *lon) {
			fmt.Printf("Error: invalid coordinates %q, %q\n", *lat, *lon)
			os.Exit(1)
		}
		if *calculate {
			m.CalculateOnStart()
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging sends log output to path, or discards it when path is empty.
// stderr belongs to the terminal UI.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}

	f, err := tea.LogToFile(path, "solar")
	if err != nil {
		return nil, err
	}
	return func() { f.Close() }, nil
}
