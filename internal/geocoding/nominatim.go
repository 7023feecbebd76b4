package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ngmaloney/solar-terminal/internal/models"
)

const (
	// DefaultURL is the public Nominatim search endpoint
	DefaultURL = "https://nominatim.openstreetmap.org/search"
	userAgent  = "SolarTerminal/1.0" // Required by Nominatim ToS
)

// Locator resolves a free-text place name to a location
type Locator interface {
	Geocode(ctx context.Context, query string) (*Location, error)
}

// Geocoder converts place names to coordinates
type Geocoder struct {
	baseURL    string
	httpClient *http.Client
	minGap     time.Duration
	lastCall   time.Time
	mu         sync.Mutex
}

// Location represents a geocoded location
type Location struct {
	Latitude  float64
	Longitude float64
	Name      string
}

// Position returns the location as a map position
func (l Location) Position() models.Position {
	return models.Position{Latitude: l.Latitude, Longitude: l.Longitude}
}

// NewGeocoder creates a geocoder for a Nominatim compatible endpoint
func NewGeocoder(baseURL string, timeout time.Duration) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Geocoder{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		minGap: time.Second,
	}
}

// nominatimResponse represents the Nominatim API response
type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode converts a query (city, address, landmark) to coordinates
func (g *Geocoder) Geocode(ctx context.Context, query string) (*Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	params := url.Values{}
	params.Add("format", "json")
	params.Add("limit", "1")
	params.Add("q", query)

	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())

	// Rate limiting: Nominatim requires 1 req/sec max
	g.mu.Lock()
	if !g.lastCall.IsZero() {
		elapsed := time.Since(g.lastCall)
		if elapsed < g.minGap {
			time.Sleep(g.minGap - elapsed)
		}
	}
	g.lastCall = time.Now()
	g.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Set required User-Agent header (Nominatim ToS requirement)
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim API returned status %d", resp.StatusCode)
	}

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no results found for '%s'", query)
	}

	result := results[0]

	lat, err := strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude: %w", err)
	}

	loc := &Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      result.DisplayName,
	}
	if !loc.Position().Valid() {
		return nil, fmt.Errorf("location out of range: %.4f, %.4f", lat, lon)
	}
	return loc, nil
}
