package pvgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ngmaloney/solar-terminal/internal/models"
	"github.com/ngmaloney/solar-terminal/internal/solar"
)

const (
	// DefaultBaseURL is the public PVGIS API root
	DefaultBaseURL = "https://re.jrc.ec.europa.eu/api/v5_2"

	// DefaultUserAgent identifies the client to PVGIS
	DefaultUserAgent = "SolarTerminal/1.0 (github.com/ngmaloney/solar-terminal)"

	peakPower   = 1 // kWp, normalizes the yield per installed kW
	techChoice  = "crystSi"
	errBodySize = 512
)

// PVCalcClient implements Estimator using the PVGIS PVcalc endpoint
type PVCalcClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	now        func() time.Time
}

// NewPVCalcClient creates a client for baseURL. A zero timeout means the
// request waits until the server answers.
func NewPVCalcClient(baseURL string, timeout time.Duration) *PVCalcClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &PVCalcClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: DefaultUserAgent,
		now:       time.Now,
	}
}

// SetUserAgent overrides the User-Agent header
func (c *PVCalcClient) SetUserAgent(ua string) {
	if ua != "" {
		c.userAgent = ua
	}
}

// Aspect converts an azimuth (0 = north, 180 = south) into the PVGIS
// aspect convention (0 = south, -90 = east, 90 = west).
func Aspect(azimuth float64) float64 {
	return azimuth - 180
}

// BuildQuery maps a position and panel configuration to PVcalc parameters
func BuildQuery(pos models.Position, panel models.PanelConfig) url.Values {
	params := url.Values{}
	params.Set("lat", formatFloat(pos.Latitude))
	params.Set("lon", formatFloat(pos.Longitude))
	params.Set("peakpower", strconv.Itoa(peakPower))
	params.Set("loss", formatFloat(panel.ShadingLoss))
	params.Set("angle", formatFloat(panel.Tilt))
	params.Set("aspect", formatFloat(Aspect(panel.Azimuth)))
	params.Set("outputformat", "json")
	params.Set("pvtechchoice", techChoice)
	return params
}

// Calculate fetches the estimate for pos and derives the recommendation
func (c *PVCalcClient) Calculate(ctx context.Context, pos *models.Position, panel models.PanelConfig) (*models.IrradiationResult, error) {
	if pos == nil {
		return nil, ErrNoLocation
	}

	reqURL := fmt.Sprintf("%s/PVcalc?%s", c.baseURL, BuildQuery(*pos, panel).Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Printf("pvgis: creating request: %v", err)
		return nil, fmt.Errorf("%w: creating request: %v", ErrFetch, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("pvgis: request for %s failed: %v", pos, err)
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodySize))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		log.Printf("pvgis: %v", apiErr)
		return nil, apiErr
	}

	var calc pvcalcResponse
	if err := json.NewDecoder(resp.Body).Decode(&calc); err != nil {
		log.Printf("pvgis: decoding response: %v", err)
		return nil, fmt.Errorf("%w: decoding response: %v", ErrFetch, err)
	}

	monthly, err := calc.monthly()
	if err != nil {
		log.Printf("pvgis: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if calc.Outputs.Totals.Fixed.EY == nil {
		log.Printf("pvgis: response for %s has no yearly total", pos)
		return nil, fmt.Errorf("%w: missing yearly total", ErrFetch)
	}
	yearly := *calc.Outputs.Totals.Fixed.EY

	if solar.SeasonalAnomaly(pos.Latitude, monthly) {
		summer, winter := solar.SeasonMonths(pos.Latitude)
		log.Printf("pvgis: seasonal anomaly at %s: %s %.1f <= %s %.1f",
			pos, summer, monthly[summer-1], winter, monthly[winter-1])
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
		CalculatedAt:      c.now(),
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Internal types for PVcalc responses

type pvcalcResponse struct {
	Outputs struct {
		Monthly struct {
			Fixed []monthlyEntry `json:"fixed"`
		} `json:"monthly"`
		Totals struct {
			Fixed struct {
				EY *float64 `json:"E_y"`
			} `json:"fixed"`
		} `json:"totals"`
	} `json:"outputs"`
}

type monthlyEntry struct {
	Month int     `json:"month"`
	EM    float64 `json:"E_m"`
}

// monthly returns the twelve E_m values in calendar order.
// Entries carrying a month number are placed by it, others by position.
// Every calendar month must be filled exactly once.
func (r pvcalcResponse) monthly() ([models.MonthsPerYear]float64, error) {
	var out [models.MonthsPerYear]float64
	var filled [models.MonthsPerYear]bool
	entries := r.Outputs.Monthly.Fixed
	if len(entries) != models.MonthsPerYear {
		return out, fmt.Errorf("expected %d monthly values, got %d", models.MonthsPerYear, len(entries))
	}
	for i, e := range entries {
		idx := i
		if e.Month != 0 {
			if e.Month < 1 || e.Month > models.MonthsPerYear {
				return out, fmt.Errorf("invalid month %d", e.Month)
			}
			idx = e.Month - 1
		}
		if filled[idx] {
			return out, fmt.Errorf("duplicate value for %s", time.Month(idx+1))
		}
		filled[idx] = true
		out[idx] = e.EM
	}
	return out, nil
}
