package pvgis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/solar-terminal/internal/models"
)

// pvcalcBody builds a minimal PVcalc JSON document
func pvcalcBody(t *testing.T, yearly float64, monthly [12]float64) []byte {
	t.Helper()

	body := map[string]any{
		"outputs": map[string]any{
			"monthly": map[string]any{"fixed": monthlyEntries(monthly)},
			"totals":  map[string]any{"fixed": map[string]any{"E_y": yearly}},
		},
	}
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return data
}

func monthlyEntries(monthly [12]float64) []map[string]any {
	fixed := make([]map[string]any, 0, len(monthly))
	for i, v := range monthly {
		fixed = append(fixed, map[string]any{"month": i + 1, "E_m": v})
	}
	return fixed
}

func summerPeak() [12]float64 {
	return [12]float64{40, 60, 100, 140, 160, 170, 165, 150, 110, 70, 45, 30}
}

func newTestClient(url string) *PVCalcClient {
	c := NewPVCalcClient(url, 5*time.Second)
	c.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestNewPVCalcClient(t *testing.T) {
	client := NewPVCalcClient("", 0)

	require.NotNil(t, client)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, time.Duration(0), client.httpClient.Timeout, "no timeout by default")
	assert.NotEmpty(t, client.userAgent)

	client.SetUserAgent("")
	assert.Equal(t, DefaultUserAgent, client.userAgent)
	client.SetUserAgent("custom/1.0")
	assert.Equal(t, "custom/1.0", client.userAgent)
}

func TestAspect(t *testing.T) {
	for az := 0.0; az <= 360; az += 15 {
		assert.Equal(t, az-180, Aspect(az))
	}
	assert.Equal(t, -180.0, Aspect(0))
	assert.Equal(t, 0.0, Aspect(180))
	assert.Equal(t, 180.0, Aspect(360))
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(
		models.Position{Latitude: 51.1657, Longitude: 10.4515},
		models.PanelConfig{Tilt: 35, Azimuth: 90, ShadingLoss: 14},
	)

	assert.Equal(t, "51.1657", q.Get("lat"))
	assert.Equal(t, "10.4515", q.Get("lon"))
	assert.Equal(t, "1", q.Get("peakpower"))
	assert.Equal(t, "14", q.Get("loss"))
	assert.Equal(t, "35", q.Get("angle"))
	assert.Equal(t, "-90", q.Get("aspect"))
	assert.Equal(t, "json", q.Get("outputformat"))
	assert.Equal(t, "crystSi", q.Get("pvtechchoice"))
}

func TestPVCalcClient_Calculate_NoLocation(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Calculate(context.Background(), nil, models.DefaultPanelConfig())

	assert.ErrorIs(t, err, ErrNoLocation)
	assert.Nil(t, result)
	assert.Equal(t, int32(0), hits.Load(), "no request may be sent without a location")
}

func TestPVCalcClient_Calculate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/PVcalc", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		query := r.URL.Query()
		assert.Equal(t, "0", query.Get("aspect"))
		assert.Equal(t, "35", query.Get("angle"))

		w.Header().Set("Content-Type", "application/json")
		data, _ := os.ReadFile("../../testdata/pvgis_pvcalc_response.json")
		w.Write(data)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	pos := &models.Position{Latitude: 51.1657, Longitude: 10.4515}

	result, err := client.Calculate(context.Background(), pos, models.DefaultPanelConfig())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1184.0, result.YearlyIrradiation)
	assert.Equal(t, 29.4, result.Monthly[0])
	assert.Equal(t, 23.9, result.Monthly[11])
	assert.Greater(t, result.Monthly[5], result.Monthly[11], "June above December")
	assert.InDelta(t, 51.17, result.OptimalTilt, 0.01)
	assert.Equal(t, 180.0, result.OptimalAzimuth)
	assert.Equal(t, 0.0, result.Loss)
	assert.Empty(t, result.Warning)
	assert.Equal(t, *pos, result.Position)
}

func TestPVCalcClient_Calculate_Plausibility(t *testing.T) {
	tests := []struct {
		name        string
		yearly      float64
		wantWarning bool
	}{
		{"plausible", 1500, false},
		{"too low", 500, true},
		{"too high", 3000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := pvcalcBody(t, tt.yearly, summerPeak())
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write(body)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			pos := &models.Position{Latitude: 48, Longitude: 11}

			result, err := client.Calculate(context.Background(), pos, models.DefaultPanelConfig())
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, tt.yearly, result.YearlyIrradiation)
			assert.Equal(t, tt.wantWarning, result.HasWarning())
			assert.Equal(t, 48.0, result.OptimalTilt)
			assert.Equal(t, 180.0, result.OptimalAzimuth)
		})
	}
}

func TestPVCalcClient_Calculate_SouthernHemisphere(t *testing.T) {
	// Southern summer peak is mirrored; a northern-looking curve only logs.
	body := pvcalcBody(t, 1700, summerPeak())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	pos := &models.Position{Latitude: -33, Longitude: 151}
	panel := models.PanelConfig{Tilt: 20, Azimuth: 0, ShadingLoss: 5}

	result, err := client.Calculate(context.Background(), pos, panel)
	require.NoError(t, err)

	assert.Equal(t, 33.0, result.OptimalTilt)
	assert.Equal(t, 0.0, result.OptimalAzimuth)
	assert.Equal(t, 5.0, result.Loss)
	assert.Empty(t, result.Warning)
}

func TestPVCalcClient_ErrorHandling(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "400 bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"message":"Location over the sea"}`))
			},
			wantErr: ErrAPI,
		},
		{
			name: "503 unavailable",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantErr: ErrAPI,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"outputs":`))
			},
			wantErr: ErrFetch,
		},
		{
			name: "short monthly series",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"outputs":{"monthly":{"fixed":[{"month":1,"E_m":10}]},"totals":{"fixed":{"E_y":1000}}}}`))
			},
			wantErr: ErrFetch,
		},
		{
			name: "missing yearly total",
			handler: func(w http.ResponseWriter, r *http.Request) {
				body := map[string]any{"outputs": map[string]any{
					"monthly": map[string]any{"fixed": monthlyEntries(summerPeak())},
				}}
				json.NewEncoder(w).Encode(body)
			},
			wantErr: ErrFetch,
		},
		{
			name: "duplicate month",
			handler: func(w http.ResponseWriter, r *http.Request) {
				entries := monthlyEntries(summerPeak())
				entries[1]["month"] = 1
				body := map[string]any{"outputs": map[string]any{
					"monthly": map[string]any{"fixed": entries},
					"totals":  map[string]any{"fixed": map[string]any{"E_y": 1200}},
				}}
				json.NewEncoder(w).Encode(body)
			},
			wantErr: ErrFetch,
		},
		{
			name: "204 no content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
			wantErr: ErrFetch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := newTestClient(server.URL)
			pos := &models.Position{Latitude: 10, Longitude: 10}

			result, err := client.Calculate(context.Background(), pos, models.DefaultPanelConfig())
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPVCalcClient_APIErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Calculate(context.Background(), &models.Position{}, models.DefaultPanelConfig())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Body)
}

func TestPVCalcClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(url)
	_, err := client.Calculate(context.Background(), &models.Position{Latitude: 1, Longitude: 1}, models.DefaultPanelConfig())
	assert.ErrorIs(t, err, ErrFetch)
	assert.NotErrorIs(t, err, ErrAPI)
}

func TestPVCalcResponse_MonthlyOrder(t *testing.T) {
	var resp pvcalcResponse
	raw := `{"outputs":{"monthly":{"fixed":[
		{"month":12,"E_m":12},{"month":11,"E_m":11},{"month":10,"E_m":10},{"month":9,"E_m":9},
		{"month":8,"E_m":8},{"month":7,"E_m":7},{"month":6,"E_m":6},{"month":5,"E_m":5},
		{"month":4,"E_m":4},{"month":3,"E_m":3},{"month":2,"E_m":2},{"month":1,"E_m":1}]}}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	monthly, err := resp.monthly()
	require.NoError(t, err)
	for i, v := range monthly {
		assert.Equal(t, float64(i+1), v)
	}
}

func TestPVCalcResponse_MonthlyRejectsBadMonths(t *testing.T) {
	tests := []struct {
		name   string
		months [12]int
	}{
		{"month 1 twice, month 2 missing", [12]int{1, 1, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
		{"month out of range", [12]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 13}},
		{"numbered month collides with unnumbered entry", [12]int{2, 0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp pvcalcResponse
			for i, m := range tt.months {
				resp.Outputs.Monthly.Fixed = append(resp.Outputs.Monthly.Fixed, monthlyEntry{Month: m, EM: float64(i + 1)})
			}

			_, err := resp.monthly()
			assert.Error(t, err)
		})
	}
}

func TestPVCalcResponse_MonthlyByPosition(t *testing.T) {
	var resp pvcalcResponse
	for i := 0; i < 12; i++ {
		resp.Outputs.Monthly.Fixed = append(resp.Outputs.Monthly.Fixed, monthlyEntry{EM: float64(i + 1)})
	}

	monthly, err := resp.monthly()
	require.NoError(t, err)
	assert.Equal(t, 1.0, monthly[0])
	assert.Equal(t, 12.0, monthly[11])
}
