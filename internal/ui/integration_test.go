package ui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/solar-terminal/internal/geocoding"
	"github.com/ngmaloney/solar-terminal/internal/models"
	"github.com/ngmaloney/solar-terminal/internal/pvgis"
)

// collectMsgs runs cmd and any batched commands it returns
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collectMsgs(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

// settle feeds query and search completions back into the model
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collectMsgs(cmd) {
		switch msg.(type) {
		case calculatedMsg, placeFoundMsg, CalculateMsg:
			var next tea.Cmd
			m, next = update(t, m, msg)
			m = settle(t, m, next)
		}
	}
	return m
}

func cannedResult(optimalTilt float64) *models.IrradiationResult {
	return &models.IrradiationResult{
		YearlyIrradiation: 1184,
		Monthly:           [12]float64{29.4, 48.2, 87.7, 123.6, 134.9, 133.2, 137.0, 126.2, 101.4, 70.1, 32.7, 23.9},
		OptimalTilt:       optimalTilt,
		OptimalAzimuth:    180,
	}
}

func TestIntegration_CalculateAgainstPVGIS(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/PVcalc" {
			t.Errorf("path = %s, want /PVcalc", r.URL.Path)
		}
		data, err := os.ReadFile("../../testdata/pvgis_pvcalc_response.json")
		if err != nil {
			t.Errorf("Failed to read test data: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer server.Close()

	client := pvgis.NewPVCalcClient(server.URL, 0)
	m := NewModel(client, nil, models.DefaultPanelConfig(), nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m.SelectPosition(51.1657, 10.4515)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if !m.store.Loading() {
		t.Fatal("store should be loading after calculate")
	}
	if view := m.View(); !strings.Contains(view, "Calculating") {
		t.Error("View() should show the loading state")
	}

	m = settle(t, m, cmd)

	if got := requests.Load(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
	result := m.store.Result()
	if result == nil {
		t.Fatalf("expected a result, err = %v", m.store.Err())
	}
	if result.HasWarning() {
		t.Errorf("unexpected warning %q", result.Warning)
	}
	if result.OptimalAzimuth != 180 {
		t.Errorf("OptimalAzimuth = %v, want 180", result.OptimalAzimuth)
	}

	view := m.View()
	for _, want := range []string{"1,184 kWh/m²/year", "Optimal tilt: 51.2°", "Optimal azimuth: 180° (S)", "about 16%"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if strings.Contains(view, "Calculating") {
		t.Error("View() should not show the loading state after completion")
	}
}

func TestIntegration_TiltImprovement(t *testing.T) {
	tests := []struct {
		name        string
		tilt        float64
		optimal     float64
		wantLine    string
		notWantLine string
	}{
		{"far from optimal", 20, 48, "about 28%", ""},
		{"already optimal", 35, 35.2, "already matches", "could improve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := &mockEstimator{result: cannedResult(tt.optimal)}
			panel := models.DefaultPanelConfig()
			panel.Tilt = tt.tilt

			m := NewModel(est, nil, panel, nil)
			m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
			m.SelectPosition(48, 16)
			m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
			m = settle(t, m, cmd)

			view := m.View()
			if !strings.Contains(view, tt.wantLine) {
				t.Errorf("View() missing %q", tt.wantLine)
			}
			if tt.notWantLine != "" && strings.Contains(view, tt.notWantLine) {
				t.Errorf("View() should not contain %q", tt.notWantLine)
			}
		})
	}
}

func TestIntegration_PlausibilityWarning(t *testing.T) {
	result := cannedResult(48)
	result.YearlyIrradiation = 500
	result.Warning = "Yearly irradiation of 500 kWh/m² is outside the expected range"

	m := newTestModel(&mockEstimator{result: result})
	m.SelectPosition(48, 16)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m = settle(t, m, cmd)

	if !strings.Contains(m.View(), "outside the expected range") {
		t.Error("View() should show the plausibility warning")
	}
}

func TestIntegration_FailureThenRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api error", &pvgis.APIError{StatusCode: 503, Body: "busy"}, apiErrorText},
		{"fetch error", errors.Join(pvgis.ErrFetch, errors.New("connection refused")), fetchErrorText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := &mockEstimator{result: cannedResult(48)}
			m := newTestModel(est)
			m.SelectPosition(48, 16)

			// First a success, so a stale result exists
			m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
			m = settle(t, m, cmd)
			if m.store.Result() == nil {
				t.Fatal("expected a first result")
			}

			est.err = tt.err
			m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
			m = settle(t, m, cmd)

			if m.store.Result() != nil {
				t.Error("a failed query should drop the previous result")
			}
			if !strings.Contains(m.View(), tt.want) {
				t.Errorf("View() missing %q", tt.want)
			}
			if !m.store.CanCalculate() {
				t.Fatal("trigger should be usable again after a failure")
			}

			// Retry succeeds
			est.err = nil
			m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
			m = settle(t, m, cmd)
			if m.store.Result() == nil || m.store.Err() != nil {
				t.Error("retry should succeed")
			}
			if est.calls != 3 {
				t.Errorf("estimator calls = %d, want 3", est.calls)
			}
		})
	}
}

func TestIntegration_TriggerDisabledWhileLoading(t *testing.T) {
	est := &mockEstimator{result: cannedResult(48)}
	m := newTestModel(est)
	m.SelectPosition(48, 16)

	m, first := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if first == nil {
		t.Fatal("first calculate should start a query")
	}

	m, second := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if second != nil {
		t.Error("calculate while loading should be ignored")
	}

	m = settle(t, m, first)
	if est.calls != 1 {
		t.Errorf("estimator calls = %d, want 1", est.calls)
	}
	if m.store.Loading() {
		t.Error("store should not be loading after completion")
	}
}

func TestIntegration_StaleResultKeptDuringEdits(t *testing.T) {
	est := &mockEstimator{result: cannedResult(48)}
	m := newTestModel(est)
	m.SelectPosition(48, 16)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m = settle(t, m, cmd)

	// Move the position and the tilt without recalculating
	m.SelectPosition(-33.9, 18.4)
	for m.focus != FocusTilt {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftRight})

	result := m.store.Result()
	if result == nil {
		t.Fatal("result should survive edits")
	}
	if result.Position.Latitude != 48 {
		t.Errorf("result latitude = %v, want the calculated 48", result.Position.Latitude)
	}
	if result.Panel.Tilt != models.DefaultTilt {
		t.Errorf("result tilt = %v, want the calculated %v", result.Panel.Tilt, models.DefaultTilt)
	}

	// The next query uses the edited inputs
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.store.Result() == nil {
		t.Error("stale result should stay visible while loading")
	}
	m = settle(t, m, cmd)
	if got := m.store.Result().Position.Latitude; got != -33.9 {
		t.Errorf("result latitude = %v, want -33.9", got)
	}
	if est.last.Tilt != models.DefaultTilt+bigStep {
		t.Errorf("query tilt = %v, want %v", est.last.Tilt, models.DefaultTilt+bigStep)
	}
}

func TestIntegration_CalculateOnStart(t *testing.T) {
	est := &mockEstimator{result: cannedResult(48)}
	m := NewModel(est, nil, models.DefaultPanelConfig(), nil)
	m.SelectPosition(48, 16)
	m.CalculateOnStart()

	m = settle(t, m, m.Init())

	if est.calls != 1 {
		t.Errorf("estimator calls = %d, want 1", est.calls)
	}
	if m.store.Result() == nil {
		t.Error("expected a result after start")
	}
}

func TestIntegration_PlaceSearch(t *testing.T) {
	tests := []struct {
		name       string
		locator    *mockLocator
		wantLat    string
		wantStatus string
	}{
		{
			name:       "found",
			locator:    &mockLocator{location: &geocoding.Location{Latitude: 48.8566, Longitude: 2.3522, Name: "Paris, France"}},
			wantLat:    "48.85660",
			wantStatus: "Paris, France",
		},
		{
			name:       "not found",
			locator:    &mockLocator{err: errors.New("no results")},
			wantLat:    "",
			wantStatus: `No place found for "Paris"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(&mockEstimator{}, tt.locator, models.DefaultPanelConfig(), nil)
			m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

			for m.focus != FocusSearch {
				m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
			}
			m, _ = update(t, m, keyRunes("Paris"))
			m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
			if !m.searching {
				t.Fatal("Enter should start a search")
			}

			m = settle(t, m, cmd)

			if m.searching {
				t.Error("search should be finished")
			}
			if m.latInput.Value() != tt.wantLat {
				t.Errorf("lat field = %q, want %q", m.latInput.Value(), tt.wantLat)
			}
			if m.searchStatus != tt.wantStatus {
				t.Errorf("status = %q, want %q", m.searchStatus, tt.wantStatus)
			}
		})
	}
}
