package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/skycast-dev/skycast/internal/forecast"
	"github.com/skycast-dev/skycast/internal/store"
	"github.com/skycast-dev/skycast/internal/weather"
)

func newTestApp(memStore *store.MemoryStore) *fiber.App {
	app := fiber.New()
	svc := weather.NewService(memStore, forecast.NewEngine(), nil, nil, nil, nil, weather.ServiceConfig{})
	RegisterRoutes(app, svc, weather.UnitCelsius)
	return app
}

func get(t *testing.T, app *fiber.App, target string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

// TestForecastDaysValidation verifies that the forecast endpoint enforces
// the expected 1-7 range for the `days` query parameter.
func TestForecastDaysValidation(t *testing.T) {
	app := newTestApp(store.NewMemoryStore(10, time.Hour))

	for _, target := range []string{
		"/api/v1/weather/forecast?city=Paris&days=8",
		"/api/v1/weather/forecast?city=Paris&days=0",
		"/api/v1/weather/forecast?city=Paris&days=abc",
	} {
		if resp := get(t, app, target); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status %d, want %d", target, resp.StatusCode, http.StatusBadRequest)
		}
	}
}

func TestForecastUnitValidation(t *testing.T) {
	app := newTestApp(store.NewMemoryStore(10, time.Hour))

	resp := get(t, app, "/api/v1/weather/forecast?city=Paris&days=5&unit=kelvin")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid unit: status %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestCurrentRequiresLocation(t *testing.T) {
	app := newTestApp(store.NewMemoryStore(10, time.Hour))

	resp := get(t, app, "/api/v1/weather/current")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing location: status %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	resp = get(t, app, "/api/v1/weather/current?lat=91&lon=0")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out-of-range lat: status %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	memStore := store.NewMemoryStore(10, 0)
	app := newTestApp(memStore)

	loc := weather.Location{City: "Paris", Country: "FR"}
	ts := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	memStore.SaveConditions(loc, weather.CurrentConditions{
		Location:    loc,
		Timestamp:   ts,
		Temperature: 18,
	})

	// Missing range parameters.
	resp := get(t, app, "/api/v1/weather/history?city=Paris&country=FR")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing range: status %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	// Range covering the stored entry.
	resp = get(t, app, "/api/v1/weather/history?city=Paris&country=FR&from=2025-05-01T00:00:00Z&to=2025-05-02T00:00:00Z")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("covered range: status %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// Unknown location.
	resp = get(t, app, "/api/v1/weather/history?city=Oslo&country=NO&from=2025-05-01T00:00:00Z&to=2025-05-02T00:00:00Z")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown location: status %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
