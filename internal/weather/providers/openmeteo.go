package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/skycast-dev/skycast/internal/weather"
)

// openMeteoTimeLayout is the ISO-8601 minute-precision format Open-Meteo
// uses for timestamps.
const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoProvider implements weather.CurrentProvider against the
// Open-Meteo forecast API. No API key is required.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	rc      *resilientClient
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		rc:      newResilientClient(client, "openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Current fetches current conditions for a coordinate in the requested
// temperature unit. Wind follows the unit convention of the original app:
// km/h with Celsius, mph with Fahrenheit.
func (p *OpenMeteoProvider) Current(ctx context.Context, loc weather.Location, unit weather.Unit) (weather.CurrentConditions, error) {
	windUnit := "kmh"
	if unit == weather.UnitFahrenheit {
		windUnit = "mph"
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", loc.Lat))
		values.Set("longitude", fmt.Sprintf("%f", loc.Lon))
		values.Set("current_weather", "true")
		values.Set("temperature_unit", string(unit))
		values.Set("windspeed_unit", windUnit)
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := p.rc.do(ctx, buildRequest)
	if err != nil {
		return weather.CurrentConditions{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		CurrentWeather struct {
			Temperature   float64 `json:"temperature"`
			WindSpeed     float64 `json:"windspeed"`
			WindDirection float64 `json:"winddirection"`
			WeatherCode   int     `json:"weathercode"`
			Time          string  `json:"time"`
		} `json:"current_weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.CurrentConditions{}, err
	}

	ts, err := time.Parse(openMeteoTimeLayout, payload.CurrentWeather.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	code := weather.Code(payload.CurrentWeather.WeatherCode)
	return weather.CurrentConditions{
		Location:      loc,
		Timestamp:     ts,
		Temperature:   payload.CurrentWeather.Temperature,
		Unit:          unit,
		WindSpeed:     payload.CurrentWeather.WindSpeed,
		WindDirection: payload.CurrentWeather.WindDirection,
		Code:          code,
		Condition:     code.Description(),
	}, nil
}
