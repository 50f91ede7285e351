package weather

import (
	"time"
)

// Unit is the temperature unit requested by a caller.
type Unit string

const (
	UnitCelsius    Unit = "celsius"
	UnitFahrenheit Unit = "fahrenheit"
)

// Code is a WMO weather interpretation code (0-99 subset).
type Code int

// wmoDescriptions maps WMO codes to human-readable condition text.
var wmoDescriptions = map[Code]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Freezing drizzle (light)",
	57: "Freezing drizzle (dense)",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Freezing rain (light)",
	67: "Freezing rain (heavy)",
	71: "Slight snowfall",
	73: "Moderate snowfall",
	75: "Heavy snowfall",
	77: "Snow grains",
	80: "Rain showers (slight)",
	81: "Rain showers (moderate)",
	82: "Rain showers (violent)",
	85: "Snow showers (slight)",
	86: "Snow showers (heavy)",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Description returns the human-readable text for a WMO code.
func (c Code) Description() string {
	if d, ok := wmoDescriptions[c]; ok {
		return d
	}
	return "Unknown"
}

// Location represents a resolved place. Lat/Lon are always set once a
// location has been through geocoding; City/Country are best-effort labels.
type Location struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"latitude"`
	Lon     float64 `json:"longitude"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// HourlyObservation is one hour of historical weather for a coordinate.
// Immutable once fetched; temperature in Celsius, pressure in hPa,
// precipitation in mm, cloud cover in percent.
type HourlyObservation struct {
	Timestamp     time.Time `json:"timestamp"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	Precipitation float64   `json:"precipitation"`
	Pressure      float64   `json:"pressure"`
	WindSpeed     float64   `json:"windSpeed"`
	CloudCover    float64   `json:"cloudCover"`
}

// HistoricalSeries is a contiguous, hour-indexed, chronologically ordered
// sequence of observations.
type HistoricalSeries []HourlyObservation

// CurrentConditions is the normalized current-weather view for a location.
type CurrentConditions struct {
	Location      Location  `json:"location"`
	Timestamp     time.Time `json:"timestamp"`
	Temperature   float64   `json:"temperature"`
	Unit          Unit      `json:"unit"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection float64   `json:"windDirection"`
	Code          Code      `json:"weatherCode"`
	Condition     string    `json:"condition"`
}

// DailyForecast is one forecast day produced by the regression pipeline.
// Temperature is in the unit the caller requested; cloud cover is clipped
// to [0,100] and precipitation/wind are non-negative.
type DailyForecast struct {
	Date          time.Time `json:"date"`
	Temperature   float64   `json:"temperature"`
	Code          Code      `json:"weatherCode"`
	Condition     string    `json:"condition"`
	CloudCover    float64   `json:"cloudCover"`
	Precipitation float64   `json:"precipitation"`
	WindSpeed     float64   `json:"windSpeed"`
}

// Forecast is an ordered multi-day forecast, one entry per calendar day
// starting tomorrow. It may be empty when no model could be produced.
type Forecast []DailyForecast
