package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/skycast-dev/skycast/internal/weather"
)

type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration

	// LookbackDays is the historical window used for forecast training.
	LookbackDays int

	// DefaultUnit applies when a request does not specify one.
	DefaultUnit weather.Unit

	// RefreshInterval controls how often tracked locations are refreshed.
	RefreshInterval time.Duration

	// Locations to track in the observation store.
	Locations []weather.Location

	// In-memory store retention.
	StoreMaxHistory int           // max number of entries per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of entries (0 = unlimited)

	// Result-cache TTLs, mirroring the per-call memoization windows.
	GeocodeTTL time.Duration
	CurrentTTL time.Duration
	HistoryTTL time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.LookbackDays = getenvInt("FORECAST_LOOKBACK_DAYS", 365)
	if cfg.LookbackDays < 1 {
		return nil, fmt.Errorf("FORECAST_LOOKBACK_DAYS must be positive")
	}

	unit := weather.Unit(getenvDefault("DEFAULT_UNIT", string(weather.UnitCelsius)))
	if unit != weather.UnitCelsius && unit != weather.UnitFahrenheit {
		return nil, fmt.Errorf("invalid DEFAULT_UNIT: %q", unit)
	}
	cfg.DefaultUnit = unit

	// Refresh interval for tracked locations: default 15 minutes.
	interval, err := getenvDuration("REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = interval

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	maxAge, err := getenvDuration("STORE_MAX_AGE", "24h")
	if err != nil {
		return nil, err
	}
	cfg.StoreMaxAge = maxAge

	// Cache TTLs.
	if cfg.GeocodeTTL, err = getenvDuration("GEOCODE_CACHE_TTL", "10m"); err != nil {
		return nil, err
	}
	if cfg.CurrentTTL, err = getenvDuration("CURRENT_CACHE_TTL", "5m"); err != nil {
		return nil, err
	}
	if cfg.HistoryTTL, err = getenvDuration("HISTORY_CACHE_TTL", "1h"); err != nil {
		return nil, err
	}

	locs, err := loadTrackedLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	return cfg, nil
}

// loadTrackedLocations parses the comma-separated city/country lists. Both
// may be empty, in which case nothing is tracked.
func loadTrackedLocations() ([]weather.Location, error) {
	city := os.Getenv("TRACKED_CITIES")
	country := os.Getenv("TRACKED_COUNTRIES")
	if city == "" {
		return nil, nil
	}

	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}

	var locs []weather.Location
	for i := range cities {
		locs = append(locs, weather.Location{
			City:    strings.TrimSpace(cities[i]),
			Country: strings.TrimSpace(countries[i]),
		})
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
