package weather

import (
	"context"
	"time"
)

// CurrentProvider abstracts a current-weather data source.
type CurrentProvider interface {
	Name() string
	Current(ctx context.Context, loc Location, unit Unit) (CurrentConditions, error)
}

// HistoricalProvider supplies an hourly observation series for a coordinate
// and an inclusive date range. Implementations return an error on upstream
// failure; callers degrade that to an empty series.
type HistoricalProvider interface {
	Name() string
	FetchHourly(ctx context.Context, loc Location, start, end time.Time) (HistoricalSeries, error)
}

// Geocoder resolves place names and coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (Location, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (Location, error)
}

// IPLocator resolves the caller's approximate location from its public IP.
type IPLocator interface {
	Locate(ctx context.Context) (Location, error)
}

// Engine turns a historical series into a multi-day forecast. A nil-or-empty
// forecast with a nil error means "forecast unavailable" for this input.
type Engine interface {
	Forecast(series HistoricalSeries, days int, unit Unit) (Forecast, error)
}

// Store is the contract the in-memory store (and any future persistent
// store) must satisfy for observed-conditions history.
type Store interface {
	SaveConditions(loc Location, cond CurrentConditions)
	GetLatest(loc Location) (CurrentConditions, error)
	GetRange(loc Location, from, to time.Time) ([]CurrentConditions, error)
}
