package weather

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// ServiceConfig carries the tunables the orchestration layer needs.
type ServiceConfig struct {
	// LookbackDays is the length of the historical window used for model
	// training. The window ends the day before the request.
	LookbackDays int

	// TTLs for the content-addressed result cache; zero disables caching
	// for that class of call.
	GeocodeTTL time.Duration
	CurrentTTL time.Duration
	HistoryTTL time.Duration
}

// Service orchestrates geocoding, provider fetches and the forecast engine.
// Results of outbound calls are memoized in a TTL cache keyed by call
// identity and arguments; cached results are treated as immutable.
type Service struct {
	store      Store
	engine     Engine
	current    CurrentProvider
	historical HistoricalProvider
	geo        Geocoder
	ip         IPLocator

	cfg   ServiceConfig
	cache *gocache.Cache
}

// NewService creates a new Service.
func NewService(store Store, engine Engine, current CurrentProvider, historical HistoricalProvider, geo Geocoder, ip IPLocator, cfg ServiceConfig) *Service {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 365
	}
	return &Service{
		store:      store,
		engine:     engine,
		current:    current,
		historical: historical,
		geo:        geo,
		ip:         ip,
		cfg:        cfg,
		cache:      gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// ResolveCity geocodes a city name, serving repeated lookups from cache.
func (s *Service) ResolveCity(ctx context.Context, city string) (Location, error) {
	key := "geocode:" + city
	if v, ok := s.cache.Get(key); ok {
		return v.(Location), nil
	}

	loc, err := s.geo.Geocode(ctx, city)
	if err != nil {
		return Location{}, err
	}

	if s.cfg.GeocodeTTL > 0 {
		s.cache.Set(key, loc, s.cfg.GeocodeTTL)
	}
	return loc, nil
}

// ResolveCoords labels a coordinate via reverse geocoding. Labeling is
// best-effort: on failure the coordinate comes back with a placeholder
// city and no error.
func (s *Service) ResolveCoords(ctx context.Context, lat, lon float64) Location {
	key := fmt.Sprintf("reverse:%.4f:%.4f", lat, lon)
	if v, ok := s.cache.Get(key); ok {
		return v.(Location)
	}

	loc, err := s.geo.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		log.Printf("reverse geocoding failed for %.4f,%.4f: %v", lat, lon, err)
		return Location{City: "Current Location", Lat: lat, Lon: lon}
	}

	if s.cfg.GeocodeTTL > 0 {
		s.cache.Set(key, loc, s.cfg.GeocodeTTL)
	}
	return loc
}

// Locate resolves the service's approximate location from its public IP.
func (s *Service) Locate(ctx context.Context) (Location, error) {
	return s.ip.Locate(ctx)
}

// Current returns current conditions for a location in the requested unit.
func (s *Service) Current(ctx context.Context, loc Location, unit Unit) (CurrentConditions, error) {
	key := fmt.Sprintf("current:%.4f:%.4f:%s", loc.Lat, loc.Lon, unit)
	if v, ok := s.cache.Get(key); ok {
		cond := v.(CurrentConditions)
		cond.Location = loc
		return cond, nil
	}

	cond, err := s.current.Current(ctx, loc, unit)
	if err != nil {
		return CurrentConditions{}, err
	}

	if s.cfg.CurrentTTL > 0 {
		s.cache.Set(key, cond, s.cfg.CurrentTTL)
	}
	return cond, nil
}

// Forecast runs the full pipeline for a location: fetch the historical
// hourly series, then hand it to the engine. Upstream fetch failures
// degrade to an empty series, which the engine in turn degrades to an
// empty forecast; callers present that as "forecast unavailable".
func (s *Service) Forecast(ctx context.Context, loc Location, days int, unit Unit) (Forecast, error) {
	reqID := uuid.NewString()[:8]

	series := s.fetchHistory(ctx, loc, reqID)
	log.Printf("DEBUG: [%s] forecast for %s: %d historical hours", reqID, loc.Key(), len(series))

	fc, err := s.engine.Forecast(series, days, unit)
	if err != nil {
		return nil, err
	}
	if len(fc) == 0 {
		log.Printf("INFO: [%s] no forecast available for %s", reqID, loc.Key())
	}
	return fc, nil
}

// fetchHistory returns the look-back window of hourly observations ending
// yesterday, cached per coordinate and date range.
func (s *Service) fetchHistory(ctx context.Context, loc Location, reqID string) HistoricalSeries {
	end := time.Now().UTC().AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(s.cfg.LookbackDays - 1))

	key := fmt.Sprintf("archive:%.4f:%.4f:%s:%s", loc.Lat, loc.Lon, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if v, ok := s.cache.Get(key); ok {
		return v.(HistoricalSeries)
	}

	series, err := s.historical.FetchHourly(ctx, loc, start, end)
	if err != nil {
		log.Printf("ERROR: [%s] historical fetch failed for %s: %v", reqID, loc.Key(), err)
		return nil
	}

	if s.cfg.HistoryTTL > 0 {
		s.cache.Set(key, series, s.cfg.HistoryTTL)
	}
	return series
}

// RefreshCurrent fetches fresh current conditions for a tracked location
// and appends them to the store. Used by the scheduler. Tracked locations
// come from config as bare city names, so unresolved ones are geocoded
// first (served from cache after the first run).
func (s *Service) RefreshCurrent(ctx context.Context, loc Location, unit Unit) error {
	if loc.Lat == 0 && loc.Lon == 0 {
		resolved, err := s.ResolveCity(ctx, loc.City)
		if err != nil {
			return fmt.Errorf("geocoding tracked location %s: %w", loc.Key(), err)
		}
		loc.Lat = resolved.Lat
		loc.Lon = resolved.Lon
	}

	cond, err := s.current.Current(ctx, loc, unit)
	if err != nil {
		return err
	}
	s.store.SaveConditions(loc, cond)
	return nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (CurrentConditions, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]CurrentConditions, error) {
	return s.store.GetRange(loc, from, to)
}
