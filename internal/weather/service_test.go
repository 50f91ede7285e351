package weather

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubHistorical struct {
	series HistoricalSeries
	err    error
	calls  int
}

func (s *stubHistorical) Name() string { return "stub-historical" }

func (s *stubHistorical) FetchHourly(ctx context.Context, loc Location, start, end time.Time) (HistoricalSeries, error) {
	s.calls++
	return s.series, s.err
}

type stubEngine struct {
	gotSeries HistoricalSeries
	forecast  Forecast
}

func (e *stubEngine) Forecast(series HistoricalSeries, days int, unit Unit) (Forecast, error) {
	e.gotSeries = series
	return e.forecast, nil
}

type stubGeocoder struct {
	loc Location
	err error
}

func (g *stubGeocoder) Geocode(ctx context.Context, name string) (Location, error) {
	return g.loc, g.err
}

func (g *stubGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (Location, error) {
	return g.loc, g.err
}

type stubCurrent struct {
	cond CurrentConditions
	err  error
}

func (c *stubCurrent) Name() string { return "stub-current" }

func (c *stubCurrent) Current(ctx context.Context, loc Location, unit Unit) (CurrentConditions, error) {
	return c.cond, c.err
}

type stubStore struct {
	saved []CurrentConditions
}

func (s *stubStore) SaveConditions(loc Location, cond CurrentConditions) {
	s.saved = append(s.saved, cond)
}

func (s *stubStore) GetLatest(loc Location) (CurrentConditions, error) {
	if len(s.saved) == 0 {
		return CurrentConditions{}, errors.New("empty")
	}
	return s.saved[len(s.saved)-1], nil
}

func (s *stubStore) GetRange(loc Location, from, to time.Time) ([]CurrentConditions, error) {
	return s.saved, nil
}

func TestForecastDegradesUpstreamFailure(t *testing.T) {
	hist := &stubHistorical{err: errors.New("upstream down")}
	engine := &stubEngine{}
	svc := NewService(&stubStore{}, engine, nil, hist, nil, nil, ServiceConfig{})

	fc, err := svc.Forecast(context.Background(), Location{City: "Paris"}, 5, UnitCelsius)
	if err != nil {
		t.Fatalf("Forecast: unexpected error %v", err)
	}
	if len(fc) != 0 {
		t.Fatalf("got %d records, want 0", len(fc))
	}
	// The engine must still run and see an empty series, not an error.
	if len(engine.gotSeries) != 0 {
		t.Errorf("engine received %d rows, want 0", len(engine.gotSeries))
	}
}

func TestForecastCachesHistoricalSeries(t *testing.T) {
	series := make(HistoricalSeries, 48)
	hist := &stubHistorical{series: series}
	svc := NewService(&stubStore{}, &stubEngine{}, nil, hist, nil, nil, ServiceConfig{
		HistoryTTL: time.Minute,
	})

	loc := Location{City: "Paris", Lat: 48.85, Lon: 2.35}
	for i := 0; i < 3; i++ {
		if _, err := svc.Forecast(context.Background(), loc, 5, UnitCelsius); err != nil {
			t.Fatalf("Forecast: %v", err)
		}
	}

	if hist.calls != 1 {
		t.Errorf("historical provider called %d times, want 1 (cached)", hist.calls)
	}
}

func TestRefreshCurrentResolvesTrackedCity(t *testing.T) {
	st := &stubStore{}
	geo := &stubGeocoder{loc: Location{City: "Paris", Country: "FR", Lat: 48.85, Lon: 2.35}}
	cur := &stubCurrent{cond: CurrentConditions{Temperature: 21}}
	svc := NewService(st, &stubEngine{}, cur, nil, geo, nil, ServiceConfig{})

	if err := svc.RefreshCurrent(context.Background(), Location{City: "Paris", Country: "FR"}, UnitCelsius); err != nil {
		t.Fatalf("RefreshCurrent: %v", err)
	}
	if len(st.saved) != 1 {
		t.Fatalf("stored %d conditions, want 1", len(st.saved))
	}
	if st.saved[0].Temperature != 21 {
		t.Errorf("stored temperature %v, want 21", st.saved[0].Temperature)
	}
}

func TestRefreshCurrentGeocodeFailure(t *testing.T) {
	geo := &stubGeocoder{err: errors.New("no results")}
	svc := NewService(&stubStore{}, &stubEngine{}, &stubCurrent{}, nil, geo, nil, ServiceConfig{})

	if err := svc.RefreshCurrent(context.Background(), Location{City: "Nowhere"}, UnitCelsius); err == nil {
		t.Fatal("expected an error when geocoding fails")
	}
}
