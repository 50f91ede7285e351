package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/skycast-dev/skycast/internal/weather"
)

// makeSeries builds a synthetic hourly series starting 2025-01-01T00:00Z.
func makeSeries(n int, obsAt func(i int) weather.HourlyObservation) weather.HistoricalSeries {
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := make(weather.HistoricalSeries, n)
	for i := 0; i < n; i++ {
		obs := obsAt(i)
		obs.Timestamp = base.Add(time.Duration(i) * time.Hour)
		series[i] = obs
	}
	return series
}

// rampObs produces a strictly increasing temperature with fixed other fields.
func rampObs(i int) weather.HourlyObservation {
	return weather.HourlyObservation{
		Temperature:   float64(i),
		Humidity:      50,
		Precipitation: 0,
		Pressure:      1013,
		WindSpeed:     3,
		CloudCover:    10,
	}
}

func TestScalerRoundTrip(t *testing.T) {
	values := []float64{-12.5, 0, 3.25, 99.9, 42}
	s := FitScaler(values)
	for _, v := range values {
		got := s.Inverse(s.Scale(v))
		if math.Abs(got-v) > 1e-9 {
			t.Errorf("round trip of %v = %v", v, got)
		}
	}

	scaled := s.Scale(99.9)
	if scaled < 0 || scaled > 1 {
		t.Errorf("scaled value %v outside [0,1]", scaled)
	}
}

func TestScalerDegenerateColumn(t *testing.T) {
	s := FitScaler([]float64{7, 7, 7})
	if got := s.Scale(7); got != 0 {
		t.Errorf("constant column scaled to %v, want 0", got)
	}
	if got := s.Inverse(0); got != 7 {
		t.Errorf("inverse of constant column = %v, want 7", got)
	}
}

func TestBuildDatasetDropsWarmup(t *testing.T) {
	// Exactly 24 hours leaves no row with a complete 24-hour lag window.
	if _, err := BuildDataset(makeSeries(24, rampObs)); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("24-hour series: got err %v, want ErrInsufficientData", err)
	}

	// One more hour yields exactly one usable row.
	ds, err := BuildDataset(makeSeries(25, rampObs))
	if err != nil {
		t.Fatalf("25-hour series: %v", err)
	}
	if len(ds.X) != 1 || len(ds.Y) != 1 {
		t.Fatalf("25-hour series: got %d rows, want 1", len(ds.X))
	}
}

func TestBuildDatasetEmptySeries(t *testing.T) {
	if _, err := BuildDataset(nil); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("empty series: got err %v, want ErrInsufficientData", err)
	}
}

func TestBuildDatasetComplete(t *testing.T) {
	ds, err := BuildDataset(makeSeries(200, rampObs))
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}

	if got, want := len(ds.X), 200-24; got != want {
		t.Fatalf("row count = %d, want %d", got, want)
	}
	if ds.Cols != featureCount() {
		t.Fatalf("column count = %d, want %d", ds.Cols, featureCount())
	}

	for r, row := range ds.X {
		if len(row) != ds.Cols {
			t.Fatalf("row %d has %d columns, want %d", r, len(row), ds.Cols)
		}
		for c, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("row %d col %d is not finite: %v", r, c, v)
			}
			if v < 0 || v > 1 {
				t.Fatalf("row %d col %d = %v outside [0,1]", r, c, v)
			}
		}
	}
}

func TestBuildDatasetTargetScaler(t *testing.T) {
	ds, err := BuildDataset(makeSeries(100, rampObs))
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}

	// Targets start at hour 24 of the ramp, so the scaler's bounds are the
	// first and last retained temperatures.
	if ds.TargetScaler.Min != 24 || ds.TargetScaler.Max != 99 {
		t.Errorf("target scaler = [%v, %v], want [24, 99]", ds.TargetScaler.Min, ds.TargetScaler.Max)
	}
	if got := ds.TargetScaler.Inverse(ds.Y[0]); math.Abs(got-24) > 1e-9 {
		t.Errorf("first target inverts to %v, want 24", got)
	}
}

func TestRollingMean(t *testing.T) {
	series := makeSeries(30, rampObs)
	temp := func(o weather.HourlyObservation) float64 { return o.Temperature }

	// Trailing mean over hours 5..10 of the ramp.
	if got := rollingMean(series, 10, 6, temp); math.Abs(got-7.5) > 1e-9 {
		t.Errorf("rollingMean = %v, want 7.5", got)
	}
	// Window of one is the value itself.
	if got := rollingMean(series, 10, 1, temp); got != 10 {
		t.Errorf("rollingMean window 1 = %v, want 10", got)
	}
}
