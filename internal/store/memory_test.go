package store

import (
	"errors"
	"testing"
	"time"

	"github.com/skycast-dev/skycast/internal/weather"
)

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(3, 0)
	loc := weather.Location{City: "Paris", Country: "FR"}

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.SaveConditions(loc, weather.CurrentConditions{
			Location:    loc,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			Temperature: float64(i),
		})
	}

	latest, err := s.GetLatest(loc)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if latest.Temperature != 4 {
		t.Errorf("latest temperature = %v, want 4", latest.Temperature)
	}

	all, err := s.GetRange(loc, base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("retained %d entries, want 3", len(all))
	}
}

func TestMemoryStoreUnknownLocation(t *testing.T) {
	s := NewMemoryStore(10, 0)
	loc := weather.Location{City: "Nowhere", Country: "XX"}

	if _, err := s.GetLatest(loc); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLatest: got err %v, want ErrNotFound", err)
	}
	if _, err := s.GetRange(loc, time.Now().Add(-time.Hour), time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRange: got err %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreRangeBounds(t *testing.T) {
	s := NewMemoryStore(0, 0)
	loc := weather.Location{City: "Oslo", Country: "NO"}

	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		s.SaveConditions(loc, weather.CurrentConditions{
			Location:  loc,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
	}

	got, err := s.GetRange(loc, base.Add(time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d entries in range, want 2", len(got))
	}
}
