package forecast

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/skycast-dev/skycast/internal/weather"
)

var (
	// ErrInsufficientData is returned when the series is too short to
	// produce usable feature rows or to train on.
	ErrInsufficientData = errors.New("insufficient historical data")

	// ErrModelFit is returned when the regression solve fails numerically.
	ErrModelFit = errors.New("model fit failed")
)

// Lag and rolling-window configuration. Lags and windows are in hours and
// apply to temperature, humidity and pressure.
var (
	lagSteps       = []int{1, 2, 3, 6, 12, 24}
	rollingWindows = []int{6, 12, 24}
)

const (
	// warmupHours is the number of leading rows that cannot carry a full
	// 24-hour lag and are always dropped.
	warmupHours = 24

	// minTrainingRows is the minimum number of usable feature rows needed
	// to fit a model at all.
	minTrainingRows = 100

	// tempCol is the column index of the raw temperature feature. The
	// autoregressive loop feeds predictions back through this column.
	tempCol = 0
)

// MinMaxScaler is a reversible per-column linear transform onto [0,1].
// A degenerate column (min == max) scales to 0 and inverts to min.
type MinMaxScaler struct {
	Min float64
	Max float64
}

// FitScaler computes the min/max of a value slice.
func FitScaler(values []float64) MinMaxScaler {
	s := MinMaxScaler{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}

// Scale maps x into [0,1].
func (s MinMaxScaler) Scale(x float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	return (x - s.Min) / (s.Max - s.Min)
}

// Inverse maps a scaled value back to physical units. Inverse(Scale(x)) == x
// up to floating-point error.
func (s MinMaxScaler) Inverse(x float64) float64 {
	if s.Max == s.Min {
		return s.Min
	}
	return x*(s.Max-s.Min) + s.Min
}

// Dataset is the scaled feature matrix and target vector derived from a
// historical series. Rows are chronological; every row has all lag and
// rolling features populated.
type Dataset struct {
	X    [][]float64
	Y    []float64
	Cols int

	// TargetScaler inverts scaled temperature predictions back to Celsius.
	TargetScaler MinMaxScaler
}

// featureCount is the width of a feature row: six raw fields, four calendar
// fields, one lag column per (field, lag) pair and one rolling column per
// (field, window) pair over temperature/humidity/pressure.
func featureCount() int {
	return 6 + 4 + 3*len(lagSteps) + 3*len(rollingWindows)
}

// BuildDataset turns a historical series into a scaled supervised-learning
// dataset. The first 24 rows of the series cannot carry complete lag and
// rolling features and are dropped, so a series shorter than 25 hours has
// no usable rows and yields ErrInsufficientData.
func BuildDataset(series weather.HistoricalSeries) (*Dataset, error) {
	usable := len(series) - warmupHours
	if usable <= 0 {
		return nil, fmt.Errorf("%w: %d hourly rows, need at least %d", ErrInsufficientData, len(series), warmupHours+1)
	}

	cols := featureCount()
	raw := make([][]float64, usable)
	target := make([]float64, usable)

	for r := 0; r < usable; r++ {
		i := r + warmupHours
		obs := series[i]
		row := make([]float64, 0, cols)

		// Raw fields. Temperature must stay at column 0.
		row = append(row,
			obs.Temperature,
			obs.Humidity,
			obs.Precipitation,
			obs.Pressure,
			obs.WindSpeed,
			obs.CloudCover,
		)

		// Calendar fields.
		ts := obs.Timestamp
		row = append(row,
			float64(ts.Hour()),
			float64(ts.YearDay()),
			float64(int(ts.Month())),
			float64(int(ts.Weekday())),
		)

		// Lag features.
		for _, lag := range lagSteps {
			prev := series[i-lag]
			row = append(row, prev.Temperature, prev.Humidity, prev.Pressure)
		}

		// Trailing rolling means, inclusive of the current hour.
		for _, window := range rollingWindows {
			row = append(row,
				rollingMean(series, i, window, func(o weather.HourlyObservation) float64 { return o.Temperature }),
				rollingMean(series, i, window, func(o weather.HourlyObservation) float64 { return o.Humidity }),
				rollingMean(series, i, window, func(o weather.HourlyObservation) float64 { return o.Pressure }),
			)
		}

		raw[r] = row
		target[r] = obs.Temperature
	}

	// Independent min-max scaling per feature column.
	scaled := make([][]float64, usable)
	for r := range scaled {
		scaled[r] = make([]float64, cols)
	}
	column := make([]float64, usable)
	for c := 0; c < cols; c++ {
		for r := 0; r < usable; r++ {
			column[r] = raw[r][c]
		}
		sc := FitScaler(column)
		for r := 0; r < usable; r++ {
			scaled[r][c] = sc.Scale(raw[r][c])
		}
	}

	targetScaler := FitScaler(target)
	y := make([]float64, usable)
	for r := range target {
		y[r] = targetScaler.Scale(target[r])
	}

	return &Dataset{
		X:            scaled,
		Y:            y,
		Cols:         cols,
		TargetScaler: targetScaler,
	}, nil
}

// rollingMean averages field over the window hours ending at index i.
func rollingMean(series weather.HistoricalSeries, i, window int, field func(weather.HourlyObservation) float64) float64 {
	vals := make([]float64, window)
	for k := 0; k < window; k++ {
		vals[k] = field(series[i-window+1+k])
	}
	return stat.Mean(vals, nil)
}
