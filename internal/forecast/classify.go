package forecast

import (
	"github.com/skycast-dev/skycast/internal/weather"
)

// Classify maps a day's aggregated precipitation (mm), wind speed and cloud
// cover (percent) onto a WMO weather code. The table is a strict priority
// list: the first matching row wins, so precipitation=3.0 with wind=20
// is always a 99, never a 95 or 65.
func Classify(precipitation, windSpeed, cloudCover float64) weather.Code {
	switch {
	case precipitation > 2.5 && windSpeed > 15:
		return 99 // thunderstorm with heavy hail
	case precipitation > 2.5 && windSpeed > 10:
		return 95 // thunderstorm
	case precipitation > 2.5:
		return 65 // heavy rain
	case precipitation > 0.5 && windSpeed > 10:
		return 82 // rain showers (violent)
	case precipitation > 0.5:
		return 63 // moderate rain
	case precipitation > 0.1:
		return 61 // slight rain
	case cloudCover > 80:
		return 3 // overcast
	case cloudCover > 50:
		return 2 // partly cloudy
	case cloudCover > 20:
		return 1 // mainly clear
	default:
		return 0 // clear sky
	}
}
