package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/skycast-dev/skycast/internal/weather"
)

// ArchiveProvider implements weather.HistoricalProvider against the
// Open-Meteo archive API, which serves hourly historical observations.
type ArchiveProvider struct {
	name    string
	baseURL string
	rc      *resilientClient
}

func NewArchiveProvider(client *http.Client) *ArchiveProvider {
	return &ArchiveProvider{
		name:    "openmeteo-archive",
		baseURL: "https://archive-api.open-meteo.com/v1/archive",
		rc:      newResilientClient(client, "openmeteo-archive"),
	}
}

func (p *ArchiveProvider) Name() string {
	return p.name
}

// archivePayload mirrors the parallel-array layout of the archive response.
// Pointers keep null entries (gaps in the station record) distinguishable
// from zeroes.
type archivePayload struct {
	Hourly struct {
		Time          []string   `json:"time"`
		Temperature   []*float64 `json:"temperature_2m"`
		Humidity      []*float64 `json:"relative_humidity_2m"`
		Precipitation []*float64 `json:"precipitation"`
		Pressure      []*float64 `json:"pressure_msl"`
		WindSpeed     []*float64 `json:"wind_speed_10m"`
		CloudCover    []*float64 `json:"cloud_cover"`
	} `json:"hourly"`
}

// FetchHourly retrieves the hourly series for an inclusive date range.
// Hours with any missing field are skipped; temperatures are Celsius.
func (p *ArchiveProvider) FetchHourly(ctx context.Context, loc weather.Location, start, end time.Time) (weather.HistoricalSeries, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", loc.Lat))
		values.Set("longitude", fmt.Sprintf("%f", loc.Lon))
		values.Set("start_date", start.Format("2006-01-02"))
		values.Set("end_date", end.Format("2006-01-02"))
		values.Set("hourly", "temperature_2m,relative_humidity_2m,precipitation,pressure_msl,wind_speed_10m,cloud_cover")
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := p.rc.do(ctx, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload archivePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	h := payload.Hourly
	series := make(weather.HistoricalSeries, 0, len(h.Time))
	for i := range h.Time {
		if i >= len(h.Temperature) || i >= len(h.Humidity) || i >= len(h.Precipitation) ||
			i >= len(h.Pressure) || i >= len(h.WindSpeed) || i >= len(h.CloudCover) {
			break
		}
		if h.Temperature[i] == nil || h.Humidity[i] == nil || h.Precipitation[i] == nil ||
			h.Pressure[i] == nil || h.WindSpeed[i] == nil || h.CloudCover[i] == nil {
			continue
		}

		ts, err := time.Parse(openMeteoTimeLayout, h.Time[i])
		if err != nil {
			continue
		}

		series = append(series, weather.HourlyObservation{
			Timestamp:     ts,
			Temperature:   *h.Temperature[i],
			Humidity:      *h.Humidity[i],
			Precipitation: *h.Precipitation[i],
			Pressure:      *h.Pressure[i],
			WindSpeed:     *h.WindSpeed[i],
			CloudCover:    *h.CloudCover[i],
		})
	}

	return series, nil
}
