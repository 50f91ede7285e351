package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/skycast-dev/skycast/internal/weather"
)

// ErrNoResults is returned when geocoding finds no match for the query.
var ErrNoResults = errors.New("no geocoding results")

// GeocodeProvider implements weather.Geocoder against the Open-Meteo
// geocoding API.
type GeocodeProvider struct {
	searchURL  string
	reverseURL string
	rc         *resilientClient
}

func NewGeocodeProvider(client *http.Client) *GeocodeProvider {
	return &GeocodeProvider{
		searchURL:  "https://geocoding-api.open-meteo.com/v1/search",
		reverseURL: "https://geocoding-api.open-meteo.com/v1/reverse",
		rc:         newResilientClient(client, "openmeteo-geocoding"),
	}
}

type geocodeResults struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name"`
		Country   string  `json:"country"`
	} `json:"results"`
}

// Geocode resolves a place name to coordinates, taking the top match.
func (p *GeocodeProvider) Geocode(ctx context.Context, name string) (weather.Location, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", name)
		values.Set("count", "1")
		values.Set("language", "en")
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", p.searchURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	loc, err := p.fetchTopResult(ctx, buildRequest)
	if err != nil {
		return weather.Location{}, err
	}
	if loc.City == "" {
		loc.City = name
	}
	return loc, nil
}

// ReverseGeocode resolves coordinates back to a place label.
func (p *GeocodeProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (weather.Location, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lon))
		values.Set("count", "1")
		values.Set("language", "en")
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", p.reverseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	loc, err := p.fetchTopResult(ctx, buildRequest)
	if err != nil {
		return weather.Location{}, err
	}
	// Keep the caller's exact coordinates rather than the matched place's.
	loc.Lat = lat
	loc.Lon = lon
	if loc.City == "" {
		loc.City = "Current Location"
	}
	return loc, nil
}

func (p *GeocodeProvider) fetchTopResult(ctx context.Context, buildRequest func() (*http.Request, error)) (weather.Location, error) {
	resp, err := p.rc.do(ctx, buildRequest)
	if err != nil {
		return weather.Location{}, err
	}
	defer resp.Body.Close()

	var payload geocodeResults
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Location{}, err
	}
	if len(payload.Results) == 0 {
		return weather.Location{}, ErrNoResults
	}

	top := payload.Results[0]
	return weather.Location{
		City:    top.Name,
		Country: top.Country,
		Lat:     top.Latitude,
		Lon:     top.Longitude,
	}, nil
}

// IPLocateProvider implements weather.IPLocator by resolving the service's
// public IP and looking it up in a geolocation database. Used as the
// location fallback when the caller supplies neither city nor coordinates.
type IPLocateProvider struct {
	ipURL  string
	geoURL string
	rc     *resilientClient
}

func NewIPLocateProvider(client *http.Client) *IPLocateProvider {
	return &IPLocateProvider{
		ipURL:  "https://api64.ipify.org?format=json",
		geoURL: "https://ipapi.co",
		rc:     newResilientClient(client, "iplocate"),
	}
}

// Locate returns the approximate location of the caller's public IP.
func (p *IPLocateProvider) Locate(ctx context.Context) (weather.Location, error) {
	resp, err := p.rc.do(ctx, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, p.ipURL, nil)
	})
	if err != nil {
		return weather.Location{}, err
	}
	defer resp.Body.Close()

	var ipPayload struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ipPayload); err != nil {
		return weather.Location{}, err
	}
	if ipPayload.IP == "" {
		return weather.Location{}, ErrNoResults
	}

	geoResp, err := p.rc.do(ctx, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s/%s/json/", p.geoURL, ipPayload.IP), nil)
	})
	if err != nil {
		return weather.Location{}, err
	}
	defer geoResp.Body.Close()

	var geoPayload struct {
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
		City        string   `json:"city"`
		CountryName string   `json:"country_name"`
	}
	if err := json.NewDecoder(geoResp.Body).Decode(&geoPayload); err != nil {
		return weather.Location{}, err
	}
	if geoPayload.Latitude == nil || geoPayload.Longitude == nil {
		return weather.Location{}, ErrNoResults
	}

	city := geoPayload.City
	if city == "" {
		city = "Unknown"
	}

	return weather.Location{
		City:    city,
		Country: geoPayload.CountryName,
		Lat:     *geoPayload.Latitude,
		Lon:     *geoPayload.Longitude,
	}, nil
}
