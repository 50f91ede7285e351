package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/skycast-dev/skycast/internal/forecast"
	"github.com/skycast-dev/skycast/internal/store"
	"github.com/skycast-dev/skycast/internal/weather"
	"github.com/skycast-dev/skycast/internal/weather/providers"
)

var validate = validator.New()

const forecastTimeout = 60 * time.Second

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, defaultUnit weather.Unit) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		unit, err := parseUnit(c, defaultUnit)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 15*time.Second)
		defer cancel()

		loc, err := resolvePlace(ctx, c, service)
		if err != nil {
			return err
		}

		cond, err := service.Current(ctx, loc, unit)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch current weather")
		}

		return c.JSON(cond)
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c, defaultUnit); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), forecastTimeout)
		defer cancel()

		loc, err := resolvePlace(ctx, c, service)
		if err != nil {
			return err
		}

		fc, err := service.Forecast(ctx, loc, req.Days, weather.Unit(req.Unit))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute forecast")
		}
		if len(fc) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "forecast unavailable for requested location")
		}

		return c.JSON(fiber.Map{
			"location": loc,
			"unit":     req.Unit,
			"days":     req.Days,
			"forecast": fc,
		})
	})

	v1.Get("/weather/locate", func(c *fiber.Ctx) error {
		unit, err := parseUnit(c, defaultUnit)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 15*time.Second)
		defer cancel()

		loc, err := service.Locate(ctx)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "could not determine location from IP address")
		}

		cond, err := service.Current(ctx, loc, unit)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch current weather")
		}

		return c.JSON(fiber.Map{
			"location": loc,
			"current":  cond,
		})
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := weather.Location{City: req.City, Country: req.Country}
		conditions, err := service.GetRange(loc, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"location":   loc,
			"from":       req.From,
			"to":         req.To,
			"conditions": conditions,
		})
	})
}

// resolvePlace turns the request's city or lat/lon query parameters into a
// resolved location. Errors are already fiber errors.
func resolvePlace(ctx context.Context, c *fiber.Ctx, service *weather.Service) (weather.Location, error) {
	city := c.Query("city")
	latStr := c.Query("lat")
	lonStr := c.Query("lon")

	switch {
	case city != "":
		loc, err := service.ResolveCity(ctx, city)
		if err != nil {
			if errors.Is(err, providers.ErrNoResults) {
				return weather.Location{}, fiber.NewError(fiber.StatusNotFound, "city not found")
			}
			return weather.Location{}, fiber.NewError(fiber.StatusBadGateway, "geocoding failed")
		}
		return loc, nil

	case latStr != "" && lonStr != "":
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return weather.Location{}, fiber.NewError(fiber.StatusBadRequest, "invalid lat")
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return weather.Location{}, fiber.NewError(fiber.StatusBadRequest, "invalid lon")
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return weather.Location{}, fiber.NewError(fiber.StatusBadRequest, "lat/lon out of range")
		}
		return service.ResolveCoords(ctx, lat, lon), nil

	default:
		return weather.Location{}, fiber.NewError(fiber.StatusBadRequest, "city or lat/lon query parameters are required")
	}
}

func parseUnit(c *fiber.Ctx, def weather.Unit) (weather.Unit, error) {
	u := c.Query("unit")
	if u == "" {
		return def, nil
	}
	unit := weather.Unit(u)
	if unit != weather.UnitCelsius && unit != weather.UnitFahrenheit {
		return "", errors.New("unit must be celsius or fahrenheit")
	}
	return unit, nil
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Days int    `validate:"min=1,max=7"`
	Unit string `validate:"oneof=celsius fahrenheit"`
}

func (f *forecastQuery) bind(c *fiber.Ctx, defaultUnit weather.Unit) error {
	f.Days = forecast.DefaultDays
	if s := c.Query("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("days must be an integer")
		}
		f.Days = n
	}

	f.Unit = string(defaultUnit)
	if s := c.Query("unit"); s != "" {
		f.Unit = s
	}
	return nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	City    string    `validate:"required"`
	Country string    `validate:"required"`
	From    time.Time `validate:"required"`
	To      time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.City = c.Query("city")
	h.Country = c.Query("country")

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
