package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/climate-chat/internal/chat"
	"github.com/i474232898/climate-chat/internal/location"
	"github.com/i474232898/climate-chat/internal/store"
	"github.com/i474232898/climate-chat/internal/weather"
)

var validate = validator.New()

// Conversation bundles the chat router with its session registry.
type Conversation struct {
	Router   *chat.Router
	Sessions *chat.Sessions
	// TurnTimeout bounds a single chat turn; zero means defaultTurnTimeout.
	TurnTimeout time.Duration
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, conv Conversation) {
	v1 := app.Group("/api/v1")

	registerChatRoutes(v1, conv)

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		var q currentQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var (
			rec weather.WeatherRecord
			err error
		)
		if q.City != "" {
			rec, err = service.ByCityName(c.UserContext(), q.City)
		} else {
			rec, err = service.ByCoordinates(c.UserContext(), q.coords.coordinates)
		}
		if err != nil {
			return gatewayError(err, "failed to fetch weather data")
		}

		return c.JSON(fiber.Map{
			"weather": rec,
			"icon":    rec.Icon(),
			"card":    chat.NewCard(rec),
		})
	})

	v1.Get("/climate", func(c *fiber.Ctx) error {
		coords, err := resolveCoordinates(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		summary, err := service.Climate(c.UserContext(), coords)
		if err != nil {
			return gatewayError(err, "failed to fetch climate data")
		}

		return c.JSON(fiber.Map{
			"coordinates": coords,
			"climate":     summary,
		})
	})

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		coords, err := resolveCoordinates(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// The home panel is kept fresh by the scheduler.
		if coords == service.Home() {
			if panel, err := service.Latest(coords); err == nil {
				return c.JSON(panel)
			}
		}
		return c.JSON(service.Panel(c.UserContext(), coords))
	})

	v1.Get("/dashboard/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		panels, err := service.History(req.Coordinates, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no panel history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch panel history")
		}

		return c.JSON(fiber.Map{
			"coordinates": req.Coordinates,
			"from":        req.From,
			"to":          req.To,
			"panels":      panels,
		})
	})
}

// gatewayError maps gateway failures onto HTTP statuses.
func gatewayError(err error, fallback string) error {
	switch {
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, "location not found")
	case errors.Is(err, weather.ErrDataUnavailable):
		return fiber.NewError(fiber.StatusBadGateway, "data unavailable, please try again later")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}

// coordsQuery holds optional lat/lon query parameters.
type coordsQuery struct {
	Lat string `validate:"omitempty,latitude"`
	Lon string `validate:"omitempty,longitude"`

	coordinates weather.Coordinates
}

func (q *coordsQuery) bind(c *fiber.Ctx) error {
	q.Lat = c.Query("lat")
	q.Lon = c.Query("lon")
	if err := validate.Struct(q); err != nil {
		return err
	}
	if (q.Lat == "") != (q.Lon == "") {
		return errors.New("lat and lon must be given together")
	}
	if q.Lat == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return err
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return err
	}
	q.coordinates = weather.Coordinates{Lat: lat, Lon: lon}
	return nil
}

func (q *coordsQuery) present() bool {
	return q.Lat != ""
}

// Locate implements location.Locator from the query parameters.
func (q *coordsQuery) Locate(context.Context) (weather.Coordinates, error) {
	if !q.present() {
		return weather.Coordinates{}, errors.New("no coordinates in request")
	}
	return q.coordinates, nil
}

// resolveCoordinates reads lat/lon, falling back to the default location
// when the client sent none.
func resolveCoordinates(c *fiber.Ctx) (weather.Coordinates, error) {
	var q coordsQuery
	if err := q.bind(c); err != nil {
		return weather.Coordinates{}, err
	}
	return location.ResolveCoordinates(c.UserContext(), &q), nil
}

// currentQuery selects a location by name or by coordinates.
type currentQuery struct {
	City string `validate:"omitempty,max=100"`

	coords coordsQuery
}

func (q *currentQuery) bind(c *fiber.Ctx) error {
	q.City = c.Query("city")
	if err := validate.Struct(q); err != nil {
		return err
	}
	if err := q.coords.bind(c); err != nil {
		return err
	}
	if q.City == "" && !q.coords.present() {
		return errors.New("city or lat and lon query parameters are required")
	}
	return nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Coordinates weather.Coordinates
	From        time.Time `validate:"required"`
	To          time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	coords, err := resolveCoordinates(c)
	if err != nil {
		return err
	}
	h.Coordinates = coords

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
