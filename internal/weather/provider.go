package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrLocationNotFound is returned when a lookup by name matched no place.
	ErrLocationNotFound = errors.New("location not found")
	// ErrDataUnavailable covers network, provider and payload failures.
	ErrDataUnavailable = errors.New("weather data unavailable")
)

// Gateway abstracts a current-conditions source (e.g. OpenWeatherMap, WeatherAPI).
type Gateway interface {
	Name() string
	ByCoordinates(ctx context.Context, coords Coordinates) (WeatherRecord, error)
	ByCityName(ctx context.Context, name string) (WeatherRecord, error)
}

// ClimateGateway produces a trend summary for a location.
type ClimateGateway interface {
	Summary(ctx context.Context, coords Coordinates) (ClimateSummary, error)
}

// Store is the contract the in-memory panel store must satisfy.
type Store interface {
	SavePanel(coords Coordinates, panel Panel)
	GetLatest(coords Coordinates) (Panel, error)
	GetRange(coords Coordinates, from, to time.Time) ([]Panel, error)
}
