package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	weatherUnavailableText = "Weather data unavailable"
	climateUnavailableText = "Climate data could not be loaded. Please try again later."
)

// Panel is the dashboard view for one location: current conditions and a
// climate trend. Each half fails independently and carries its own error text.
type Panel struct {
	Coordinates  Coordinates     `json:"coordinates"`
	FetchedAt    time.Time       `json:"fetchedAt"`
	Weather      *WeatherRecord  `json:"weather,omitempty"`
	WeatherError string          `json:"weatherError,omitempty"`
	Climate      *ClimateSummary `json:"climate,omitempty"`
	ClimateError string          `json:"climateError,omitempty"`
}

// Service orchestrates the weather and climate gateways and the panel store.
type Service struct {
	store   Store
	gateway Gateway
	climate ClimateGateway
	home    Coordinates
}

// NewService creates a new Service. home is used for scheduled panel refreshes.
func NewService(store Store, gateway Gateway, climate ClimateGateway, home Coordinates) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		climate: climate,
		home:    home,
	}
}

// Home returns the coordinates refreshed by the scheduler.
func (s *Service) Home() Coordinates {
	return s.home
}

// ByCityName delegates to the conditions gateway.
func (s *Service) ByCityName(ctx context.Context, name string) (WeatherRecord, error) {
	if s.gateway == nil {
		return WeatherRecord{}, fmt.Errorf("%w: no weather gateway configured", ErrDataUnavailable)
	}
	return s.gateway.ByCityName(ctx, name)
}

// ByCoordinates delegates to the conditions gateway.
func (s *Service) ByCoordinates(ctx context.Context, coords Coordinates) (WeatherRecord, error) {
	if s.gateway == nil {
		return WeatherRecord{}, fmt.Errorf("%w: no weather gateway configured", ErrDataUnavailable)
	}
	return s.gateway.ByCoordinates(ctx, coords)
}

// Climate delegates to the climate gateway.
func (s *Service) Climate(ctx context.Context, coords Coordinates) (ClimateSummary, error) {
	if s.climate == nil {
		return ClimateSummary{}, fmt.Errorf("%w: no climate source configured", ErrDataUnavailable)
	}
	return s.climate.Summary(ctx, coords)
}

// Panel fetches current conditions and the climate summary concurrently.
// It never fails as a whole; a failing half is reported in the panel.
func (s *Service) Panel(ctx context.Context, coords Coordinates) Panel {
	panel, err := s.fetchPanel(ctx, coords)
	if err != nil {
		slog.Warn("panel partially unavailable", "coords", coords.Key(), "err", err)
	}
	return panel
}

// fetchPanel runs both halves to completion. A failed half still fills its
// error text; the returned error is the first failure.
func (s *Service) fetchPanel(ctx context.Context, coords Coordinates) (Panel, error) {
	panel := Panel{Coordinates: coords}

	// A plain Group: one half failing must not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		rec, err := s.ByCoordinates(ctx, coords)
		if err != nil {
			panel.WeatherError = weatherUnavailableText
			return fmt.Errorf("weather: %w", err)
		}
		panel.Weather = &rec
		return nil
	})
	g.Go(func() error {
		summary, err := s.Climate(ctx, coords)
		if err != nil {
			panel.ClimateError = climateUnavailableText
			return fmt.Errorf("climate: %w", err)
		}
		panel.Climate = &summary
		return nil
	})
	err := g.Wait()

	panel.FetchedAt = time.Now().UTC()
	return panel, err
}

// RefreshHome fetches the home panel and stores it. A panel where both halves
// failed is not stored so the last good one stays available.
func (s *Service) RefreshHome(ctx context.Context) error {
	panel, err := s.fetchPanel(ctx, s.home)
	if panel.Weather == nil && panel.Climate == nil {
		return fmt.Errorf("home panel refresh produced no data: %w", err)
	}
	if err != nil {
		slog.Warn("home panel partially unavailable", "coords", s.home.Key(), "err", err)
	}
	if s.store != nil {
		s.store.SavePanel(s.home, panel)
	}
	return nil
}

// Latest returns the most recently stored panel for coords.
func (s *Service) Latest(coords Coordinates) (Panel, error) {
	if s.store == nil {
		return Panel{}, errors.New("no panel store configured")
	}
	return s.store.GetLatest(coords)
}

// History returns stored panels for coords between from and to.
func (s *Service) History(coords Coordinates, from, to time.Time) ([]Panel, error) {
	if s.store == nil {
		return nil, errors.New("no panel store configured")
	}
	return s.store.GetRange(coords, from, to)
}
