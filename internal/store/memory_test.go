package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/climate-chat/internal/weather"
)

var nyc = weather.Coordinates{Lat: 40.7128, Lon: -74.0060}

func panelAt(ts time.Time) weather.Panel {
	return weather.Panel{Coordinates: nyc, FetchedAt: ts}
}

func TestGetLatestEmpty(t *testing.T) {
	s := NewMemoryStore(10, time.Hour)
	_, err := s.GetLatest(nyc)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.SavePanel(nyc, panelAt(base.Add(time.Duration(i)*time.Minute)))
	}

	got, err := s.GetRange(nyc, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, base.Add(4*time.Minute), got[1].FetchedAt)
}

func TestRetentionByAgeKeepsNewest(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.SavePanel(nyc, panelAt(now.Add(-3*time.Hour)))
	s.SavePanel(nyc, panelAt(now.Add(-2*time.Hour)))

	latest, err := s.GetLatest(nyc)
	require.NoError(t, err)
	require.Equal(t, now.Add(-2*time.Hour), latest.FetchedAt)

	s.SavePanel(nyc, panelAt(now.Add(-10*time.Minute)))
	got, err := s.GetRange(nyc, now.Add(-4*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestGetRangeOutsideWindow(t *testing.T) {
	s := NewMemoryStore(0, 0)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SavePanel(nyc, panelAt(base))

	_, err := s.GetRange(nyc, base.Add(time.Minute), base.Add(time.Hour))
	require.ErrorIs(t, err, ErrNotFound)
}
