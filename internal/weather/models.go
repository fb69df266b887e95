package weather

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Category is the coarse condition group used for icon selection.
type Category string

const (
	CategoryClear        Category = "clear"
	CategoryClouds       Category = "clouds"
	CategoryRain         Category = "rain"
	CategoryDrizzle      Category = "drizzle"
	CategoryThunderstorm Category = "thunderstorm"
	CategorySnow         Category = "snow"
	CategoryMist         Category = "mist" // mist, fog and haze
	CategoryOther        Category = "other"
)

// CategoryFromProvider maps the provider's coarse category string
// (e.g. OpenWeatherMap's weather[0].main) onto a Category. Matching is
// case-insensitive; anything unrecognized becomes CategoryOther.
func CategoryFromProvider(main string) Category {
	switch strings.ToLower(strings.TrimSpace(main)) {
	case "clear":
		return CategoryClear
	case "clouds":
		return CategoryClouds
	case "rain":
		return CategoryRain
	case "drizzle":
		return CategoryDrizzle
	case "thunderstorm":
		return CategoryThunderstorm
	case "snow":
		return CategorySnow
	case "mist", "fog", "haze":
		return CategoryMist
	default:
		return CategoryOther
	}
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Key returns a canonical string key for indexing these coordinates in stores.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.4f:%.4f", c.Lat, c.Lon)
}

// WeatherRecord is the normalized current-conditions snapshot for one location.
// Values are kept as reported; rounding is a presentation concern.
type WeatherRecord struct {
	Location    string    `json:"location"`
	Country     string    `json:"country"`
	Temperature float64   `json:"temperatureC"`
	TempMin     float64   `json:"tempMinC"`
	TempMax     float64   `json:"tempMaxC"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	WindSpeed   float64   `json:"windSpeedKph"`
	Humidity    float64   `json:"humidityPercent"`
	IsDay       bool      `json:"isDay"`
	ObservedAt  time.Time `json:"observedAt"` // always UTC
}

// Icon names the glyph shown next to a record.
func (r WeatherRecord) Icon() string {
	switch r.Category {
	case CategoryClear:
		if r.IsDay {
			return "sun"
		}
		return "moon"
	case CategoryClouds:
		return "cloud"
	case CategoryRain, CategoryDrizzle:
		return "cloud-rain"
	case CategoryThunderstorm:
		return "bolt"
	case CategorySnow:
		return "snowflake"
	case CategoryMist:
		return "smog"
	default:
		return "cloud"
	}
}

// Round rounds half away from zero, matching how temperatures are displayed.
func Round(v float64) int {
	return int(math.Round(v))
}

// ClimateSummary describes a temperature and precipitation trend for a location.
// Synthetic is true when the values are generated placeholders and not
// measured data; callers must surface that to users.
type ClimateSummary struct {
	AvgTemperature       float64 `json:"avgTemperatureC"`
	TemperatureTrend     float64 `json:"temperatureTrendC"`
	TemperatureChangePct int     `json:"temperatureChangePercent"`
	AvgPrecipitation     float64 `json:"avgPrecipitationMm"`
	PrecipitationTrend   float64 `json:"precipitationTrendMm"`
	PrecipitationPct     int     `json:"precipitationChangePercent"`
	Summary              string  `json:"summary"`
	Synthetic            bool    `json:"synthetic"`
}
