package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/climate-chat/internal/location"
	"github.com/i474232898/climate-chat/internal/weather"
)

// Provider and climate source names accepted in configuration.
const (
	ProviderOpenWeather = "openweather"
	ProviderWeatherAPI  = "weatherapi"

	ClimateSynthetic = "synthetic"
	ClimateOpenMeteo = "openmeteo"
)

// Parameter Store keys, relative to PARAM_PREFIX.
const (
	ParamOpenWeatherKey = "openweather-api-key"
	ParamWeatherAPIKey  = "weatherapi-api-key"
	ParamGeminiKey      = "gemini-api-key"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeminiAPIKey      string

	// ParamPrefix enables AWS Parameter Store lookups for the keys above.
	ParamPrefix string

	WeatherProvider string
	ClimateSource   string
	GeminiModel     string

	Home weather.Coordinates

	// PanelRefreshInterval controls how often the home panel is refreshed.
	PanelRefreshInterval time.Duration

	// In-memory store retention.
	StoreMaxHistory int           // max number of panels per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of panels (0 = unlimited)

	SessionIdleTTL      time.Duration
	ClimateContextDelay time.Duration
	ClimateLatency      time.Duration
	HTTPTimeout         time.Duration

	LogLevel       slog.Level
	TracingEnabled bool

	Port string
}

// SecretGetter resolves a key below the configured parameter prefix.
type SecretGetter interface {
	Get(ctx context.Context, key string) (string, error)
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "err", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.OpenWeatherAPIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	cfg.WeatherAPIKey = strings.TrimSpace(os.Getenv("WEATHERAPI_API_KEY"))
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.ParamPrefix = strings.TrimSpace(os.Getenv("PARAM_PREFIX"))

	cfg.WeatherProvider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", ProviderOpenWeather))
	if cfg.WeatherProvider != ProviderOpenWeather && cfg.WeatherProvider != ProviderWeatherAPI {
		return nil, fmt.Errorf("invalid WEATHER_PROVIDER %q", cfg.WeatherProvider)
	}
	cfg.ClimateSource = strings.ToLower(getenvDefault("CLIMATE_SOURCE", ClimateSynthetic))
	if cfg.ClimateSource != ClimateSynthetic && cfg.ClimateSource != ClimateOpenMeteo {
		return nil, fmt.Errorf("invalid CLIMATE_SOURCE %q", cfg.ClimateSource)
	}
	cfg.GeminiModel = os.Getenv("GEMINI_MODEL")

	if cfg.Home, err = loadHome(); err != nil {
		return nil, err
	}

	if cfg.PanelRefreshInterval, err = getenvDuration("PANEL_REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = getenvDuration("SESSION_IDLE_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.ClimateContextDelay, err = getenvDuration("CLIMATE_CONTEXT_DELAY", "1s"); err != nil {
		return nil, err
	}
	if cfg.ClimateLatency, err = getenvDuration("CLIMATE_LATENCY", "1500ms"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenvDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.TracingEnabled = getenvBool("TRACING_ENABLED", false)
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// ApplySecrets overwrites credentials with values from the parameter store.
// A parameter that cannot be read keeps the environment value.
func (c *AppConfig) ApplySecrets(ctx context.Context, store SecretGetter) error {
	if store == nil {
		return errors.New("config: secret store is nil")
	}
	targets := []struct {
		key string
		dst *string
	}{
		{ParamOpenWeatherKey, &c.OpenWeatherAPIKey},
		{ParamWeatherAPIKey, &c.WeatherAPIKey},
		{ParamGeminiKey, &c.GeminiAPIKey},
	}
	var errs []error
	for _, t := range targets {
		v, err := store.Get(ctx, t.key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			*t.dst = v
		}
	}
	if len(errs) == len(targets) {
		return fmt.Errorf("config: no secrets could be read: %w", errors.Join(errs...))
	}
	for _, err := range errs {
		slog.Warn("secret not loaded from parameter store", "err", err)
	}
	return nil
}

// ProviderKey returns the credential for the selected weather provider.
func (c *AppConfig) ProviderKey() string {
	if c.WeatherProvider == ProviderWeatherAPI {
		return c.WeatherAPIKey
	}
	return c.OpenWeatherAPIKey
}

func loadHome() (weather.Coordinates, error) {
	latStr, lonStr := os.Getenv("HOME_LAT"), os.Getenv("HOME_LON")
	if latStr == "" && lonStr == "" {
		return location.Fallback, nil
	}
	if latStr == "" || lonStr == "" {
		return weather.Coordinates{}, errors.New("HOME_LAT and HOME_LON must be set together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return weather.Coordinates{}, fmt.Errorf("invalid HOME_LAT %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return weather.Coordinates{}, fmt.Errorf("invalid HOME_LON %q", lonStr)
	}
	return weather.Coordinates{Lat: lat, Lon: lon}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
