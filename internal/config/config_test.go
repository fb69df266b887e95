package config

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/climate-chat/internal/location"
	"github.com/i474232898/climate-chat/internal/weather"
)

var envKeys = []string{
	"OPENWEATHER_API_KEY", "WEATHERAPI_API_KEY", "GEMINI_API_KEY", "PARAM_PREFIX",
	"WEATHER_PROVIDER", "CLIMATE_SOURCE", "GEMINI_MODEL", "HOME_LAT", "HOME_LON",
	"PANEL_REFRESH_INTERVAL", "STORE_MAX_HISTORY", "STORE_MAX_AGE", "SESSION_IDLE_TTL",
	"CLIMATE_CONTEXT_DELAY", "CLIMATE_LATENCY", "HTTP_TIMEOUT", "LOG_LEVEL",
	"TRACING_ENABLED", "PORT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ProviderOpenWeather, cfg.WeatherProvider)
	require.Equal(t, ClimateSynthetic, cfg.ClimateSource)
	require.Equal(t, location.Fallback, cfg.Home)
	require.Equal(t, 15*time.Minute, cfg.PanelRefreshInterval)
	require.Equal(t, 96, cfg.StoreMaxHistory)
	require.Equal(t, 24*time.Hour, cfg.StoreMaxAge)
	require.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	require.Equal(t, time.Second, cfg.ClimateContextDelay)
	require.Equal(t, 1500*time.Millisecond, cfg.ClimateLatency)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
	require.False(t, cfg.TracingEnabled)
	require.Equal(t, "8080", cfg.Port)
	require.Empty(t, cfg.GeminiAPIKey)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHERAPI_API_KEY", " wa-key ")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("WEATHER_PROVIDER", "WeatherAPI")
	t.Setenv("CLIMATE_SOURCE", "openmeteo")
	t.Setenv("HOME_LAT", "35.6762")
	t.Setenv("HOME_LON", "139.6503")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("CLIMATE_CONTEXT_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ProviderWeatherAPI, cfg.WeatherProvider)
	require.Equal(t, "wa-key", cfg.ProviderKey())
	require.Equal(t, ClimateOpenMeteo, cfg.ClimateSource)
	require.Equal(t, weather.Coordinates{Lat: 35.6762, Lon: 139.6503}, cfg.Home)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
	require.True(t, cfg.TracingEnabled)
	require.Equal(t, 250*time.Millisecond, cfg.ClimateContextDelay)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"provider":      {"WEATHER_PROVIDER": "darksky"},
		"climate":       {"CLIMATE_SOURCE": "noaa"},
		"lat only":      {"HOME_LAT": "10"},
		"lat range":     {"HOME_LAT": "91", "HOME_LON": "0"},
		"lon parse":     {"HOME_LAT": "1", "HOME_LON": "east"},
		"interval":      {"PANEL_REFRESH_INTERVAL": "soon"},
		"negative":      {"CLIMATE_LATENCY": "-1s"},
		"log level":     {"LOG_LEVEL": "loud"},
		"store max age": {"STORE_MAX_AGE": "1 day"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

type fakeSecrets map[string]string

func (f fakeSecrets) Get(_ context.Context, key string) (string, error) {
	v, ok := f[key]
	if !ok {
		return "", errors.New("missing " + key)
	}
	return v, nil
}

func TestApplySecretsOverridesEnv(t *testing.T) {
	cfg := &AppConfig{OpenWeatherAPIKey: "env-ow", WeatherAPIKey: "env-wa"}
	err := cfg.ApplySecrets(context.Background(), fakeSecrets{
		ParamOpenWeatherKey: "ssm-ow",
		ParamGeminiKey:      "ssm-g",
	})
	require.NoError(t, err)
	require.Equal(t, "ssm-ow", cfg.OpenWeatherAPIKey)
	require.Equal(t, "env-wa", cfg.WeatherAPIKey)
	require.Equal(t, "ssm-g", cfg.GeminiAPIKey)
	require.Equal(t, "ssm-ow", cfg.ProviderKey())
}

func TestApplySecretsAllFailing(t *testing.T) {
	cfg := &AppConfig{OpenWeatherAPIKey: "env-ow"}
	err := cfg.ApplySecrets(context.Background(), fakeSecrets{})
	require.Error(t, err)
	require.Equal(t, "env-ow", cfg.OpenWeatherAPIKey)

	require.Error(t, cfg.ApplySecrets(context.Background(), nil))
}
