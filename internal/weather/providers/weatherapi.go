package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"

	"github.com/i474232898/climate-chat/internal/common"
	"github.com/i474232898/climate-chat/internal/weather"
)

// WeatherAPIProvider implements weather.Gateway for WeatherAPI.com.
// The one-day forecast endpoint is used so min/max come with the current
// conditions in a single call.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// WeatherAPIOption customizes a WeatherAPIProvider.
type WeatherAPIOption func(*WeatherAPIProvider)

func WithWeatherAPIBaseURL(u string) WeatherAPIOption {
	return func(p *WeatherAPIProvider) { p.baseURL = u }
}

func WithWeatherAPIBackoff(b BackoffConfig) WeatherAPIOption {
	return func(p *WeatherAPIProvider) { p.httpCfg.Backoff = b }
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...WeatherAPIOption) *WeatherAPIProvider {
	p := &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("weatherapi"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type waPayload struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		LastUpdatedEpoch int64    `json:"last_updated_epoch"`
		TempC            *float64 `json:"temp_c"`
		Humidity         float64  `json:"humidity"`
		WindKph          float64  `json:"wind_kph"`
		IsDay            int      `json:"is_day"`
		Condition        struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Day struct {
				MaxTempC *float64 `json:"maxtemp_c"`
				MinTempC *float64 `json:"mintemp_c"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// ByCityName fetches current conditions for a place name. Status answers map
// as for OpenWeather: any non-2xx is weather.ErrLocationNotFound.
func (p *WeatherAPIProvider) ByCityName(ctx context.Context, name string) (rec weather.WeatherRecord, err error) {
	ctx, span := startSpan(ctx, "weatherapi.by_city", attribute.String("weather.city", name))
	defer func() { endSpan(span, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return weather.WeatherRecord{}, fmt.Errorf("%w: empty location name", weather.ErrLocationNotFound)
	}
	return p.fetch(ctx, name, classifyCityStatus)
}

// ByCoordinates uses WeatherAPI's "lat,lon" query, which resolves the place
// name in the same response.
func (p *WeatherAPIProvider) ByCoordinates(ctx context.Context, coords weather.Coordinates) (rec weather.WeatherRecord, err error) {
	ctx, span := startSpan(ctx, "weatherapi.by_coordinates",
		attribute.Float64("weather.lat", coords.Lat),
		attribute.Float64("weather.lon", coords.Lon),
	)
	defer func() { endSpan(span, err) }()

	return p.fetch(ctx, fmt.Sprintf("%f,%f", coords.Lat, coords.Lon), classifyAnyStatus)
}

func (p *WeatherAPIProvider) fetch(ctx context.Context, q string, classify func(*HTTPStatusError) error) (weather.WeatherRecord, error) {
	if p.apiKey == "" {
		return weather.WeatherRecord{}, fmt.Errorf("%w: weatherapi api key is not configured", weather.ErrDataUnavailable)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", q)
		values.Set("days", "1")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err := classifyResponse("weatherapi request", resp, err, classify); err != nil {
		return weather.WeatherRecord{}, err
	}

	var payload waPayload
	if err := decodeJSON(resp, &payload); err != nil {
		return weather.WeatherRecord{}, err
	}
	return payload.toRecord()
}

func (w waPayload) toRecord() (weather.WeatherRecord, error) {
	if w.Current.TempC == nil || len(w.Forecast.ForecastDay) == 0 ||
		w.Forecast.ForecastDay[0].Day.MinTempC == nil || w.Forecast.ForecastDay[0].Day.MaxTempC == nil {
		return weather.WeatherRecord{}, fmt.Errorf("%w: payload is missing temperature fields", weather.ErrDataUnavailable)
	}
	day := w.Forecast.ForecastDay[0].Day

	ts := time.Now().UTC()
	if w.Current.LastUpdatedEpoch > 0 {
		ts = time.Unix(w.Current.LastUpdatedEpoch, 0).UTC()
	}

	return weather.WeatherRecord{
		Location:    w.Location.Name,
		Country:     w.Location.Country,
		Temperature: *w.Current.TempC,
		TempMin:     *day.MinTempC,
		TempMax:     *day.MaxTempC,
		Description: strings.ToLower(w.Current.Condition.Text),
		Category:    mapWeatherAPICondition(w.Current.Condition.Text),
		WindSpeed:   w.Current.WindKph,
		Humidity:    w.Current.Humidity,
		IsDay:       w.Current.IsDay == 1,
		ObservedAt:  ts,
	}, nil
}

func mapWeatherAPICondition(text string) weather.Category {
	t := strings.ToLower(text)
	switch {
	case t == "":
		return weather.CategoryOther
	case common.HasAny(t, "thunder", "storm"):
		return weather.CategoryThunderstorm
	case common.HasAny(t, "drizzle"):
		return weather.CategoryDrizzle
	case common.HasAny(t, "rain", "shower"):
		return weather.CategoryRain
	case common.HasAny(t, "snow", "sleet", "blizzard", "ice"):
		return weather.CategorySnow
	case common.HasAny(t, "mist", "fog", "haze"):
		return weather.CategoryMist
	case common.HasAny(t, "cloud", "overcast"):
		return weather.CategoryClouds
	case common.HasAny(t, "sunny", "clear"):
		return weather.CategoryClear
	default:
		return weather.CategoryOther
	}
}

var _ weather.Gateway = (*WeatherAPIProvider)(nil)
