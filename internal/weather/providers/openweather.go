package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"

	"github.com/i474232898/climate-chat/internal/weather"
)

const (
	openWeatherDataURL = "https://api.openweathermap.org/data/2.5/weather"
	openWeatherGeoURL  = "https://api.openweathermap.org/geo/1.0/reverse"
)

// OpenWeatherProvider implements weather.Gateway for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	dataURL string
	geoURL  string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// OpenWeatherOption customizes an OpenWeatherProvider.
type OpenWeatherOption func(*OpenWeatherProvider)

// WithOpenWeatherURLs overrides the conditions and reverse-geocoding endpoints.
func WithOpenWeatherURLs(dataURL, geoURL string) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		p.dataURL = dataURL
		p.geoURL = geoURL
	}
}

// WithOpenWeatherBackoff overrides the retry policy.
func WithOpenWeatherBackoff(b BackoffConfig) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		p.httpCfg.Backoff = b
	}
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...OpenWeatherOption) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		dataURL: openWeatherDataURL,
		geoURL:  openWeatherGeoURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openweather"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owConditions struct {
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp     *float64 `json:"temp"`
		TempMin  *float64 `json:"temp_min"`
		TempMax  *float64 `json:"temp_max"`
		Humidity float64  `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

type owPlace struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// ByCityName fetches current conditions for a place name. Any non-2xx answer,
// including a 5xx that outlasts the retries, yields weather.ErrLocationNotFound.
// Network failures and unreadable payloads are weather.ErrDataUnavailable.
func (p *OpenWeatherProvider) ByCityName(ctx context.Context, name string) (rec weather.WeatherRecord, err error) {
	ctx, span := startSpan(ctx, "openweather.by_city", attribute.String("weather.city", name))
	defer func() { endSpan(span, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return weather.WeatherRecord{}, fmt.Errorf("%w: empty location name", weather.ErrLocationNotFound)
	}
	if p.apiKey == "" {
		return weather.WeatherRecord{}, fmt.Errorf("%w: openweather api key is not configured", weather.ErrDataUnavailable)
	}

	values := url.Values{}
	values.Set("q", name)

	var payload owConditions
	if err := p.getJSON(ctx, p.dataURL, values, &payload, classifyCityStatus); err != nil {
		return weather.WeatherRecord{}, err
	}
	return payload.toRecord(payload.Name, payload.Sys.Country)
}

// ByCoordinates resolves a place name for coords, then fetches conditions.
// Both calls must succeed; any failure is weather.ErrDataUnavailable.
func (p *OpenWeatherProvider) ByCoordinates(ctx context.Context, coords weather.Coordinates) (rec weather.WeatherRecord, err error) {
	ctx, span := startSpan(ctx, "openweather.by_coordinates",
		attribute.Float64("weather.lat", coords.Lat),
		attribute.Float64("weather.lon", coords.Lon),
	)
	defer func() { endSpan(span, err) }()

	if p.apiKey == "" {
		return weather.WeatherRecord{}, fmt.Errorf("%w: openweather api key is not configured", weather.ErrDataUnavailable)
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))

	geoValues := url.Values{}
	for k, v := range values {
		geoValues[k] = v
	}
	geoValues.Set("limit", "1")

	var places []owPlace
	if err := p.getJSON(ctx, p.geoURL, geoValues, &places, classifyAnyStatus); err != nil {
		return weather.WeatherRecord{}, err
	}
	if len(places) == 0 {
		return weather.WeatherRecord{}, fmt.Errorf("%w: reverse geocoding returned no place", weather.ErrDataUnavailable)
	}

	var payload owConditions
	if err := p.getJSON(ctx, p.dataURL, values, &payload, classifyAnyStatus); err != nil {
		return weather.WeatherRecord{}, err
	}
	return payload.toRecord(places[0].Name, places[0].Country)
}

func (p *OpenWeatherProvider) getJSON(
	ctx context.Context,
	endpoint string,
	values url.Values,
	out any,
	classify func(*HTTPStatusError) error,
) error {
	buildRequest := func() (*http.Request, error) {
		q := url.Values{}
		for k, v := range values {
			q[k] = v
		}
		q.Set("appid", p.apiKey)
		q.Set("units", "metric")

		u := fmt.Sprintf("%s?%s", endpoint, q.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err := classifyResponse("openweather request", resp, err, classify); err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

func (c owConditions) toRecord(name, country string) (weather.WeatherRecord, error) {
	if c.Main.Temp == nil || c.Main.TempMin == nil || c.Main.TempMax == nil {
		return weather.WeatherRecord{}, fmt.Errorf("%w: payload is missing temperature fields", weather.ErrDataUnavailable)
	}

	rec := weather.WeatherRecord{
		Location:    name,
		Country:     country,
		Temperature: *c.Main.Temp,
		TempMin:     *c.Main.TempMin,
		TempMax:     *c.Main.TempMax,
		Humidity:    c.Main.Humidity,
		WindSpeed:   c.Wind.Speed * 3.6, // m/s to km/h
		Category:    weather.CategoryOther,
		IsDay:       true,
		ObservedAt:  time.Now().UTC(),
	}
	if c.Dt > 0 {
		rec.ObservedAt = time.Unix(c.Dt, 0).UTC()
	}
	if len(c.Weather) > 0 {
		w := c.Weather[0]
		rec.Description = w.Description
		rec.Category = weather.CategoryFromProvider(w.Main)
		if w.Icon != "" {
			rec.IsDay = strings.Contains(w.Icon, "d")
		}
	}
	return rec, nil
}

var _ weather.Gateway = (*OpenWeatherProvider)(nil)

