package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"

	"github.com/i474232898/climate-chat/internal/weather"
)

const (
	climateWindowDays = 30
	// The archive lags real time by a few days.
	archiveLagDays = 5
)

// OpenMeteoClimateProvider implements weather.ClimateGateway from measured
// data: the Open-Meteo archive for the last 30 days compared with the same
// window one year earlier. No API key is required.
type OpenMeteoClimateProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

// OpenMeteoOption customizes an OpenMeteoClimateProvider.
type OpenMeteoOption func(*OpenMeteoClimateProvider)

func WithOpenMeteoBaseURL(u string) OpenMeteoOption {
	return func(p *OpenMeteoClimateProvider) { p.baseURL = u }
}

func WithOpenMeteoBackoff(b BackoffConfig) OpenMeteoOption {
	return func(p *OpenMeteoClimateProvider) { p.httpCfg.Backoff = b }
}

func withOpenMeteoClock(now func() time.Time) OpenMeteoOption {
	return func(p *OpenMeteoClimateProvider) { p.now = now }
}

func NewOpenMeteoClimateProvider(client *http.Client, opts ...OpenMeteoOption) *OpenMeteoClimateProvider {
	p := &OpenMeteoClimateProvider{
		name:    "openmeteo",
		baseURL: "https://archive-api.open-meteo.com/v1/archive",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openmeteo"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenMeteoClimateProvider) Name() string {
	return p.name
}

type archivePayload struct {
	Daily struct {
		Time          []string   `json:"time"`
		Temperature   []*float64 `json:"temperature_2m_mean"`
		Precipitation []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

type windowStats struct {
	avgTemp     float64
	totalPrecip float64
}

func (p *OpenMeteoClimateProvider) Summary(ctx context.Context, coords weather.Coordinates) (summary weather.ClimateSummary, err error) {
	ctx, span := startSpan(ctx, "openmeteo.climate_summary",
		attribute.Float64("weather.lat", coords.Lat),
		attribute.Float64("weather.lon", coords.Lon),
	)
	defer func() { endSpan(span, err) }()

	end := p.now().UTC().AddDate(0, 0, -archiveLagDays)
	start := end.AddDate(0, 0, -(climateWindowDays - 1))

	recent, err := p.window(ctx, coords, start, end)
	if err != nil {
		return weather.ClimateSummary{}, err
	}
	baseline, err := p.window(ctx, coords, start.AddDate(-1, 0, 0), end.AddDate(-1, 0, 0))
	if err != nil {
		return weather.ClimateSummary{}, err
	}

	tempTrend := recent.avgTemp - baseline.avgTemp
	precipTrend := recent.totalPrecip - baseline.totalPrecip

	return weather.ClimateSummary{
		AvgTemperature:       recent.avgTemp,
		TemperatureTrend:     tempTrend,
		TemperatureChangePct: percentChange(tempTrend, baseline.avgTemp),
		AvgPrecipitation:     recent.totalPrecip,
		PrecipitationTrend:   precipTrend,
		PrecipitationPct:     percentChange(precipTrend, baseline.totalPrecip),
		Summary:              describeTrend(tempTrend, precipTrend, baseline.totalPrecip),
		Synthetic:            false,
	}, nil
}

func (p *OpenMeteoClimateProvider) window(ctx context.Context, coords weather.Coordinates, start, end time.Time) (windowStats, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', 4, 64))
		values.Set("longitude", strconv.FormatFloat(coords.Lon, 'f', 4, 64))
		values.Set("start_date", start.Format("2006-01-02"))
		values.Set("end_date", end.Format("2006-01-02"))
		values.Set("daily", "temperature_2m_mean,precipitation_sum")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err := classifyResponse("openmeteo request", resp, err, classifyAnyStatus); err != nil {
		return windowStats{}, err
	}

	var payload archivePayload
	if err := decodeJSON(resp, &payload); err != nil {
		return windowStats{}, err
	}

	var (
		sumTemp float64
		nTemp   int
		precip  float64
	)
	for _, v := range payload.Daily.Temperature {
		if v != nil {
			sumTemp += *v
			nTemp++
		}
	}
	for _, v := range payload.Daily.Precipitation {
		if v != nil {
			precip += *v
		}
	}
	if nTemp == 0 {
		return windowStats{}, fmt.Errorf("%w: archive returned no temperature values", weather.ErrDataUnavailable)
	}

	return windowStats{avgTemp: sumTemp / float64(nTemp), totalPrecip: precip}, nil
}

// percentChange is the magnitude of delta relative to base, capped at 100.
func percentChange(delta, base float64) int {
	if base == 0 {
		if delta == 0 {
			return 0
		}
		return 100
	}
	pct := math.Abs(delta/base) * 100
	if pct > 100 {
		pct = 100
	}
	return int(math.Round(pct))
}

func describeTrend(tempTrend, precipTrend, precipBase float64) string {
	switch {
	case tempTrend > 0.5:
		return "Temperatures are running warmer than the same period last year."
	case tempTrend < -0.5:
		return "Temperatures are running cooler than the same period last year."
	case precipBase > 0 && math.Abs(precipTrend)/precipBase > 0.25:
		return "Precipitation differs noticeably from the same period last year."
	default:
		return "Climate indicators suggest typical seasonal patterns with minor variations."
	}
}

var _ weather.ClimateGateway = (*OpenMeteoClimateProvider)(nil)
