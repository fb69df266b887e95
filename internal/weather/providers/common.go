package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/i474232898/climate-chat/internal/weather"
)

var tracer = otel.Tracer("github.com/i474232898/climate-chat/internal/weather/providers")

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff is used by the provider constructors.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// HTTPStatusError captures a non-2xx provider response.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequestWithResilience executes the HTTP request with retries, exponential backoff,
// and a circuit breaker. Transport errors, 429 and 5xx are retried and count
// against the breaker; once retries run out the last 429 or 5xx comes back as
// an error wrapping its *HTTPStatusError. Other statuses are handed back to
// the caller unretried.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				// *url.Error embeds the full URL, credential included.
				var uerr *url.Error
				if errors.As(execErr, &uerr) {
					return nil, fmt.Errorf("%s %s: %w", uerr.Op, redactedURL(req), uerr.Err)
				}
				return nil, execErr
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, fmt.Errorf("%w: %w", errRateLimited, statusError(resp))
			}
			if resp.StatusCode >= 500 {
				return nil, fmt.Errorf("%w: %w", errServerError, statusError(resp))
			}
			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= cfg.Backoff.MaxRetries {
			return nil, lastErr
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

// statusError reads a bounded slice of the body into an HTTPStatusError and closes it.
func statusError(resp *http.Response) *HTTPStatusError {
	buf, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
	return &HTTPStatusError{
		StatusCode: resp.StatusCode,
		URL:        redactedURL(resp.Request),
		Body:       string(buf),
	}
}

// redactedURL drops the query string, which carries the provider credential.
func redactedURL(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(v); err != nil {
		return fmt.Errorf("%w: decode payload: %v", weather.ErrDataUnavailable, err)
	}
	return nil
}

// classifyResponse turns a failed request into a domain error. Provider
// answers with a status go through classify; anything else is an outage.
func classifyResponse(op string, resp *http.Response, err error, classify func(*HTTPStatusError) error) error {
	if err != nil {
		var se *HTTPStatusError
		if errors.As(err, &se) {
			return classify(se)
		}
		return unavailable(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(statusError(resp))
	}
	return nil
}

// classifyCityStatus maps any status answer to a by-name lookup onto
// weather.ErrLocationNotFound.
func classifyCityStatus(se *HTTPStatusError) error {
	return fmt.Errorf("%w: %w", weather.ErrLocationNotFound, se)
}

func classifyAnyStatus(se *HTTPStatusError) error {
	return fmt.Errorf("%w: %w", weather.ErrDataUnavailable, se)
}

// unavailable wraps a transport-level failure as ErrDataUnavailable.
func unavailable(op string, err error) error {
	if errors.Is(err, weather.ErrDataUnavailable) || errors.Is(err, weather.ErrLocationNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", weather.ErrDataUnavailable, op, err)
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
