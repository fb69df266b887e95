// Package chat routes user messages to static answers, the weather flow, or a
// generative backend, and renders the outcome into a Sink.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/i474232898/climate-chat/internal/weather"
)

// DefaultContextDelay separates the weather card from the climate context message.
const DefaultContextDelay = 1000 * time.Millisecond

// WeatherLookup resolves a place name to current conditions.
type WeatherLookup interface {
	ByCityName(ctx context.Context, name string) (weather.WeatherRecord, error)
}

// Generator produces free-form replies. Generate must not fail; it returns a
// user-facing string in every case.
type Generator interface {
	Available() bool
	Generate(ctx context.Context, prompt string) string
}

// Router classifies a message and runs the matching reply flow against a Sink.
// It is safe for concurrent use; per-conversation state lives in Session.
type Router struct {
	weather      WeatherLookup
	gen          Generator
	contextDelay time.Duration
	intn         func(n int) int
	after        func(d time.Duration) <-chan time.Time
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithContextDelay sets the pause between the weather card and the climate
// context message. Negative values are ignored.
func WithContextDelay(d time.Duration) RouterOption {
	return func(r *Router) {
		if d >= 0 {
			r.contextDelay = d
		}
	}
}

// WithIntN replaces the source used to pick fallback replies.
func WithIntN(intn func(n int) int) RouterOption {
	return func(r *Router) {
		if intn != nil {
			r.intn = intn
		}
	}
}

// NewRouter builds a Router. gen may be nil, in which case the fallback
// replies are used instead of generated ones.
func NewRouter(lookup WeatherLookup, gen Generator, opts ...RouterOption) *Router {
	r := &Router{
		weather:      lookup,
		gen:          gen,
		contextDelay: DefaultContextDelay,
		intn:         rand.IntN,
		after:        time.After,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) generative() bool {
	return r.gen != nil && r.gen.Available()
}

// Decide classifies message against this router's configuration.
func (r *Router) Decide(message string) Decision {
	return Decide(message, r.generative())
}

// Route handles one user message and renders its outcome into sink. It never
// returns an error: every failure ends in a rendered bot message. Route
// returns once the turn is finished, including the climate context delay, or
// when ctx is cancelled.
func (r *Router) Route(ctx context.Context, message string, sink Sink) {
	t := &turn{sink: sink}
	t.sink.ShowBusy()
	t.busy = true

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("chat route panicked", "panic", rec)
			t.reply(GenericTroubleMessage)
		}
		t.idle()
	}()

	d := r.Decide(message)
	slog.Debug("chat message routed", "kind", d.Kind.String())

	switch d.Kind {
	case KindStatic:
		t.reply(d.Answer)
	case KindWeather:
		r.weatherFlow(ctx, d, t)
	case KindGenerative:
		t.reply(r.gen.Generate(ctx, message))
	default:
		t.reply(Fallback(message, r.intn))
	}
}

func (r *Router) weatherFlow(ctx context.Context, d Decision, t *turn) {
	if !d.HasLocation {
		t.reply(ClarifyLocationMessage)
		return
	}
	if r.weather == nil {
		t.reply(WeatherTroubleMessage)
		return
	}

	rec, err := r.weather.ByCityName(ctx, d.Location)
	if err != nil {
		slog.Warn("weather lookup failed", "location", d.Location, "err", err)
		if errors.Is(err, weather.ErrLocationNotFound) {
			t.reply(LocationNotFoundMessage)
		} else {
			t.reply(WeatherTroubleMessage)
		}
		return
	}

	t.idle()
	t.sink.RenderCard(NewCard(rec))

	contextText := r.climateContext(ctx, d.Location, rec)

	select {
	case <-r.after(r.contextDelay):
	case <-ctx.Done():
		return
	}
	t.sink.RenderMessage(SenderBot, contextText)
}

// climateContext describes rec in a sentence or two, generated when possible.
func (r *Router) climateContext(ctx context.Context, loc string, rec weather.WeatherRecord) string {
	if r.generative() {
		prompt := fmt.Sprintf(climatePromptTemplate, loc, rec.Temperature, rec.Description, rec.Humidity, rec.WindSpeed)
		return r.gen.Generate(ctx, prompt)
	}
	return fmt.Sprintf(climateTemplate, loc, rec.Description, weather.Round(rec.Temperature))
}

// turn tracks the busy indicator for one Route call so it is hidden exactly
// once, before the first bot reply.
type turn struct {
	sink Sink
	busy bool
}

func (t *turn) idle() {
	if t.busy {
		t.busy = false
		t.sink.HideBusy()
	}
}

func (t *turn) reply(text string) {
	t.idle()
	t.sink.RenderMessage(SenderBot, text)
}
