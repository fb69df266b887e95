package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/climate-chat/internal/weather"
)

type fakeLookup struct {
	mu    sync.Mutex
	rec   weather.WeatherRecord
	err   error
	calls []string
}

func (f *fakeLookup) ByCityName(_ context.Context, name string) (weather.WeatherRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.rec, f.err
}

type fakeGenerator struct {
	available bool
	reply     string
	mu        sync.Mutex
	prompts   []string
}

func (f *fakeGenerator) Available() bool { return f.available }

func (f *fakeGenerator) Generate(_ context.Context, prompt string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply
}

type panicLookup struct{}

func (panicLookup) ByCityName(context.Context, string) (weather.WeatherRecord, error) {
	panic("boom")
}

var tokyo = weather.WeatherRecord{
	Location:    "Tokyo",
	Country:     "JP",
	Temperature: 18.2,
	TempMin:     16.4,
	TempMax:     19.9,
	Description: "clear sky",
	Category:    weather.CategoryClear,
	WindSpeed:   10,
	Humidity:    55,
	IsDay:       true,
}

func kinds(actions []Action) []ActionKind {
	out := make([]ActionKind, len(actions))
	for i, a := range actions {
		out[i] = a.Kind
	}
	return out
}

func botTexts(actions []Action) []string {
	var out []string
	for _, a := range actions {
		if a.Kind == ActionMessage && a.Sender == SenderBot {
			out = append(out, a.Text)
		}
	}
	return out
}

func TestRouteWeatherEndToEnd(t *testing.T) {
	lookup := &fakeLookup{rec: tokyo}
	r := NewRouter(lookup, nil)

	fire := make(chan time.Time)
	var gotDelay time.Duration
	r.after = func(d time.Duration) <-chan time.Time {
		gotDelay = d
		return fire
	}

	rec := NewRecorder()
	done := make(chan struct{})
	go func() {
		r.Route(context.Background(), "What's the weather in Tokyo?", rec)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(rec.Actions()) == 3 }, time.Second, time.Millisecond)
	actions := rec.Actions()
	require.Equal(t, []ActionKind{ActionBusy, ActionIdle, ActionCard}, kinds(actions))
	require.Equal(t, 18, actions[2].Card.Temperature)
	require.Equal(t, "clear sky", actions[2].Card.Description)
	require.Equal(t, "sun", actions[2].Card.Icon)
	require.Empty(t, botTexts(actions))

	fire <- time.Now()
	<-done
	require.Equal(t, DefaultContextDelay, gotDelay)

	actions = rec.Actions()
	require.Len(t, actions, 4)
	require.Equal(t, []string{
		"The current weather in Tokyo shows clear sky with a temperature of 18°C. This is typical for the season in this region.",
	}, botTexts(actions))
	require.Equal(t, []string{"Tokyo"}, lookup.calls)
}

func TestRouteWeatherContextIsDelayed(t *testing.T) {
	r := NewRouter(&fakeLookup{rec: tokyo}, nil, WithContextDelay(30*time.Millisecond))
	rec := NewRecorder()

	start := time.Now()
	r.Route(context.Background(), "weather in Tokyo", rec)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	actions := rec.Actions()
	require.Equal(t, []ActionKind{ActionBusy, ActionIdle, ActionCard, ActionMessage}, kinds(actions))
	require.True(t, actions[3].At.Sub(actions[2].At) >= 30*time.Millisecond)
}

func TestRouteWeatherUsesGeneratorForContext(t *testing.T) {
	gen := &fakeGenerator{available: true, reply: "Mild for October."}
	r := NewRouter(&fakeLookup{rec: tokyo}, gen, WithContextDelay(0))
	rec := NewRecorder()

	r.Route(context.Background(), "weather in Tokyo", rec)

	require.Equal(t, []string{"Mild for October."}, botTexts(rec.Actions()))
	require.Len(t, gen.prompts, 1)
	require.Contains(t, gen.prompts[0], "climate context for Tokyo")
	require.Contains(t, gen.prompts[0], "Temperature: 18.2°C")
	require.Contains(t, gen.prompts[0], "Condition: clear sky")
	require.Contains(t, gen.prompts[0], "Humidity: 55%")
	require.Contains(t, gen.prompts[0], "Wind: 10 km/h")
}

func TestRouteWeatherCancelledDuringDelay(t *testing.T) {
	r := NewRouter(&fakeLookup{rec: tokyo}, nil, WithContextDelay(time.Hour))
	rec := NewRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Route(ctx, "weather in Tokyo", rec)
		close(done)
	}()
	require.Eventually(t, func() bool { return len(rec.Actions()) == 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("route did not return after cancel")
	}
	require.Empty(t, botTexts(rec.Actions()))
}

func TestRouteWeatherFailures(t *testing.T) {
	cases := []struct {
		name    string
		message string
		lookup  WeatherLookup
		want    string
	}{
		{"no location", "Is it going to be cold?", &fakeLookup{rec: tokyo}, ClarifyLocationMessage},
		{"not found", "weather in Atlantis", &fakeLookup{err: weather.ErrLocationNotFound}, LocationNotFoundMessage},
		{"unavailable", "weather in Paris", &fakeLookup{err: weather.ErrDataUnavailable}, WeatherTroubleMessage},
		{"other error", "weather in Paris", &fakeLookup{err: errors.New("weird")}, WeatherTroubleMessage},
		{"no gateway", "weather in Paris", nil, WeatherTroubleMessage},
		{"panic", "weather in Paris", panicLookup{}, GenericTroubleMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRouter(tc.lookup, nil)
			rec := NewRecorder()
			r.Route(context.Background(), tc.message, rec)

			actions := rec.Actions()
			require.Equal(t, []ActionKind{ActionBusy, ActionIdle, ActionMessage}, kinds(actions))
			require.Equal(t, tc.want, actions[2].Text)
			require.Equal(t, SenderBot, actions[2].Sender)
		})
	}

	lookup := &fakeLookup{rec: tokyo}
	NewRouter(lookup, nil).Route(context.Background(), "Is it going to be cold?", NewRecorder())
	require.Empty(t, lookup.calls)
}

func TestRouteStaticAnswer(t *testing.T) {
	gen := &fakeGenerator{available: true, reply: "nope"}
	lookup := &fakeLookup{rec: tokyo}
	r := NewRouter(lookup, gen)
	rec := NewRecorder()

	r.Route(context.Background(), "So, what is sustainable living?", rec)

	require.Equal(t, []string{commonQA[7].answer}, botTexts(rec.Actions()))
	require.Empty(t, gen.prompts)
	require.Empty(t, lookup.calls)
}

func TestRouteGenerative(t *testing.T) {
	gen := &fakeGenerator{available: true, reply: "Currents move heat around the planet."}
	r := NewRouter(nil, gen)
	rec := NewRecorder()

	r.Route(context.Background(), "Tell me about ocean currents", rec)

	want := []Action{
		{Kind: ActionBusy},
		{Kind: ActionIdle},
		{Kind: ActionMessage, Sender: SenderBot, Text: "Currents move heat around the planet."},
	}
	if diff := cmp.Diff(want, rec.Actions(), cmpopts.IgnoreFields(Action{}, "At")); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"Tell me about ocean currents"}, gen.prompts)
}

func TestRouteFallbackWithoutCredential(t *testing.T) {
	gen := &fakeGenerator{available: false}
	r := NewRouter(nil, gen, WithIntN(func(n int) int { return 0 }))
	rec := NewRecorder()

	r.Route(context.Background(), "any advice for me?", rec)

	require.Equal(t, []string{environmentalTips[0]}, botTexts(rec.Actions()))
	require.Empty(t, gen.prompts)
}
