package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecideStaticAnswerBySubstring(t *testing.T) {
	d := Decide("Hey, so WHAT IS RENEWABLE ENERGY exactly?", true)
	require.Equal(t, KindStatic, d.Kind)
	require.Equal(t, commonQA[5].answer, d.Answer)
}

func TestDecideStaticDeclarationOrderWins(t *testing.T) {
	// The later phrase appears first in the text; table order still decides.
	d := Decide("what is renewable energy and what is climate change", false)
	require.Equal(t, KindStatic, d.Kind)
	require.Equal(t, commonQA[0].answer, d.Answer)
}

func TestDecideStaticBeatsWeatherKeywords(t *testing.T) {
	d := Decide("difference between weather and climate", false)
	require.Equal(t, KindStatic, d.Kind)
}

func TestDecideWeather(t *testing.T) {
	d := Decide("What's the weather in Tokyo?", false)
	require.Equal(t, KindWeather, d.Kind)
	require.True(t, d.HasLocation)
	require.Equal(t, "Tokyo", d.Location)

	d = Decide("Is it going to be cold?", true)
	require.Equal(t, KindWeather, d.Kind)
	require.False(t, d.HasLocation)
}

func TestDecideGenerativeOrFallback(t *testing.T) {
	require.Equal(t, KindGenerative, Decide("Tell me about ocean currents", true).Kind)
	require.Equal(t, KindFallback, Decide("Tell me about ocean currents", false).Kind)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "static", KindStatic.String())
	require.Equal(t, "weather", KindWeather.String())
	require.Equal(t, "generative", KindGenerative.String())
	require.Equal(t, "fallback", KindFallback.String())
	require.Equal(t, "unknown", Kind(42).String())
}

func TestFallback(t *testing.T) {
	last := func(n int) int { return n - 1 }

	require.Equal(t, climateChangeAnswer, Fallback("Climate Change and global warming", last))
	require.Equal(t, globalWarmingAnswer, Fallback("global warming please", last))
	require.Equal(t, recyclingAnswer, Fallback("Recycling bins?", last))
	require.Equal(t, recyclingAnswer, Fallback("how to recycle", last))
	require.Equal(t, environmentalTips[5], Fallback("any advice?", last))
	require.Equal(t, genericFallbacks[3], Fallback("hello", last))
}

func TestFallbackPicksWithinRange(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < len(environmentalTips); i++ {
		i := i
		seen[Fallback("a tip", func(n int) int {
			require.Equal(t, len(environmentalTips), n)
			return i
		})] = true
	}
	require.Len(t, seen, len(environmentalTips))

	for i := 0; i < len(genericFallbacks); i++ {
		i := i
		got := Fallback("hi there", func(n int) int {
			require.Equal(t, len(genericFallbacks), n)
			return i
		})
		require.Equal(t, genericFallbacks[i], got)
	}
}
