package chat

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/climate-chat/internal/common"
	"github.com/i474232898/climate-chat/internal/location"
)

// Kind is the flow a message is routed to.
type Kind int

const (
	KindStatic Kind = iota
	KindWeather
	KindGenerative
	KindFallback
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindWeather:
		return "weather"
	case KindGenerative:
		return "generative"
	case KindFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Decision is the outcome of classifying one message.
type Decision struct {
	Kind Kind
	// Answer is set for KindStatic.
	Answer string
	// Location is set for KindWeather when one could be extracted.
	Location    string
	HasLocation bool
}

// Decide classifies message. generative reports whether a generative-service
// credential is configured.
func Decide(message string, generative bool) Decision {
	lower := lowercase(message)

	for _, qa := range commonQA {
		if strings.Contains(lower, qa.phrase) {
			return Decision{Kind: KindStatic, Answer: qa.answer}
		}
	}

	if common.HasAny(lower, weatherKeywords...) {
		loc, ok := location.ExtractLocation(message)
		return Decision{Kind: KindWeather, Location: loc, HasLocation: ok}
	}

	if generative {
		return Decision{Kind: KindGenerative}
	}
	return Decision{Kind: KindFallback}
}

// Fallback picks the canned reply used when no generative service is
// configured. intn must return a value in [0, n).
func Fallback(message string, intn func(n int) int) string {
	lower := lowercase(message)
	switch {
	case strings.Contains(lower, "climate change"):
		return climateChangeAnswer
	case strings.Contains(lower, "global warming"):
		return globalWarmingAnswer
	case common.HasAny(lower, "recycle", "recycling"):
		return recyclingAnswer
	case common.HasAny(lower, "tip", "advice"):
		return environmentalTips[intn(len(environmentalTips))]
	default:
		return genericFallbacks[intn(len(genericFallbacks))]
	}
}

// cases.Caser is stateful, so one is built per call.
func lowercase(s string) string {
	return cases.Lower(language.English).String(s)
}
